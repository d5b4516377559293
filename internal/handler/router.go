package handler

import (
	"net/http"

	"github.com/Dan9191/credit-service/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures NewRouter. Zero values disable the feature.
type RouterOptions struct {
	JWTSecret string
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// NewRouter wires every API route and middleware
func NewRouter(h *Handler, log *logrus.Logger, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(opts.Metrics))

	auth := AuthMiddleware(opts.JWTSecret, log)

	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/clientes", h.ListClients).Methods(http.MethodGet)
	r.Handle("/clientes", auth(http.HandlerFunc(h.CreateClient))).Methods(http.MethodPost)
	r.HandleFunc("/clientes/{cpf}", h.GetClient).Methods(http.MethodGet)
	r.HandleFunc("/analisar", h.AnalyzeCredit).Methods(http.MethodPost)
	r.HandleFunc("/analise-credito", h.AnalyzeCredit).Methods(http.MethodPost)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return RequestIDMiddleware(LoggingMiddleware(log)(CORSMiddleware(r)))
}
