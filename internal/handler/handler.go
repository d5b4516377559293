package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/Dan9191/credit-service/internal/models"
	"github.com/Dan9191/credit-service/internal/repository"
	"github.com/Dan9191/credit-service/internal/validation"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// ClientService is what the handlers need from the service layer
type ClientService interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, cpf string) (*models.Client, error)
	AddClient(ctx context.Context, client *models.Client) error
	AnalyzeCredit(ctx context.Context, cpf string) (*models.AnalysisResponse, error)
	Health(ctx context.Context) error
}

type Handler struct {
	svc ClientService
	log *logrus.Logger
}

func NewHandler(svc ClientService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type errorResponse struct {
	Detail string                  `json:"detail"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

// Root describes the service
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "Credit.AI API está rodando",
		"endpoints": map[string]string{
			"clientes": "/clientes",
			"analise":  "/analisar",
			"health":   "/health",
			"metrics":  "/metrics",
		},
	})
}

// Health reports whether the client store is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.entry(r).Errorf("Health check failed: %v", err)
		h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ListClients returns every stored client
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	h.writeJSON(w, r, http.StatusOK, models.ClientList{Clients: clients})
}

// GetClient returns one client by CPF
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.svc.GetClient(r.Context(), mux.Vars(r)["cpf"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, client)
}

// CreateClient validates and stores a new client
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Detail: "Corpo da requisição inválido"})
		return
	}
	client, err := validation.ValidateClient(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.AddClient(r.Context(), client); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, map[string]string{"message": "Cliente adicionado com sucesso"})
}

// AnalyzeCredit runs the credit decision for the CPF in the body
func (h *Handler) AnalyzeCredit(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Detail: "Corpo da requisição inválido"})
		return
	}
	resp, err := h.svc.AnalyzeCredit(r.Context(), req.CPF)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: "Dados do cliente inválidos", Errors: verr.Fields})
	case errors.Is(err, validation.ErrMalformedPayload):
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Detail: "Corpo da requisição inválido"})
	case errors.Is(err, repository.ErrClientNotFound):
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Detail: "Cliente não encontrado"})
	case errors.Is(err, repository.ErrClientExists):
		h.writeJSON(w, r, http.StatusConflict, errorResponse{Detail: "Cliente já cadastrado"})
	case errors.Is(err, decision.ErrPrecondition):
		h.writeJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
	default:
		h.entry(r).Errorf("Request failed: %v", err)
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Detail: "Erro interno do servidor"})
	}
}

func (h *Handler) entry(r *http.Request) *logrus.Entry {
	return h.log.WithField("request_id", RequestID(r.Context()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	writeJSON(h.entry(r), w, status, body)
}

// writeJSON answers 500 when body cannot be encoded
func writeJSON(log logrus.FieldLogger, w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Errorf("Failed to encode response: %v", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Detail: "Erro interno do servidor"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		log.Warnf("Failed to write response: %v", err)
	}
}
