package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/Dan9191/credit-service/internal/config"
	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/Dan9191/credit-service/internal/models"
	"github.com/Dan9191/credit-service/internal/repository"
	"github.com/Dan9191/credit-service/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
)

func main() {
	source := flag.String("file", "data/clientes.json", "clients document to import (path or afs URL)")
	timeout := flag.Duration("timeout", 5*time.Minute, "import timeout")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raw, err := afs.New().DownloadWithURL(ctx, *source)
	if err != nil {
		logger.Fatalf("Failed to read %s: %v", *source, err)
	}
	var doc models.ClientList
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Fatalf("Failed to decode %s: %v", *source, err)
	}

	store, err := repository.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize client store: %v", err)
	}
	defer store.Close()

	svc := service.NewService(store, decision.NewEngine(decision.DefaultRules(), nil), nil, logger)
	report, err := svc.ImportClients(ctx, doc.Clients)
	if err != nil {
		logger.Errorf("Import aborted: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	if err != nil {
		os.Exit(1)
	}
}
