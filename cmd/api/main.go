package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/credit-service/internal/config"
	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/Dan9191/credit-service/internal/handler"
	"github.com/Dan9191/credit-service/internal/metrics"
	"github.com/Dan9191/credit-service/internal/repository"
	"github.com/Dan9191/credit-service/internal/scoring"
	"github.com/Dan9191/credit-service/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
)

func main() {
	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx := context.Background()
	fs := afs.New()

	// Initialize storage
	store, err := repository.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize client store: %v", err)
	}
	defer store.Close()

	// Decision rules
	rules := decision.DefaultRules()
	if cfg.RulesFile != "" {
		if rules, err = decision.LoadRules(ctx, fs, cfg.RulesFile); err != nil {
			logger.Fatalf("Failed to load rules: %v", err)
		}
		logger.Infof("Decision rules loaded from %s", cfg.RulesFile)
	}

	// Scoring model
	var scorer decision.Scorer
	if cfg.ModelPath != "" {
		holder := scoring.NewHolder(fs, cfg.ModelPath, logger)
		if cfg.ModelBootstrap {
			forest, created, err := scoring.Bootstrap(ctx, fs, cfg.ModelPath)
			if err != nil {
				logger.Warnf("Model bootstrap failed, decisions will use rule-based probability: %v", err)
			} else {
				holder.Set(forest)
				if created {
					logger.Infof("Seed model written to %s", cfg.ModelPath)
				}
			}
		} else if err := holder.Reload(ctx); err != nil {
			logger.Warnf("Model not loaded, decisions will use rule-based probability")
		}
		if cfg.ModelReloadSchedule != "" {
			if err := holder.Schedule(cfg.ModelReloadSchedule); err != nil {
				logger.Fatalf("Failed to schedule model reload: %v", err)
			}
			defer holder.Stop()
		}
		scorer = holder
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize layers
	engine := decision.NewEngine(rules, scorer)
	svc := service.NewService(store, engine, m, logger)
	h := handler.NewHandler(svc, logger)
	router := handler.NewRouter(h, logger, handler.RouterOptions{
		JWTSecret: cfg.JWTSecret,
		Metrics:   m,
		Gatherer:  reg,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set, client registration is unauthenticated")
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
		return
	case <-quit:
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	logger.Info("Server exited")
}
