package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/Dan9191/credit-service/internal/metrics"
	"github.com/Dan9191/credit-service/internal/models"
	"github.com/Dan9191/credit-service/internal/repository"
	"github.com/Dan9191/credit-service/internal/validation"
	"github.com/sirupsen/logrus"
)

// Service handles business logic
type Service struct {
	store   repository.ClientStore
	engine  *decision.Engine
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// NewService initializes a new service. m may be nil.
func NewService(store repository.ClientStore, engine *decision.Engine, m *metrics.Metrics, log *logrus.Logger) *Service {
	return &Service{store: store, engine: engine, metrics: m, log: log}
}

// ListClients returns all stored clients
func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.store.List(ctx)
}

// GetClient returns the client with the given CPF, formatted or not
func (s *Service) GetClient(ctx context.Context, cpf string) (*models.Client, error) {
	normalized, err := validation.NormalizeCPF(cpf)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, normalized)
}

// AddClient stores a validated client
func (s *Service) AddClient(ctx context.Context, client *models.Client) error {
	if err := s.store.Create(ctx, client); err != nil {
		return err
	}
	s.log.Infof("Client registered: %s", client.CPF)
	return nil
}

// AnalyzeCredit evaluates the stored client and returns the engine's
// verdict together with the client record
func (s *Service) AnalyzeCredit(ctx context.Context, cpf string) (*models.AnalysisResponse, error) {
	start := time.Now()

	client, err := s.GetClient(ctx, cpf)
	if err != nil {
		return nil, err
	}

	record := decision.RecordFromClient(client)
	if err := record.Validate(); err != nil {
		s.log.Warnf("Stored client %s cannot be evaluated: %v", client.CPF, err)
		return nil, err
	}

	result := s.engine.Evaluate(record)
	if result.ScoringErr != nil {
		s.log.Warnf("Scoring unavailable for client %s, using rule-based probability: %v", client.CPF, result.ScoringErr)
	}

	s.metrics.ObserveDecision(result.Approved, result.Failed, result.ScoringErr != nil)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	s.log.WithFields(logrus.Fields{
		"cpf":         client.CPF,
		"approved":    result.Approved,
		"limit":       result.Limit,
		"probability": result.Probability,
		"failed":      result.Failed,
		"scored":      result.Scored,
	}).Info("Credit analysis completed")

	return &models.AnalysisResponse{
		Approved:    result.Approved,
		Probability: result.Probability,
		Limit:       result.Limit,
		Reasons:     result.Reasons,
		Client:      *client,
	}, nil
}

// ImportReport summarises a bulk import
type ImportReport struct {
	Total      int      `json:"total"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Invalid    int      `json:"invalid"`
	Duplicates []string `json:"duplicates"`
}

// ImportClients upserts a batch of clients. When a CPF appears more than
// once in the batch the last occurrence wins and the CPF is reported as a
// duplicate. Invalid records are skipped and counted.
func (s *Service) ImportClients(ctx context.Context, clients []models.Client) (*ImportReport, error) {
	report := &ImportReport{Total: len(clients), Duplicates: []string{}}

	var order []string
	latest := make(map[string]*models.Client, len(clients))
	seen := make(map[string]int, len(clients))
	for i := range clients {
		checked, err := validation.CheckClient(&clients[i])
		if err != nil {
			report.Invalid++
			s.log.Warnf("Skipping invalid client record %d (%s): %v", i, clients[i].CPF, err)
			continue
		}
		seen[checked.CPF]++
		if seen[checked.CPF] == 1 {
			order = append(order, checked.CPF)
		} else if seen[checked.CPF] == 2 {
			report.Duplicates = append(report.Duplicates, checked.CPF)
		}
		latest[checked.CPF] = checked
	}
	if len(report.Duplicates) > 0 {
		s.log.Warnf("Duplicate CPFs in import batch: %v", report.Duplicates)
	}

	for _, cpf := range order {
		inserted, err := s.store.Upsert(ctx, latest[cpf])
		if err != nil {
			return report, fmt.Errorf("failed to import client %s: %w", cpf, err)
		}
		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	s.log.Infof("Import finished: %d records, %d inserted, %d updated, %d invalid",
		report.Total, report.Inserted, report.Updated, report.Invalid)
	return report, nil
}

// Health checks the client store
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}
