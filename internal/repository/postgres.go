package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const clientColumns = `cpf, nome, score, possui_restricoes, renda_mensal, percentual_pagamentos_em_dia,
		atrasos_30_dias, atrasos_60_dias, atrasos_90_dias, created_at, updated_at`

// PostgresStore keeps clients in the credit.clientes table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore initializes a new Postgres-backed store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var (
		c     models.Client
		ratio sql.NullFloat64
	)
	c.CreatedAt, c.UpdatedAt = new(time.Time), new(time.Time)
	err := row.Scan(&c.CPF, &c.Name, &c.Score, &c.HasRestrictions, &c.MonthlyIncome, &ratio,
		&c.PaymentHistory.Late30, &c.PaymentHistory.Late60, &c.PaymentHistory.Late90,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if ratio.Valid {
		c.PaymentHistory.OnTimeRatio = &ratio.Float64
	}
	return &c, nil
}

// List returns every client ordered by name
func (r *PostgresStore) List(ctx context.Context) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM credit.clientes ORDER BY nome, cpf`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// Get retrieves a client by CPF
func (r *PostgresStore) Get(ctx context.Context, cpf string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM credit.clientes WHERE cpf = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, query, cpf))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return c, nil
}

// Create inserts a new client
func (r *PostgresStore) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO credit.clientes (cpf, nome, score, possui_restricoes, renda_mensal,
			percentual_pagamentos_em_dia, atrasos_30_dias, atrasos_60_dias, atrasos_90_dias,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	c.CreatedAt, c.UpdatedAt = new(time.Time), new(time.Time)
	err := r.db.QueryRowContext(ctx, query, clientArgs(c)...).Scan(c.CreatedAt, c.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrClientExists
	}
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// Upsert inserts a client or overwrites the stored one with the same CPF.
// xmax is zero only for freshly inserted rows.
func (r *PostgresStore) Upsert(ctx context.Context, c *models.Client) (bool, error) {
	query := `
		INSERT INTO credit.clientes (cpf, nome, score, possui_restricoes, renda_mensal,
			percentual_pagamentos_em_dia, atrasos_30_dias, atrasos_60_dias, atrasos_90_dias,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (cpf) DO UPDATE SET
			nome = EXCLUDED.nome,
			score = EXCLUDED.score,
			possui_restricoes = EXCLUDED.possui_restricoes,
			renda_mensal = EXCLUDED.renda_mensal,
			percentual_pagamentos_em_dia = EXCLUDED.percentual_pagamentos_em_dia,
			atrasos_30_dias = EXCLUDED.atrasos_30_dias,
			atrasos_60_dias = EXCLUDED.atrasos_60_dias,
			atrasos_90_dias = EXCLUDED.atrasos_90_dias,
			updated_at = CURRENT_TIMESTAMP
		RETURNING (xmax = 0) AS inserted, created_at, updated_at`
	var inserted bool
	c.CreatedAt, c.UpdatedAt = new(time.Time), new(time.Time)
	if err := r.db.QueryRowContext(ctx, query, clientArgs(c)...).Scan(&inserted, c.CreatedAt, c.UpdatedAt); err != nil {
		return false, fmt.Errorf("failed to upsert client: %w", err)
	}
	return inserted, nil
}

// Ping checks the database connection
func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresStore) Close() error {
	return r.db.Close()
}

func clientArgs(c *models.Client) []any {
	return []any{
		c.CPF, c.Name, c.Score, c.HasRestrictions, c.MonthlyIncome,
		c.PaymentHistory.OnTimeRatio,
		c.PaymentHistory.Late30, c.PaymentHistory.Late60, c.PaymentHistory.Late90,
	}
}
