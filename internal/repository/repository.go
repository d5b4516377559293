package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/credit-service/internal/config"
	"github.com/Dan9191/credit-service/internal/models"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
)

var (
	// ErrClientNotFound is returned when no client has the requested CPF
	ErrClientNotFound = errors.New("client not found")
	// ErrClientExists is returned when creating a client whose CPF is taken
	ErrClientExists = errors.New("client already exists")
)

// ClientStore persists client credit records keyed by CPF
type ClientStore interface {
	List(ctx context.Context) ([]models.Client, error)
	Get(ctx context.Context, cpf string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	// Upsert inserts or replaces a client and reports whether it was new
	Upsert(ctx context.Context, client *models.Client) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the store selected by cfg.StorageBackend, wrapped in a Redis
// read-through cache when cfg.RedisAddr is set.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (ClientStore, error) {
	var store ClientStore
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store = NewPostgresStore(db)
	case config.BackendFile:
		store = NewFileStore(afs.New(), cfg.DataFile)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
	log.Infof("Client store: %s", cfg.StorageBackend)

	if cfg.RedisAddr == "" {
		return store, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnf("Redis ping failed, cache will be bypassed until it recovers: %v", err)
	}
	log.Infof("Client cache enabled: %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	return NewCachedStore(store, rdb, cfg.CacheTTL, log), nil
}
