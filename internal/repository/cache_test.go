package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore is an in-memory ClientStore that counts Get calls
type countingStore struct {
	mu      sync.Mutex
	clients map[string]models.Client
	gets    int
}

func newCountingStore() *countingStore {
	return &countingStore{clients: map[string]models.Client{}}
}

func (s *countingStore) List(context.Context) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Client{}
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out, nil
}

func (s *countingStore) Get(_ context.Context, cpf string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	c, ok := s.clients[cpf]
	if !ok {
		return nil, ErrClientNotFound
	}
	return &c, nil
}

func (s *countingStore) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.CPF]; ok {
		return ErrClientExists
	}
	s.clients[c.CPF] = *c
	return nil
}

func (s *countingStore) Upsert(_ context.Context, c *models.Client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.clients[c.CPF]
	s.clients[c.CPF] = *c
	return !existed, nil
}

func (s *countingStore) Ping(context.Context) error { return nil }
func (s *countingStore) Close() error               { return nil }

func setupCache(t *testing.T) (*CachedStore, *countingStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	backing := newCountingStore()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCachedStore(backing, rdb, time.Minute, log), backing, mr
}

func TestCachedStore_ReadThrough(t *testing.T) {
	store, backing, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleClient()))

	first, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)
	second, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, backing.gets)
	assert.True(t, mr.Exists("credit:client:12345678901"))
	assert.Equal(t, time.Minute, mr.TTL("credit:client:12345678901"))
}

func TestCachedStore_UpsertInvalidates(t *testing.T) {
	store, backing, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleClient()))

	_, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)

	updated := sampleClient()
	updated.Score = 910
	_, err = store.Upsert(ctx, updated)
	require.NoError(t, err)
	assert.False(t, mr.Exists("credit:client:12345678901"))

	got, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, 910, got.Score)
	assert.Equal(t, 2, backing.gets)
}

func TestCachedStore_NotFoundIsNotCached(t *testing.T) {
	store, _, mr := setupCache(t)

	_, err := store.Get(context.Background(), "00000000000")
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.False(t, mr.Exists("credit:client:00000000000"))
}

func TestCachedStore_BypassesBrokenCache(t *testing.T) {
	store, backing, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleClient()))

	mr.SetError("ERR cache unavailable")

	got, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", got.Name)
	assert.Equal(t, 1, backing.gets)
	assert.NoError(t, store.Ping(ctx))
}

func TestCachedStore_DiscardsCorruptEntry(t *testing.T) {
	store, backing, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, sampleClient()))
	require.NoError(t, mr.Set("credit:client:12345678901", "{broken"))

	got, err := store.Get(ctx, "12345678901")
	require.NoError(t, err)
	assert.Equal(t, 700, got.Score)
	assert.Equal(t, 1, backing.gets)
}
