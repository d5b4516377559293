package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// FileStore keeps all clients in a single JSON document
// ({"clientes": [...]}) at any location afs can address.
type FileStore struct {
	fs  afs.Service
	url string
	mu  sync.RWMutex
	now func() time.Time
}

// NewFileStore creates a store backed by the document at URL. A missing
// document is treated as an empty client list.
func NewFileStore(fs afs.Service, URL string) *FileStore {
	return &FileStore{fs: fs, url: URL, now: time.Now}
}

func (s *FileStore) load(ctx context.Context) ([]models.Client, error) {
	exists, err := s.fs.Exists(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to check data file %s: %w", s.url, err)
	}
	if !exists {
		return []models.Client{}, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", s.url, err)
	}
	var doc models.ClientList
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode data file %s: %w", s.url, err)
	}
	if doc.Clients == nil {
		doc.Clients = []models.Client{}
	}
	return doc.Clients, nil
}

func (s *FileStore) save(ctx context.Context, clients []models.Client) error {
	data, err := json.MarshalIndent(models.ClientList{Clients: clients}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode clients: %w", err)
	}
	if err := s.fs.Upload(ctx, s.url, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write data file %s: %w", s.url, err)
	}
	return nil
}

func indexOf(clients []models.Client, cpf string) int {
	for i := range clients {
		if clients[i].CPF == cpf {
			return i
		}
	}
	return -1
}

// List returns every client ordered by name
func (s *FileStore) List(ctx context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(clients, func(i, j int) bool {
		if clients[i].Name != clients[j].Name {
			return clients[i].Name < clients[j].Name
		}
		return clients[i].CPF < clients[j].CPF
	})
	return clients, nil
}

// Get retrieves a client by CPF
func (s *FileStore) Get(ctx context.Context, cpf string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(clients, cpf)
	if i < 0 {
		return nil, ErrClientNotFound
	}
	return &clients[i], nil
}

// Create appends a new client
func (s *FileStore) Create(ctx context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(clients, c.CPF) >= 0 {
		return ErrClientExists
	}
	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = &now, &now
	return s.save(ctx, append(clients, *c))
}

// Upsert inserts a client or overwrites the stored one with the same CPF
func (s *FileStore) Upsert(ctx context.Context, c *models.Client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	now := s.now().UTC()
	c.UpdatedAt = &now
	i := indexOf(clients, c.CPF)
	if i < 0 {
		c.CreatedAt = &now
		return true, s.save(ctx, append(clients, *c))
	}
	c.CreatedAt = clients[i].CreatedAt
	clients[i] = *c
	return false, s.save(ctx, clients)
}

// Ping verifies the data file can be read
func (s *FileStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.load(ctx)
	return err
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}
