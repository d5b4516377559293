package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Load reads and validates a JSON model file
func Load(ctx context.Context, fs afs.Service, URL string) (*Forest, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", URL, err)
	}
	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", URL, err)
	}
	if err := forest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", URL, err)
	}
	return &forest, nil
}

// Save writes a model file
func Save(ctx context.Context, fs afs.Service, URL string, forest *Forest) error {
	data, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write model %s: %w", URL, err)
	}
	return nil
}

// Bootstrap loads the model at URL, writing SeedForest there first when the
// file does not exist. created reports whether the seed was written.
func Bootstrap(ctx context.Context, fs afs.Service, URL string) (forest *Forest, created bool, err error) {
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check model %s: %w", URL, err)
	}
	if exists {
		forest, err = Load(ctx, fs, URL)
		return forest, false, err
	}
	forest = SeedForest()
	if err := Save(ctx, fs, URL, forest); err != nil {
		return nil, false, err
	}
	return forest, true, nil
}
