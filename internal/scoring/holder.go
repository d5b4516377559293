package scoring

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Dan9191/credit-service/internal/decision"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
)

const reloadTimeout = 30 * time.Second

// Holder publishes the current model to concurrent readers. A model is
// stored only after it has been fully decoded and validated.
type Holder struct {
	fs    afs.Service
	url   string
	log   *logrus.Logger
	model atomic.Pointer[Forest]
	cron  *cron.Cron
}

var _ decision.Scorer = (*Holder)(nil)

// NewHolder creates an empty holder for the model at URL
func NewHolder(fs afs.Service, URL string, log *logrus.Logger) *Holder {
	return &Holder{fs: fs, url: URL, log: log}
}

// Set publishes forest
func (h *Holder) Set(forest *Forest) {
	h.model.Store(forest)
}

// Current returns the published model or nil
func (h *Holder) Current() *Forest {
	return h.model.Load()
}

// Predict implements decision.Scorer
func (h *Holder) Predict(features decision.Features) (decision.Prediction, error) {
	forest := h.model.Load()
	if forest == nil {
		return decision.Prediction{}, ErrModelNotLoaded
	}
	return forest.Predict(features)
}

// Reload reads the model file again. On failure the previous model stays
// in place.
func (h *Holder) Reload(ctx context.Context) error {
	forest, err := Load(ctx, h.fs, h.url)
	if err != nil {
		h.log.Warnf("Model reload failed, keeping current model: %v", err)
		return err
	}
	h.model.Store(forest)
	h.log.Infof("Model reloaded from %s (%d trees)", h.url, len(forest.Trees))
	return nil
}

// Schedule reloads the model on a cron spec such as "@every 10m".
func (h *Holder) Schedule(spec string) error {
	if h.cron != nil {
		return fmt.Errorf("model reload already scheduled")
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		_ = h.Reload(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule model reload: %w", err)
	}
	c.Start()
	h.cron = c
	h.log.Infof("Model reload scheduled: %s", spec)
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish
func (h *Holder) Stop() {
	if h.cron == nil {
		return
	}
	<-h.cron.Stop().Done()
	h.cron = nil
}
