package decision

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	path := writeRules(t, "min_score: 450\nmin_on_time_ratio: 0.7\n")
	rules, err := LoadRules(ctx, fs, path)
	require.NoError(t, err)
	assert.Equal(t, 450, rules.MinScore)
	assert.Equal(t, 0.7, rules.MinOnTimeRatio)
	assert.Equal(t, 0.5, rules.IncomeShare)
	assert.Equal(t, 1000.0, rules.ScoreScale)
}

func TestLoadRules_Errors(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	_, err := LoadRules(ctx, fs, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadRules(ctx, fs, writeRules(t, "min_score: [1, 2"))
	assert.Error(t, err)

	_, err = LoadRules(ctx, fs, writeRules(t, "income_share: 2\n"))
	assert.ErrorContains(t, err, "income_share")

	_, err = LoadRules(ctx, fs, writeRules(t, "income_share: .nan\n"))
	assert.ErrorContains(t, err, "income_share")

	_, err = LoadRules(ctx, fs, writeRules(t, "score_scale: .inf\n"))
	assert.ErrorContains(t, err, "score_scale")

	_, err = LoadRules(ctx, fs, writeRules(t, "min_on_time_ratio: .nan\n"))
	assert.ErrorContains(t, err, "min_on_time_ratio")
}

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	r := DefaultRules()
	r.MinScore = 0
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.MinOnTimeRatio = 1.5
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.ScoreScale = 0
	assert.Error(t, r.Validate())

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		r = DefaultRules()
		r.MinOnTimeRatio = bad
		assert.Error(t, r.Validate(), "min_on_time_ratio %v", bad)

		r = DefaultRules()
		r.IncomeShare = bad
		assert.Error(t, r.Validate(), "income_share %v", bad)

		r = DefaultRules()
		r.ScoreScale = bad
		assert.Error(t, r.Validate(), "score_scale %v", bad)
	}
}
