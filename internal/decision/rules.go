package decision

import (
	"context"
	"fmt"
	"math"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Rules holds the thresholds and limit factors used by the engine
type Rules struct {
	MinScore       int     `yaml:"min_score"`
	MinOnTimeRatio float64 `yaml:"min_on_time_ratio"` // 0 disables the rule
	IncomeShare    float64 `yaml:"income_share"`
	ScoreScale     float64 `yaml:"score_scale"`
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		MinScore:    400,
		IncomeShare: 0.5,
		ScoreScale:  1000,
	}
}

// Validate checks rule values
func (r Rules) Validate() error {
	if r.MinScore <= 0 {
		return fmt.Errorf("min_score must be positive, got %d", r.MinScore)
	}
	if !finite(r.MinOnTimeRatio) || r.MinOnTimeRatio < 0 || r.MinOnTimeRatio > 1 {
		return fmt.Errorf("min_on_time_ratio must be within [0, 1], got %v", r.MinOnTimeRatio)
	}
	if !finite(r.IncomeShare) || r.IncomeShare <= 0 || r.IncomeShare > 1 {
		return fmt.Errorf("income_share must be within (0, 1], got %v", r.IncomeShare)
	}
	if !finite(r.ScoreScale) || r.ScoreScale <= 0 {
		return fmt.Errorf("score_scale must be positive and finite, got %v", r.ScoreScale)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LoadRules reads a YAML rules file. Keys missing from the file keep their
// default values.
func LoadRules(ctx context.Context, fs afs.Service, URL string) (Rules, error) {
	rules := DefaultRules()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return rules, fmt.Errorf("failed to read rules file %s: %w", URL, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse rules file %s: %w", URL, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules file %s: %w", URL, err)
	}
	return rules, nil
}

// limit computes round(income * share * score/scale, 2) on integer cents so
// that halves round away from zero.
func (r Rules) limit(score int, income float64) float64 {
	cents := math.Round(income * 100)
	return math.Round(cents*r.IncomeShare*float64(score)/r.ScoreScale) / 100
}
