package decision

import (
	"fmt"
	"math"
)

// Rule identifiers reported in Result.Failed
const (
	RuleMinScore       = "min_score"
	RuleRestriction    = "restriction"
	RuleSevereLateness = "severe_lateness"
	RuleOnTimeRatio    = "on_time_ratio"
)

// Features is the fixed-order scorer input vector
type Features [6]float64

// Prediction is a scorer output
type Prediction struct {
	Label       int
	Probability float64
}

// Scorer is an optional classifier consulted for the advisory probability.
type Scorer interface {
	Predict(features Features) (Prediction, error)
}

// Result is the outcome of one evaluation
type Result struct {
	Approved    bool     `json:"aprovado"`
	Probability float64  `json:"probabilidade"`
	Limit       float64  `json:"limite"`
	Reasons     []string `json:"motivos"`

	Failed     []string `json:"-"`
	Scored     bool     `json:"-"`
	ScoringErr error    `json:"-"`
}

// Engine produces credit decisions from threshold rules. The scorer only
// supplies the probability; approval is decided by the rules alone.
type Engine struct {
	rules  Rules
	scorer Scorer
}

// NewEngine creates an engine. scorer may be nil.
func NewEngine(rules Rules, scorer Scorer) *Engine {
	return &Engine{rules: rules, scorer: scorer}
}

// Rules returns the rule set in use
func (e *Engine) Rules() Rules {
	return e.rules
}

// Evaluate applies every rule to a validated record.
func (e *Engine) Evaluate(rec ClientRecord) Result {
	res := Result{Reasons: []string{}}

	if rec.Score < e.rules.MinScore {
		res.fail(RuleMinScore, fmt.Sprintf("Score baixo (mínimo: %d)", e.rules.MinScore))
	}
	if rec.HasRestrictions {
		res.fail(RuleRestriction, "Restrições no SPC/Serasa")
	}
	if rec.LateCounts.Late90 > 0 {
		res.fail(RuleSevereLateness, fmt.Sprintf("Atrasos superiores a 90 dias: %d", rec.LateCounts.Late90))
	}
	if e.rules.MinOnTimeRatio > 0 && rec.OnTimeRatio != nil && *rec.OnTimeRatio < e.rules.MinOnTimeRatio {
		res.fail(RuleOnTimeRatio, fmt.Sprintf("Histórico de pagamentos insuficiente (mínimo: %.0f%%)", e.rules.MinOnTimeRatio*100))
	}

	res.Approved = len(res.Reasons) == 0
	if res.Approved {
		res.Limit = e.rules.limit(rec.Score, rec.MonthlyIncome)
		res.Probability = 1
	}

	if e.scorer != nil {
		prediction, err := e.scorer.Predict(rec.Features())
		if err != nil {
			res.ScoringErr = err
		} else {
			res.Probability = clamp01(prediction.Probability)
			res.Scored = true
		}
	}
	return res
}

func (r *Result) fail(rule, reason string) {
	r.Failed = append(r.Failed, rule)
	r.Reasons = append(r.Reasons, reason)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}
