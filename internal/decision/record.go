package decision

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/credit-service/internal/models"
)

// Score domain accepted by the engine
const (
	MinScoreDomain = 300
	MaxScoreDomain = 1000
)

// ErrPrecondition marks a record that must not reach Evaluate.
var ErrPrecondition = errors.New("precondition violation")

// LateCounts holds late payment counters by delay bucket
type LateCounts struct {
	Late30 int // 1-30 days
	Late60 int // 31-60 days
	Late90 int // over 60 days, severe
}

// ClientRecord is the engine input
type ClientRecord struct {
	Score           int
	HasRestrictions bool
	MonthlyIncome   float64
	LateCounts      LateCounts
	OnTimeRatio     *float64
}

// RecordFromClient maps a stored client onto an engine input.
func RecordFromClient(c *models.Client) ClientRecord {
	return ClientRecord{
		Score:           c.Score,
		HasRestrictions: c.HasRestrictions,
		MonthlyIncome:   c.MonthlyIncome,
		LateCounts: LateCounts{
			Late30: c.PaymentHistory.Late30,
			Late60: c.PaymentHistory.Late60,
			Late90: c.PaymentHistory.Late90,
		},
		OnTimeRatio: c.PaymentHistory.OnTimeRatio,
	}
}

// Validate reports every precondition the record breaks. Callers run it
// before Evaluate; the returned error wraps ErrPrecondition.
func (r ClientRecord) Validate() error {
	var problems []string
	if r.Score < MinScoreDomain || r.Score > MaxScoreDomain {
		problems = append(problems, fmt.Sprintf("score %d outside [%d, %d]", r.Score, MinScoreDomain, MaxScoreDomain))
	}
	if r.MonthlyIncome <= 0 {
		problems = append(problems, "monthly income must be positive")
	}
	if r.LateCounts.Late30 < 0 || r.LateCounts.Late60 < 0 || r.LateCounts.Late90 < 0 {
		problems = append(problems, "late payment counts must be non-negative")
	}
	if r.OnTimeRatio != nil && (*r.OnTimeRatio < 0 || *r.OnTimeRatio > 1) {
		problems = append(problems, "on-time ratio outside [0, 1]")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPrecondition, strings.Join(problems, "; "))
}

// Features returns the scorer input in its fixed order:
// score, restriction flag, late30, late60, late90, income.
func (r ClientRecord) Features() Features {
	restricted := 0.0
	if r.HasRestrictions {
		restricted = 1
	}
	return Features{
		float64(r.Score),
		restricted,
		float64(r.LateCounts.Late30),
		float64(r.LateCounts.Late60),
		float64(r.LateCounts.Late90),
		r.MonthlyIncome,
	}
}
