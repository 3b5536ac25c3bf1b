package eligibility

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EvaluationMode string

const (
	// ModeShortCircuit stops at the first failing check; later checks are
	// never invoked.
	ModeShortCircuit EvaluationMode = "short-circuit"
	// ModeFull invokes every check so the decision names all failures.
	ModeFull EvaluationMode = "full"
)

func ParseEvaluationMode(s string) (EvaluationMode, error) {
	switch EvaluationMode(s) {
	case ModeShortCircuit, "":
		return ModeShortCircuit, nil
	case ModeFull:
		return ModeFull, nil
	default:
		return "", fmt.Errorf("unknown evaluation mode %q", s)
	}
}

type Outcome string

const (
	OutcomeApproved Outcome = "Approved"
	OutcomeRejected Outcome = "Rejected"
)

type CheckResult struct {
	Check     CheckName `json:"check"`
	Passed    bool      `json:"passed"`
	Evaluated bool      `json:"evaluated"`
}

type Decision struct {
	ID           uuid.UUID
	CustomerName string
	Amount       decimal.Decimal
	Eligible     bool
	Mode         EvaluationMode
	Checks       []CheckResult
	DecidedAt    time.Time
}

func (d *Decision) Outcome() Outcome {
	if d.Eligible {
		return OutcomeApproved
	}
	return OutcomeRejected
}

// FailedChecks lists the checks that ran and returned false.
func (d *Decision) FailedChecks() []CheckName {
	var failed []CheckName
	for _, r := range d.Checks {
		if r.Evaluated && !r.Passed {
			failed = append(failed, r.Check)
		}
	}
	return failed
}

// Summary is the closing line of the console demonstration.
func (d *Decision) Summary() string {
	return fmt.Sprintf("%s has been %s", d.CustomerName, d.Outcome())
}
