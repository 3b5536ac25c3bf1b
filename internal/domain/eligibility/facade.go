package eligibility

import (
	"context"
	"io"
	"log/slog"
	"time"

	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// CheckObserver is notified after every collaborator call.
type CheckObserver interface {
	ObserveCheck(check CheckName, passed bool, err error, elapsed time.Duration)
}

type Option func(*Mortgage)

func WithMode(mode EvaluationMode) Option {
	return func(m *Mortgage) {
		m.mode = mode
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Mortgage) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithObserver(observer CheckObserver) Option {
	return func(m *Mortgage) {
		m.observer = observer
	}
}

// Mortgage answers a single question, whether a customer may borrow an
// amount, by composing three independent checks. It keeps no state between
// calls and is safe for concurrent use.
type Mortgage struct {
	savings  SavingsChecker
	loans    LoanHistoryChecker
	credit   CreditChecker
	mode     EvaluationMode
	logger   *slog.Logger
	observer CheckObserver
}

func NewMortgage(savings SavingsChecker, loans LoanHistoryChecker, credit CreditChecker, opts ...Option) *Mortgage {
	if savings == nil || loans == nil || credit == nil {
		panic("mortgage collaborators cannot be nil")
	}

	m := &Mortgage{
		savings: savings,
		loans:   loans,
		credit:  credit,
		mode:    ModeShortCircuit,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("component", "Mortgage"), slog.String("mode", string(m.mode)))
	return m
}

func (m *Mortgage) Mode() EvaluationMode {
	return m.mode
}

// IsEligible reports whether all three checks pass for the customer.
func (m *Mortgage) IsEligible(ctx context.Context, c Customer, amount decimal.Decimal) (bool, error) {
	d, err := m.Evaluate(ctx, c, amount)
	if err != nil {
		return false, err
	}
	return d.Eligible, nil
}

// Evaluate runs the checks in EvaluationOrder and records what each one
// returned. The returned Decision has no ID; identity is assigned by the
// caller that persists it.
func (m *Mortgage) Evaluate(ctx context.Context, c Customer, amount decimal.Decimal) (Decision, error) {
	m.logger.DebugContext(ctx, c.Name()+" applies for "+amount.StringFixed(2)+" loan")

	decision := Decision{
		CustomerName: c.Name(),
		Amount:       amount,
		Eligible:     true,
		Mode:         m.mode,
		Checks:       make([]CheckResult, 0, len(EvaluationOrder)),
	}

	for _, check := range EvaluationOrder {
		if !decision.Eligible && m.mode == ModeShortCircuit {
			decision.Checks = append(decision.Checks, CheckResult{Check: check})
			continue
		}

		passed, err := m.run(ctx, check, c, amount)
		if err != nil {
			m.logger.ErrorContext(ctx, "Eligibility check failed to complete",
				slog.String("check", string(check)), slog.String("customer", c.Name()), slog.Any("error", err))
			return Decision{}, apperrors.WrapCheckError(string(check), err)
		}

		decision.Checks = append(decision.Checks, CheckResult{Check: check, Passed: passed, Evaluated: true})
		if !passed {
			decision.Eligible = false
		}
	}

	decision.DecidedAt = time.Now().UTC()
	m.logger.DebugContext(ctx, "Eligibility evaluated",
		slog.String("customer", c.Name()), slog.Bool("eligible", decision.Eligible))
	return decision, nil
}

func (m *Mortgage) run(ctx context.Context, check CheckName, c Customer, amount decimal.Decimal) (bool, error) {
	start := time.Now()

	var passed bool
	var err error
	switch check {
	case CheckSavings:
		passed, err = m.savings.HasSufficientSavings(ctx, c, amount)
	case CheckLoanHistory:
		passed, err = m.loans.HasNoBadLoans(ctx, c)
	case CheckCredit:
		passed, err = m.credit.HasGoodCredit(ctx, c)
	}

	if m.observer != nil {
		m.observer.ObserveCheck(check, passed, err, time.Since(start))
	}
	return passed, err
}
