package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mortgage-eligibility/internal/event"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const decisionNotFound = "Decision not found by repository"

// Evaluator is the part of Mortgage the service depends on.
type Evaluator interface {
	Evaluate(ctx context.Context, c Customer, amount decimal.Decimal) (Decision, error)
}

var _ Evaluator = (*Mortgage)(nil)

// DecisionObserver is told about every recorded decision.
type DecisionObserver interface {
	ObserveDecision(outcome Outcome)
}

type EligibilityService interface {
	CheckEligibility(ctx context.Context, name string, amount decimal.Decimal) (*Decision, error)
	GetDecision(ctx context.Context, id uuid.UUID) (*Decision, error)
	ListDecisions(ctx context.Context, customerName string) ([]*Decision, error)
}

var _ EligibilityService = (*eligibilityService)(nil)

type eligibilityService struct {
	evaluator Evaluator
	repo      DecisionRepository
	pub       event.Publisher
	observer  DecisionObserver
	logger    *slog.Logger
}

func NewEligibilityService(evaluator Evaluator, repo DecisionRepository, pub event.Publisher, observer DecisionObserver, logger *slog.Logger) EligibilityService {
	if evaluator == nil {
		panic("eligibility evaluator cannot be nil")
	}
	if repo == nil {
		panic("decision repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewEligibilityService, using default stderr handler")
	}
	if pub == nil {
		logger.Warn("Warning: No event publisher provided to NewEligibilityService, events will only be logged")
		pub = event.NewLogPublisher(logger)
	}

	return &eligibilityService{
		evaluator: evaluator,
		repo:      repo,
		pub:       pub,
		observer:  observer,
		logger:    logger.With(slog.String("component", "eligibilityService")),
	}
}

func (s *eligibilityService) CheckEligibility(ctx context.Context, name string, amount decimal.Decimal) (*Decision, error) {
	logger := s.logger.With(slog.String("customer", name), slog.String("amount", amount.String()))
	logger.InfoContext(ctx, "Attempting eligibility check")

	cust, err := NewCustomer(name)
	if err != nil {
		logger.WarnContext(ctx, "Validation failed: customer name is empty")
		return nil, err
	}
	if !amount.IsPositive() {
		logger.WarnContext(ctx, "Validation failed: amount is not positive")
		return nil, apperrors.NewValidationError("amount", "amount must be greater than zero")
	}

	decision, err := s.evaluator.Evaluate(ctx, cust, amount)
	if err != nil {
		logger.ErrorContext(ctx, "Eligibility evaluation failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to evaluate eligibility for %s: %w", cust.Name(), err)
	}
	decision.ID = uuid.New()
	logger = logger.With(slog.String("decisionID", decision.ID.String()))

	logger.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, &decision); err != nil {
		logger.ErrorContext(ctx, "Repository failed to save decision", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveDecision(decision.Outcome())
	}

	if pubErr := s.pub.PublishEligibilityDecided(ctx, NewDecidedEvent(&decision)); pubErr != nil {
		logger.ErrorContext(ctx, "Decision saved, but FAILED to publish decided event", slog.Any("error", pubErr))
	} else {
		logger.InfoContext(ctx, "Successfully published decided event")
	}

	logger.InfoContext(ctx, "Eligibility decided", slog.String("outcome", string(decision.Outcome())))
	return &decision, nil
}

func (s *eligibilityService) GetDecision(ctx context.Context, id uuid.UUID) (*Decision, error) {
	logger := s.logger.With(slog.String("decisionID", id.String()))
	logger.InfoContext(ctx, "Attempting to get decision")

	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, decisionNotFound)
			return nil, err
		}
		logger.ErrorContext(ctx, "Repository error getting decision", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get decision %s: %w", id, err)
	}
	return d, nil
}

func (s *eligibilityService) ListDecisions(ctx context.Context, customerName string) ([]*Decision, error) {
	cust, err := NewCustomer(customerName)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With(slog.String("customer", cust.Name()))
	logger.InfoContext(ctx, "Attempting to list decisions")

	decisions, err := s.repo.FindByCustomer(ctx, cust.Name())
	if err != nil {
		logger.ErrorContext(ctx, "Repository error listing decisions", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list decisions for %s: %w", cust.Name(), err)
	}
	logger.InfoContext(ctx, "Successfully listed decisions", slog.Int("count", len(decisions)))
	return decisions, nil
}

func NewDecidedEvent(d *Decision) event.EligibilityDecidedEvent {
	failed := d.FailedChecks()
	names := make([]string, 0, len(failed))
	for _, c := range failed {
		names = append(names, string(c))
	}
	return event.EligibilityDecidedEvent{
		Timestamp: time.Now(),
		Payload: event.EligibilityEventPayload{
			DecisionID:   d.ID.String(),
			CustomerName: d.CustomerName,
			Amount:       d.Amount.String(),
			Eligible:     d.Eligible,
			Outcome:      string(d.Outcome()),
			Mode:         string(d.Mode),
			FailedChecks: names,
		},
	}
}
