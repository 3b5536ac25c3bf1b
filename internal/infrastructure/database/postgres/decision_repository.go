package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const decisionColumns = `id::text, customer_name, amount::text, eligible, mode, checks, decided_at`

type DecisionRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ eligibility.DecisionRepository = (*DecisionRepository)(nil)

func NewDecisionRepository(db DBPool, logger *slog.Logger) *DecisionRepository {
	if db == nil {
		panic("DBPool cannot be nil for DecisionRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewDecisionRepository, using default stderr handler")
	}
	return &DecisionRepository{
		db:     db,
		logger: logger.With("component", "DecisionRepository"),
	}
}

func (r *DecisionRepository) Save(ctx context.Context, d *eligibility.Decision) error {
	if d == nil {
		return fmt.Errorf("%w: decision cannot be nil", apperrors.ErrInvalidArgument)
	}
	if d.ID == uuid.Nil {
		return fmt.Errorf("%w: decision ID must be set before saving", apperrors.ErrInvalidArgument)
	}
	logCtx := r.logger.With(slog.String("decisionID", d.ID.String()))
	logCtx.InfoContext(ctx, "Attempting to insert decision")

	checks, err := json.Marshal(d.Checks)
	if err != nil {
		return fmt.Errorf("%w: failed to encode checks: %w", apperrors.ErrInternalServer, err)
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO eligibility_decisions (id, customer_name, amount, eligible, mode, checks, decided_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.Exec(ctx, query,
		d.ID,
		d.CustomerName,
		d.Amount,
		d.Eligible,
		string(d.Mode),
		checks,
		d.DecidedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Failed to insert decision due to unique constraint violation")
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to insert decision", slog.Any("error", err))
		return apperrors.WrapDatabaseError(err, "failed to store eligibility decision")
	}

	logCtx.InfoContext(ctx, "Decision inserted successfully")
	return nil
}

func (r *DecisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*eligibility.Decision, error) {
	logCtx := r.logger.With(slog.String("decisionID", id.String()))
	logCtx.InfoContext(ctx, "Attempting to find decision by ID")

	query := `SELECT ` + decisionColumns + `
        FROM eligibility_decisions
        WHERE id = $1`

	d, err := scanDecision(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Decision not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan decision by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get decision by ID: %w", apperrors.ErrDatabase, err)
	}
	return d, nil
}

func (r *DecisionRepository) FindByCustomer(ctx context.Context, customerName string) ([]*eligibility.Decision, error) {
	logCtx := r.logger.With(slog.String("operation", "FindByCustomer"), slog.String("customer", customerName))
	logCtx.DebugContext(ctx, "Attempting to find decisions by customer")

	query := `SELECT ` + decisionColumns + `
        FROM eligibility_decisions
        WHERE customer_name = $1
        ORDER BY decided_at DESC`

	return r.queryDecisions(ctx, logCtx, query, customerName)
}

func (r *DecisionRepository) FindRejectedSince(ctx context.Context, since time.Time) ([]*eligibility.Decision, error) {
	logCtx := r.logger.With(slog.String("operation", "FindRejectedSince"), slog.Time("since", since))
	logCtx.DebugContext(ctx, "Attempting to find rejected decisions")

	query := `SELECT ` + decisionColumns + `
        FROM eligibility_decisions
        WHERE eligible = FALSE AND decided_at >= $1
        ORDER BY decided_at ASC`

	return r.queryDecisions(ctx, logCtx, query, since)
}

func (r *DecisionRepository) queryDecisions(ctx context.Context, logCtx *slog.Logger, query string, args ...any) ([]*eligibility.Decision, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query decisions", slog.Any("error", err))
		return nil, translateDBError(err, logCtx)
	}
	defer rows.Close()

	decisions := make([]*eligibility.Decision, 0)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan decision row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan decision: %w", apperrors.ErrDatabase, err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating decision rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed iterating decisions: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Decisions found", slog.Int("count", len(decisions)))
	return decisions, nil
}

func scanDecision(row pgx.Row) (*eligibility.Decision, error) {
	var (
		id, amount, mode string
		checks           []byte
		d                eligibility.Decision
	)
	if err := row.Scan(&id, &d.CustomerName, &amount, &d.Eligible, &mode, &checks, &d.DecidedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid decision id %q: %w", id, err)
	}
	d.ID = parsedID

	if d.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid decision amount %q: %w", amount, err)
	}
	d.Mode = eligibility.EvaluationMode(mode)

	if len(checks) > 0 {
		if err := json.Unmarshal(checks, &d.Checks); err != nil {
			return nil, fmt.Errorf("invalid decision checks: %w", err)
		}
	}
	return &d, nil
}
