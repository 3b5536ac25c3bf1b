package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decisionRowColumns = []string{"id", "customer_name", "amount", "eligible", "mode", "checks", "decided_at"}

var decidedAt = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func setupDecisionRepo(t *testing.T) (context.Context, *DecisionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool := newMockPool(t)
	return context.Background(), NewDecisionRepository(mockPool, logger), mockPool
}

func sampleDecision() *eligibility.Decision {
	return &eligibility.Decision{
		ID:           uuid.MustParse("3b1d6b52-8f5b-4c3e-9a57-3c8f7c8f2d11"),
		CustomerName: "Ann McKinsey",
		Amount:       decimal.NewFromInt(125000),
		Eligible:     false,
		Mode:         eligibility.ModeShortCircuit,
		Checks: []eligibility.CheckResult{
			{Check: eligibility.CheckSavings, Passed: false, Evaluated: true},
			{Check: eligibility.CheckLoanHistory},
			{Check: eligibility.CheckCredit},
		},
		DecidedAt: decidedAt,
	}
}

const checksJSON = `[{"check":"Savings","passed":false,"evaluated":true},{"check":"LoanHistory","passed":false,"evaluated":false},{"check":"Credit","passed":false,"evaluated":false}]`

func TestSaveDecisionWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	d := sampleDecision()

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO eligibility_decisions")).
		WithArgs(d.ID, d.CustomerName, d.Amount, d.Eligible, string(d.Mode), []byte(checksJSON), d.DecidedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Save(ctx, d)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveDecisionRejectsMissingID(t *testing.T) {
	ctx, repo, _ := setupDecisionRepo(t)
	d := sampleDecision()
	d.ID = uuid.Nil

	assert.ErrorIs(t, repo.Save(ctx, d), apperrors.ErrInvalidArgument)
	assert.ErrorIs(t, repo.Save(ctx, nil), apperrors.ErrInvalidArgument)
}

func TestSaveDecisionDuplicate(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	d := sampleDecision()

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO eligibility_decisions")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "eligibility_decisions_pkey"})

	err := repo.Save(ctx, d)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestSaveDecisionDatabaseError(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)

	mockPool.ExpectExec(regexp.QuoteMeta("INSERT INTO eligibility_decisions")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	err := repo.Save(ctx, sampleDecision())
	assert.ErrorIs(t, err, apperrors.ErrDatabase)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "DB_ERROR", appErr.Code)
	assert.Equal(t, "failed to store eligibility decision", appErr.Message)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindDecisionByIDWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	expected := sampleDecision()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM eligibility_decisions")).
		WithArgs(expected.ID).
		WillReturnRows(pgxmock.NewRows(decisionRowColumns).
			AddRow(expected.ID.String(), "Ann McKinsey", "125000", false, "short-circuit", []byte(checksJSON), decidedAt))

	d, err := repo.FindByID(ctx, expected.ID)
	require.NoError(t, err)
	assert.Equal(t, expected.ID, d.ID)
	assert.Equal(t, expected.CustomerName, d.CustomerName)
	assert.True(t, expected.Amount.Equal(d.Amount))
	assert.Equal(t, expected.Checks, d.Checks)
	assert.Equal(t, eligibility.ModeShortCircuit, d.Mode)
	assert.Equal(t, decidedAt, d.DecidedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindDecisionByIDNotFound(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	id := uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM eligibility_decisions")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	d, err := repo.FindByID(ctx, id)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFindDecisionsByCustomer(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	first, second := uuid.New(), uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta("ORDER BY decided_at DESC")).
		WithArgs("Ann McKinsey").
		WillReturnRows(pgxmock.NewRows(decisionRowColumns).
			AddRow(first.String(), "Ann McKinsey", "125000", true, "full", []byte(`[]`), decidedAt.Add(time.Hour)).
			AddRow(second.String(), "Ann McKinsey", "90000.50", false, "short-circuit", []byte(checksJSON), decidedAt))

	decisions, err := repo.FindByCustomer(ctx, "Ann McKinsey")
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, first, decisions[0].ID)
	assert.True(t, decisions[0].Eligible)
	assert.Equal(t, eligibility.ModeFull, decisions[0].Mode)
	assert.Equal(t, "90000.5", decisions[1].Amount.String())
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindRejectedSince(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)
	since := decidedAt.Add(-24 * time.Hour)

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE eligible = FALSE AND decided_at >= $1")).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows(decisionRowColumns).
			AddRow(uuid.New().String(), "Ann McKinsey", "125000", false, "short-circuit", []byte(checksJSON), decidedAt))

	decisions, err := repo.FindRejectedSince(ctx, since)
	require.NoError(t, err)
	require.Len(t, decisions, 1)
	assert.False(t, decisions[0].Eligible)
}

func TestFindRejectedSinceQueryError(t *testing.T) {
	ctx, repo, mockPool := setupDecisionRepo(t)

	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE eligible = FALSE")).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("relation missing"))

	_, err := repo.FindRejectedSince(ctx, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}
