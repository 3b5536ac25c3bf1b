package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// SavingsChecker passes when the customer's savings cover at least minRatio
// of the requested amount.
type SavingsChecker struct {
	db       DBPool
	minRatio decimal.Decimal
	logger   *slog.Logger
}

var _ eligibility.SavingsChecker = (*SavingsChecker)(nil)

func NewSavingsChecker(db DBPool, minRatio decimal.Decimal, logger *slog.Logger) *SavingsChecker {
	if db == nil {
		panic("DBPool cannot be nil for SavingsChecker")
	}
	return &SavingsChecker{
		db:       db,
		minRatio: minRatio,
		logger:   logger.With("component", "SavingsChecker"),
	}
}

func (s *SavingsChecker) HasSufficientSavings(ctx context.Context, c eligibility.Customer, amount decimal.Decimal) (bool, error) {
	logCtx := s.logger.With(slog.String("customer", c.Name()))
	logCtx.DebugContext(ctx, eligibility.TraceLine(eligibility.CheckSavings, c))

	query := `
        SELECT COALESCE(SUM(balance), 0)::text
        FROM savings_accounts
        WHERE customer_name = $1 AND closed_at IS NULL`

	var raw string
	if err := s.db.QueryRow(ctx, query, c.Name()).Scan(&raw); err != nil {
		return false, translateDBError(err, logCtx)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		logCtx.ErrorContext(ctx, "Savings balance is not a decimal", slog.String("raw", raw))
		return false, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	required := amount.Mul(s.minRatio)
	sufficient := balance.GreaterThanOrEqual(required)
	logCtx.DebugContext(ctx, "Savings evaluated",
		slog.String("balance", balance.StringFixed(2)),
		slog.String("required", required.StringFixed(2)),
		slog.Bool("sufficient", sufficient))
	return sufficient, nil
}

// LoanHistoryChecker passes when none of the customer's past loans defaulted
// or are currently delinquent.
type LoanHistoryChecker struct {
	db     DBPool
	logger *slog.Logger
}

var _ eligibility.LoanHistoryChecker = (*LoanHistoryChecker)(nil)

const (
	loanStatusDefaulted  = "DEFAULTED"
	loanStatusDelinquent = "DELINQUENT"
)

func NewLoanHistoryChecker(db DBPool, logger *slog.Logger) *LoanHistoryChecker {
	if db == nil {
		panic("DBPool cannot be nil for LoanHistoryChecker")
	}
	return &LoanHistoryChecker{
		db:     db,
		logger: logger.With("component", "LoanHistoryChecker"),
	}
}

func (l *LoanHistoryChecker) HasNoBadLoans(ctx context.Context, c eligibility.Customer) (bool, error) {
	logCtx := l.logger.With(slog.String("customer", c.Name()))
	logCtx.DebugContext(ctx, eligibility.TraceLine(eligibility.CheckLoanHistory, c))

	query := `
        SELECT COUNT(*)
        FROM loan_records
        WHERE customer_name = $1 AND status IN ($2, $3)`

	var badLoans int64
	if err := l.db.QueryRow(ctx, query, c.Name(), loanStatusDefaulted, loanStatusDelinquent).Scan(&badLoans); err != nil {
		return false, translateDBError(err, logCtx)
	}

	logCtx.DebugContext(ctx, "Loan history evaluated", slog.Int64("badLoans", badLoans))
	return badLoans == 0, nil
}
