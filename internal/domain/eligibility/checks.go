package eligibility

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckName identifies one of the verification steps composed by Mortgage.
type CheckName string

const (
	CheckSavings     CheckName = "Savings"
	CheckLoanHistory CheckName = "LoanHistory"
	CheckCredit      CheckName = "Credit"
)

// EvaluationOrder is the fixed order in which Mortgage runs its checks.
var EvaluationOrder = []CheckName{CheckSavings, CheckLoanHistory, CheckCredit}

type SavingsChecker interface {
	HasSufficientSavings(ctx context.Context, c Customer, amount decimal.Decimal) (bool, error)
}

type LoanHistoryChecker interface {
	HasNoBadLoans(ctx context.Context, c Customer) (bool, error)
}

type CreditChecker interface {
	HasGoodCredit(ctx context.Context, c Customer) (bool, error)
}

// TraceLine renders the diagnostic line a collaborator emits when it runs.
func TraceLine(check CheckName, c Customer) string {
	return string(check) + " check for " + c.Name()
}
