// Package static holds the reference collaborators of the eligibility
// facade. Each one answers with a fixed boolean and writes a trace line per
// invocation, never failing.
package static

import (
	"context"
	"fmt"
	"io"

	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/shopspring/decimal"
)

type Bank struct {
	out    io.Writer
	result bool
}

func NewBank(out io.Writer, result bool) *Bank {
	return &Bank{out: writerOrDiscard(out), result: result}
}

func (b *Bank) HasSufficientSavings(_ context.Context, c eligibility.Customer, _ decimal.Decimal) (bool, error) {
	trace(b.out, eligibility.CheckSavings, c)
	return b.result, nil
}

type LoanHistory struct {
	out    io.Writer
	result bool
}

func NewLoanHistory(out io.Writer, result bool) *LoanHistory {
	return &LoanHistory{out: writerOrDiscard(out), result: result}
}

func (l *LoanHistory) HasNoBadLoans(_ context.Context, c eligibility.Customer) (bool, error) {
	trace(l.out, eligibility.CheckLoanHistory, c)
	return l.result, nil
}

type Credit struct {
	out    io.Writer
	result bool
}

func NewCredit(out io.Writer, result bool) *Credit {
	return &Credit{out: writerOrDiscard(out), result: result}
}

func (cr *Credit) HasGoodCredit(_ context.Context, c eligibility.Customer) (bool, error) {
	trace(cr.out, eligibility.CheckCredit, c)
	return cr.result, nil
}

var (
	_ eligibility.SavingsChecker     = (*Bank)(nil)
	_ eligibility.LoanHistoryChecker = (*LoanHistory)(nil)
	_ eligibility.CreditChecker      = (*Credit)(nil)
)

func trace(out io.Writer, check eligibility.CheckName, c eligibility.Customer) {
	fmt.Fprintln(out, eligibility.TraceLine(check, c))
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
