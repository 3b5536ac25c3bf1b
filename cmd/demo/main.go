package main

import (
	"fmt"
	"io"
	"os"

	"mortgage-eligibility/internal/checks/static"
	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		name        string
		amount      string
		mode        string
		savings     bool
		loanHistory bool
		credit      bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Evaluate one mortgage application against static checks",
		Example: `  # Ann McKinsey with a default on record
  demo --loan-history=false

  # run every check even after a failure
  demo --savings=false --mode full`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			evalMode, err := eligibility.ParseEvaluationMode(mode)
			if err != nil {
				return err
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			if !amt.IsPositive() {
				return fmt.Errorf("amount must be greater than zero, got %s", amt)
			}
			return run(cmd, cmd.OutOrStdout(), name, amt, evalMode, savings, loanHistory, credit)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "Ann McKinsey", "Applicant name")
	flags.StringVar(&amount, "amount", "125000", "Requested mortgage amount")
	flags.StringVar(&mode, "mode", string(eligibility.ModeShortCircuit), "Evaluation mode: short-circuit or full")
	flags.BoolVar(&savings, "savings", true, "Outcome of the savings check")
	flags.BoolVar(&loanHistory, "loan-history", true, "Outcome of the loan history check")
	flags.BoolVar(&credit, "credit", true, "Outcome of the credit check")

	return cmd
}

func run(cmd *cobra.Command, out io.Writer, name string, amount decimal.Decimal, mode eligibility.EvaluationMode, savings, loanHistory, credit bool) error {
	customer, err := eligibility.NewCustomer(name)
	if err != nil {
		return err
	}

	mortgage := eligibility.NewMortgage(
		static.NewBank(out, savings),
		static.NewLoanHistory(out, loanHistory),
		static.NewCredit(out, credit),
		eligibility.WithMode(mode),
	)

	_, _ = fmt.Fprintf(out, "%s applies for %s loan\n\n", customer, amount.StringFixed(2))

	decision, err := mortgage.Evaluate(cmd.Context(), customer, amount)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "\n%s\n", decision.Summary())
	return nil
}
