package dto

import (
	"fmt"
	"strings"
	"time"

	"mortgage-eligibility/internal/domain/eligibility"

	"github.com/shopspring/decimal"
)

type CheckEligibilityRequest struct {
	Name   string `json:"name" example:"Ann McKinsey"`
	Amount string `json:"amount" example:"125000"`
}

// Validate checks the request and returns the parsed amount.
func (r *CheckEligibilityRequest) Validate() (decimal.Decimal, error) {
	if strings.TrimSpace(r.Name) == "" {
		return decimal.Zero, fmt.Errorf("name cannot be empty")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}

type CheckResponse struct {
	Check     string `json:"check"`
	Passed    bool   `json:"passed"`
	Evaluated bool   `json:"evaluated"`
}

type DecisionResponse struct {
	DecisionID   string          `json:"decisionId"`
	CustomerName string          `json:"customerName"`
	Amount       string          `json:"amount"`
	Eligible     bool            `json:"eligible"`
	Outcome      string          `json:"outcome"`
	Summary      string          `json:"summary"`
	Mode         string          `json:"mode"`
	Checks       []CheckResponse `json:"checks"`
	DecidedAt    time.Time       `json:"decidedAt"`
}

func NewDecisionResponse(d *eligibility.Decision) DecisionResponse {
	if d == nil {
		return DecisionResponse{}
	}

	checks := make([]CheckResponse, len(d.Checks))
	for i, c := range d.Checks {
		checks[i] = CheckResponse{
			Check:     string(c.Check),
			Passed:    c.Passed,
			Evaluated: c.Evaluated,
		}
	}

	return DecisionResponse{
		DecisionID:   d.ID.String(),
		CustomerName: d.CustomerName,
		Amount:       d.Amount.String(),
		Eligible:     d.Eligible,
		Outcome:      string(d.Outcome()),
		Summary:      d.Summary(),
		Mode:         string(d.Mode),
		Checks:       checks,
		DecidedAt:    d.DecidedAt,
	}
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
