package event

import (
	"context"
	"time"
)

const (
	routingKeyEligibilityApproved = "eligibility.approved"
	routingKeyEligibilityRejected = "eligibility.rejected"
)

type EligibilityEventPayload struct {
	DecisionID   string   `json:"decisionId"`
	CustomerName string   `json:"customerName"`
	Amount       string   `json:"amount"`
	Eligible     bool     `json:"eligible"`
	Outcome      string   `json:"outcome"`
	Mode         string   `json:"mode"`
	FailedChecks []string `json:"failedChecks,omitempty"`
}

type EligibilityDecidedEvent struct {
	Timestamp time.Time               `json:"timestamp"`
	Payload   EligibilityEventPayload `json:"payload"`
}

func (e EligibilityDecidedEvent) routingKey() string {
	if e.Payload.Eligible {
		return routingKeyEligibilityApproved
	}
	return routingKeyEligibilityRejected
}

type Publisher interface {
	PublishEligibilityDecided(ctx context.Context, event EligibilityDecidedEvent) error
}
