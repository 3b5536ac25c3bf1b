package eligibility

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DecisionRepository interface {
	Save(ctx context.Context, d *Decision) error

	FindByID(ctx context.Context, id uuid.UUID) (*Decision, error)

	// FindByCustomer returns the decisions of one customer, newest first.
	FindByCustomer(ctx context.Context, customerName string) ([]*Decision, error)

	FindRejectedSince(ctx context.Context, since time.Time) ([]*Decision, error)
}
