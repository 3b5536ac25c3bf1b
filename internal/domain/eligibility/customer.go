package eligibility

import (
	"strings"

	"mortgage-eligibility/internal/pkg/apperrors"
)

// Customer is the applicant being evaluated. It is immutable once built.
type Customer struct {
	name string
}

func NewCustomer(name string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, apperrors.NewValidationError("name", "customer name cannot be empty")
	}
	return Customer{name: name}, nil
}

func (c Customer) Name() string {
	return c.name
}

func (c Customer) String() string {
	return c.name
}
