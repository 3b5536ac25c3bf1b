package eligibility

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockDecisionRepository struct {
	mock.Mock
}

func (_m *MockDecisionRepository) Save(ctx context.Context, d *Decision) error {
	ret := _m.Called(ctx, d)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Decision) error); ok {
		r0 = rf(ctx, d)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockDecisionRepository) FindByID(ctx context.Context, id uuid.UUID) (*Decision, error) {
	ret := _m.Called(ctx, id)

	var r0 *Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Decision)
	}

	return r0, ret.Error(1)
}

func (_m *MockDecisionRepository) FindByCustomer(ctx context.Context, customerName string) ([]*Decision, error) {
	ret := _m.Called(ctx, customerName)

	var r0 []*Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Decision)
	}

	return r0, ret.Error(1)
}

func (_m *MockDecisionRepository) FindRejectedSince(ctx context.Context, since time.Time) ([]*Decision, error) {
	ret := _m.Called(ctx, since)

	var r0 []*Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Decision)
	}

	return r0, ret.Error(1)
}

type MockEvaluator struct {
	mock.Mock
}

func (_m *MockEvaluator) Evaluate(ctx context.Context, c Customer, amount decimal.Decimal) (Decision, error) {
	ret := _m.Called(ctx, c, amount)
	return ret.Get(0).(Decision), ret.Error(1)
}

type MockCreditChecker struct {
	mock.Mock
}

func (_m *MockCreditChecker) HasGoodCredit(ctx context.Context, c Customer) (bool, error) {
	ret := _m.Called(ctx, c)
	return ret.Bool(0), ret.Error(1)
}
