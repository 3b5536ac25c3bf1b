package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mortgage-eligibility/internal/api/handler"
	"mortgage-eligibility/internal/api/handler/dto"
	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEligibilityService struct {
	mock.Mock
}

func (_m *MockEligibilityService) CheckEligibility(ctx context.Context, name string, amount decimal.Decimal) (*eligibility.Decision, error) {
	ret := _m.Called(ctx, name, amount)

	var r0 *eligibility.Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*eligibility.Decision)
	}

	return r0, ret.Error(1)
}

func (_m *MockEligibilityService) GetDecision(ctx context.Context, id uuid.UUID) (*eligibility.Decision, error) {
	ret := _m.Called(ctx, id)

	var r0 *eligibility.Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*eligibility.Decision)
	}

	return r0, ret.Error(1)
}

func (_m *MockEligibilityService) ListDecisions(ctx context.Context, customerName string) ([]*eligibility.Decision, error) {
	ret := _m.Called(ctx, customerName)

	var r0 []*eligibility.Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*eligibility.Decision)
	}

	return r0, ret.Error(1)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleDecision(eligible bool) *eligibility.Decision {
	return &eligibility.Decision{
		ID:           uuid.MustParse("0b8f5a2e-7d7f-4f43-9f6c-3f7c2d1e9a10"),
		CustomerName: "Ann McKinsey",
		Amount:       decimal.NewFromInt(125000),
		Eligible:     eligible,
		Mode:         eligibility.ModeShortCircuit,
		Checks: []eligibility.CheckResult{
			{Check: eligibility.CheckSavings, Passed: true, Evaluated: true},
			{Check: eligibility.CheckLoanHistory, Passed: true, Evaluated: true},
			{Check: eligibility.CheckCredit, Passed: eligible, Evaluated: true},
		},
		DecidedAt: time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
	}
}

func setupRouter(svc eligibility.EligibilityService) http.Handler {
	h := handler.NewEligibilityHandler(svc, testLogger)
	r := chi.NewRouter()
	r.Post("/eligibility", h.CheckEligibility)
	r.Get("/eligibility", h.ListDecisions)
	r.Get("/eligibility/{decisionID}", h.GetDecision)
	return r
}

func decodeError(t *testing.T, body io.Reader) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestEligibilityHandler_CheckEligibility(t *testing.T) {
	amountMatcher := mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(125000)) })

	t.Run("returns the decision", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("CheckEligibility", mock.Anything, "Ann McKinsey", amountMatcher).Return(sampleDecision(true), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/eligibility", strings.NewReader(`{"name":"Ann McKinsey","amount":"125000"}`))
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.DecisionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Eligible)
		assert.Equal(t, "Approved", resp.Outcome)
		assert.Equal(t, "Ann McKinsey has been Approved", resp.Summary)
		assert.Len(t, resp.Checks, 3)
		svc.AssertExpectations(t)
	})

	t.Run("rejected decision is still 200", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("CheckEligibility", mock.Anything, "Ann McKinsey", amountMatcher).Return(sampleDecision(false), nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/eligibility", strings.NewReader(`{"name":"Ann McKinsey","amount":"125000"}`))
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.DecisionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Rejected", resp.Outcome)
	})

	t.Run("invalid payloads never reach the service", func(t *testing.T) {
		for _, body := range []string{
			`{"name":"Ann"`,
			`{"name":"","amount":"10"}`,
			`{"name":"Ann","amount":"ten"}`,
			`{"name":"Ann","amount":"-1"}`,
			`{"name":"Ann","amount":"10","extra":true}`,
		} {
			svc := new(MockEligibilityService)
			req := httptest.NewRequest(http.MethodPost, "/eligibility", strings.NewReader(body))
			w := httptest.NewRecorder()
			setupRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			svc.AssertNotCalled(t, "CheckEligibility", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("collaborator failure maps to 503", func(t *testing.T) {
		svc := new(MockEligibilityService)
		err := fmt.Errorf("failed to evaluate eligibility for Ann McKinsey: %w",
			apperrors.WrapCheckError("Credit", errors.New("bureau timeout")))
		svc.On("CheckEligibility", mock.Anything, "Ann McKinsey", amountMatcher).Return(nil, err).Once()

		req := httptest.NewRequest(http.MethodPost, "/eligibility", strings.NewReader(`{"name":"Ann McKinsey","amount":"125000"}`))
		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "CHECK_UNAVAILABLE", decodeError(t, w.Body).Error.Code)
	})
}

func TestEligibilityHandler_GetDecision(t *testing.T) {
	d := sampleDecision(true)

	t.Run("found", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("GetDecision", mock.Anything, d.ID).Return(d, nil).Once()

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility/"+d.ID.String(), nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.DecisionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, d.ID.String(), resp.DecisionID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("GetDecision", mock.Anything, d.ID).Return(nil, apperrors.ErrNotFound).Once()

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility/"+d.ID.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := new(MockEligibilityService)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetDecision", mock.Anything, mock.Anything)
	})
}

func TestEligibilityHandler_ListDecisions(t *testing.T) {
	t.Run("lists decisions", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("ListDecisions", mock.Anything, "Ann McKinsey").
			Return([]*eligibility.Decision{sampleDecision(true), sampleDecision(false)}, nil).Once()

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility?customer=Ann+McKinsey", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp []dto.DecisionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "Rejected", resp[1].Outcome)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("ListDecisions", mock.Anything, "Nobody").Return([]*eligibility.Decision{}, nil).Once()

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility?customer=Nobody", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("requires customer parameter", func(t *testing.T) {
		svc := new(MockEligibilityService)

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		svc := new(MockEligibilityService)
		svc.On("ListDecisions", mock.Anything, "Ann").Return(nil, errors.New("db down")).Once()

		w := httptest.NewRecorder()
		setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/eligibility?customer=Ann", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestNewEligibilityHandler_Panics(t *testing.T) {
	assert.Panics(t, func() { handler.NewEligibilityHandler(nil, testLogger) })
	assert.Panics(t, func() { handler.NewEligibilityHandler(new(MockEligibilityService), nil) })
}
