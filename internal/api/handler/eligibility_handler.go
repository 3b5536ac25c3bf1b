package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"mortgage-eligibility/internal/api/handler/dto"
	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EligibilityHandler struct {
	service eligibility.EligibilityService
	logger  *slog.Logger
}

func NewEligibilityHandler(s eligibility.EligibilityService, l *slog.Logger) *EligibilityHandler {
	if s == nil {
		panic("eligibility service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &EligibilityHandler{
		service: s,
		logger:  l.With("component", "EligibilityHandler"),
	}
}

func getDecisionIDFromURL(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "decisionID")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%w: decisionID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid decisionID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// CheckEligibility handles POST /eligibility
// @Summary Check mortgage eligibility
// @Description Runs the savings, loan history and credit checks for a customer and records the decision.
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param request body dto.CheckEligibilityRequest true "Applicant and requested amount"
// @Success 200 {object} dto.DecisionResponse "Decision recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 503 {object} dto.ErrorResponse "A check could not be completed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /eligibility [post]
// @Security BearerAuth
func (h *EligibilityHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received eligibility request")

	var req dto.CheckEligibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	amount, err := req.Validate()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	decision, err := h.service.CheckEligibility(r.Context(), req.Name, amount)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, apperrors.ErrValidation) {
			level = slog.LevelWarn
		}
		h.logger.Log(r.Context(), level, "Service failed to check eligibility", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewDecisionResponse(decision)
	h.logger.InfoContext(r.Context(), "Eligibility decided",
		slog.String("decisionID", resp.DecisionID),
		slog.String("outcome", resp.Outcome))
	respondJSON(w, http.StatusOK, resp)
}

// GetDecision handles GET /eligibility/{decisionID}
// @Summary Retrieve a recorded decision
// @Tags Eligibility
// @Produce json
// @Param decisionID path string true "Decision ID" Format(uuid)
// @Success 200 {object} dto.DecisionResponse "Decision details"
// @Failure 400 {object} dto.ErrorResponse "Invalid decision ID"
// @Failure 404 {object} dto.ErrorResponse "Decision not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /eligibility/{decisionID} [get]
// @Security BearerAuth
func (h *EligibilityHandler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id, err := getDecisionIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get decision ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	decision, err := h.service.GetDecision(r.Context(), id)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get decision", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewDecisionResponse(decision))
}

// ListDecisions handles GET /eligibility?customer=
// @Summary List decisions for a customer
// @Description Returns every recorded decision for the customer, newest first.
// @Tags Eligibility
// @Produce json
// @Param customer query string true "Customer name" Example(Ann McKinsey)
// @Success 200 {array} dto.DecisionResponse "Decisions"
// @Failure 400 {object} dto.ErrorResponse "Missing customer parameter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /eligibility [get]
// @Security BearerAuth
func (h *EligibilityHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("customer"))
	if name == "" {
		h.logger.WarnContext(r.Context(), "Missing customer query parameter")
		respondError(w, fmt.Errorf("%w: customer query parameter is required", apperrors.ErrInvalidArgument))
		return
	}

	decisions, err := h.service.ListDecisions(r.Context(), name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list decisions", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.DecisionResponse, len(decisions))
	for i, d := range decisions {
		resp[i] = dto.NewDecisionResponse(d)
	}

	h.logger.InfoContext(r.Context(), "Decisions listed", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}
