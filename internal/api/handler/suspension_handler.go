package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wifi-billing/internal/api/handler/dto"
	"wifi-billing/internal/domain/suspension"
	"wifi-billing/internal/pkg/apperrors"
)

type SuspensionHandler struct {
	service suspension.SuspensionService
	logger  *slog.Logger
}

func NewSuspensionHandler(s suspension.SuspensionService, l *slog.Logger) *SuspensionHandler {
	if s == nil {
		panic("suspension service cannot be nil")
	}
	return &SuspensionHandler{
		service: s,
		logger:  l.With("component", "SuspensionHandler"),
	}
}

func getSuspensionIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "suspensionID")
	if idStr == "" {
		return 0, fmt.Errorf("%w: suspensionID not found in URL path", apperrors.ErrInvalidArgument)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid suspensionID format in URL path: %s", apperrors.ErrInvalidArgument, idStr)
	}
	return id, nil
}

// AddSuspension handles POST /customers/{customerID}/suspensions
// @Summary Suspend a customer for a month range
// @Description Registers a suspension period for the customer. The period must not overlap any of the customer's existing suspensions.
// @Tags Suspensions
// @Accept json
// @Produce json
// @Param customerID path string true "Customer code"
// @Param request body dto.CreateSuspensionRequest true "Suspension period"
// @Success 201 {object} dto.SuspensionResponse "Suspension registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid or overlapping period"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/suspensions [post]
// @Security BearerAuth
func (h *SuspensionHandler) AddSuspension(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateSuspensionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	susp, err := h.service.AddSuspension(r.Context(), customerID, req.Period(), req.Reason)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to add suspension", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Suspension registered",
		slog.String("customerID", customerID), slog.Int64("suspensionID", susp.ID))
	respondJSON(w, http.StatusCreated, dto.NewSuspensionResponse(susp))
}

// ListCustomerSuspensions handles GET /customers/{customerID}/suspensions
// @Summary List a customer's suspensions
// @Tags Suspensions
// @Produce json
// @Param customerID path string true "Customer code"
// @Success 200 {array} dto.SuspensionResponse "Suspensions retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/suspensions [get]
// @Security BearerAuth
func (h *SuspensionHandler) ListCustomerSuspensions(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	suspensions, err := h.service.ListForCustomer(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newSuspensionListResponse(suspensions))
}

// ListSuspensions handles GET /suspensions
// @Summary List all suspensions
// @Tags Suspensions
// @Produce json
// @Success 200 {array} dto.SuspensionResponse "Suspensions retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /suspensions [get]
// @Security BearerAuth
func (h *SuspensionHandler) ListSuspensions(w http.ResponseWriter, r *http.Request) {
	suspensions, err := h.service.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newSuspensionListResponse(suspensions))
}

func newSuspensionListResponse(suspensions []suspension.Suspension) []dto.SuspensionResponse {
	resp := make([]dto.SuspensionResponse, 0, len(suspensions))
	for i := range suspensions {
		resp = append(resp, dto.NewSuspensionResponse(&suspensions[i]))
	}
	return resp
}

// DeleteSuspension handles DELETE /customers/{customerID}/suspensions/{suspensionID}
// @Summary Remove a suspension
// @Tags Suspensions
// @Param customerID path string true "Customer code"
// @Param suspensionID path int true "Suspension ID"
// @Success 204 "Suspension deleted"
// @Failure 404 {object} dto.ErrorResponse "Suspension not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/suspensions/{suspensionID} [delete]
// @Security BearerAuth
func (h *SuspensionHandler) DeleteSuspension(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}
	suspensionID, err := getSuspensionIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteSuspension(r.Context(), customerID, suspensionID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
