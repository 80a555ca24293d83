package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"wifi-billing/internal/api/handler/dto"
	"wifi-billing/internal/batch"
	"wifi-billing/internal/pkg/apperrors"
)

type BatchHandler struct {
	job    *batch.DebtAccumulationJob
	logger *slog.Logger
}

func NewBatchHandler(job *batch.DebtAccumulationJob, l *slog.Logger) *BatchHandler {
	if job == nil {
		panic("accumulation job cannot be nil")
	}
	return &BatchHandler{
		job:    job,
		logger: l.With("component", "BatchHandler"),
	}
}

type accumulateRequest struct {
	Year  *int `json:"year,omitempty"`
	Month *int `json:"month,omitempty"`
}

// TriggerAccumulation handles POST /batch/accumulate-debt
// @Summary Run the debt accumulation job
// @Description Rolls the monthly fee of every unpaid active customer into carried debt for the given period. Defaults to the current calendar month. Safe to rerun; already-settled periods are skipped.
// @Tags Batch
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Job completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 500 {object} dto.ErrorResponse "Job completed with errors"
// @Router /batch/accumulate-debt [post]
// @Security BearerAuth
func (h *BatchHandler) TriggerAccumulation(w http.ResponseWriter, r *http.Request) {
	now := timeNow()
	year, month := now.Year(), int(now.Month())-1

	if r.Body != nil && r.ContentLength > 0 {
		var req accumulateRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
			return
		}
		if req.Year != nil {
			year = *req.Year
		}
		if req.Month != nil {
			if *req.Month < 0 || *req.Month > 11 {
				respondError(w, fmt.Errorf("%w: month must be between 0 and 11", apperrors.ErrInvalidArgument))
				return
			}
			month = *req.Month
		}
	}

	h.logger.InfoContext(r.Context(), "Manual debt accumulation triggered",
		slog.Int("year", year), slog.Int("month", month))

	if err := h.job.Run(r.Context(), year, month); err != nil {
		h.logger.ErrorContext(r.Context(), "Debt accumulation run failed", slog.Any("error", err))
		respondJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: dto.ErrorDetail{Message: err.Error()},
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
