package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"wifi-billing/internal/api/handler/dto"
	"wifi-billing/internal/domain/report"
	"wifi-billing/internal/pkg/apperrors"
)

type ReportHandler struct {
	service report.ReportService
	logger  *slog.Logger
}

func NewReportHandler(s report.ReportService, l *slog.Logger) *ReportHandler {
	if s == nil {
		panic("report service cannot be nil")
	}
	return &ReportHandler{
		service: s,
		logger:  l.With("component", "ReportHandler"),
	}
}

func yearMonthFromQuery(r *http.Request) (int, int, error) {
	now := timeNow()
	year, month := now.Year(), int(now.Month())-1

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid year: %s", apperrors.ErrInvalidArgument, yearStr)
		}
		year = parsed
	}
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil || parsed < 0 || parsed > 11 {
			return 0, 0, fmt.Errorf("%w: month must be between 0 and 11: %s", apperrors.ErrInvalidArgument, monthStr)
		}
		month = parsed
	}
	return year, month, nil
}

// GetSummary handles GET /reports/summary
// @Summary Monthly billing summary
// @Description Aggregates one month's billing position across all customers. Defaults to the current calendar month.
// @Tags Reports
// @Produce json
// @Param year query int false "Calendar year"
// @Param month query int false "Zero-based month (0 = January)"
// @Success 200 {object} dto.SummaryResponse "Summary retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid year or month"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/summary [get]
// @Security BearerAuth
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.service.MonthlySummary(r.Context(), year, month)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to build summary", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSummaryResponse(summary))
}

// GetLedger handles GET /reports/ledger
// @Summary Yearly payment ledger
// @Description Projects every customer's twelve month statuses for a year. Defaults to the current year.
// @Tags Reports
// @Produce json
// @Param year query int false "Calendar year"
// @Success 200 {object} dto.LedgerResponse "Ledger retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid year"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/ledger [get]
// @Security BearerAuth
func (h *ReportHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	year, _, err := yearMonthFromQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	rows, err := h.service.BuildYearLedger(r.Context(), year)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to build ledger", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.LedgerResponse{Year: year, Rows: make([]dto.LedgerRowResponse, 0, len(rows))}
	for i := range rows {
		resp.Rows = append(resp.Rows, dto.NewLedgerRowResponse(&rows[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}
