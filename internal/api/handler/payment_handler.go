package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wifi-billing/internal/api/handler/dto"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/pkg/apperrors"
)

type PaymentHandler struct {
	service payment.PaymentService
	logger  *slog.Logger
}

func NewPaymentHandler(s payment.PaymentService, l *slog.Logger) *PaymentHandler {
	if s == nil {
		panic("payment service cannot be nil")
	}
	return &PaymentHandler{
		service: s,
		logger:  l.With("component", "PaymentHandler"),
	}
}

func getPaymentIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "paymentID")
	if id == "" {
		return "", fmt.Errorf("%w: paymentID not found in URL path", apperrors.ErrInvalidArgument)
	}
	return id, nil
}

// ProcessPayment handles POST /payments
// @Summary Record a payment
// @Description Applies the amount against the customer's total obligation (monthly fee plus carried debt, offset by deposit). A surplus becomes deposit, a shortfall becomes debt.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.ProcessPaymentRequest true "Payment request payload"
// @Success 201 {object} dto.ProcessPaymentResponse "Payment successfully recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or non-positive amount"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [post]
// @Security BearerAuth
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	date, _ := time.Parse(time.RFC3339[:10], req.Date)

	result, err := h.service.ProcessPayment(r.Context(), req.CustomerID, req.Amount, date)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to process payment", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.ProcessPaymentResponse{
		Payment:    dto.NewPaymentResponse(result.Payment),
		NewDebt:    dto.FormatMoney(result.NewDebt),
		NewDeposit: dto.FormatMoney(result.NewDeposit),
	}
	h.logger.InfoContext(r.Context(), "Payment processed", slog.String("paymentID", result.Payment.PaymentID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetPayment handles GET /payments/{paymentID}
// @Summary Retrieve payment details
// @Description Retrieves a single payment by its code.
// @Tags Payments
// @Produce json
// @Param paymentID path string true "Payment code"
// @Success 200 {object} dto.PaymentResponse "Payment retrieved"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{paymentID} [get]
// @Security BearerAuth
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getPaymentIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	pmt, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentResponse(pmt))
}

// ListPayments handles GET /payments
// @Summary List all payments
// @Description Lists all recorded payments, most recent first.
// @Tags Payments
// @Produce json
// @Success 200 {array} dto.PaymentResponse "Payments retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newPaymentListResponse(payments))
}

// ListCustomerPayments handles GET /customers/{customerID}/payments
// @Summary List a customer's payments
// @Description Lists all payments recorded for one customer, most recent first.
// @Tags Payments
// @Produce json
// @Param customerID path string true "Customer code"
// @Success 200 {array} dto.PaymentResponse "Payments retrieved"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListCustomerPayments(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	payments, err := h.service.ListCustomerPayments(r.Context(), customerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newPaymentListResponse(payments))
}

func newPaymentListResponse(payments []payment.Payment) []dto.PaymentResponse {
	resp := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, dto.NewPaymentResponse(&payments[i]))
	}
	return resp
}

// UpdatePayment handles PUT /payments/{paymentID}
// @Summary Correct a payment record
// @Description Updates the amount or date of a recorded payment. Customer balances are not recalculated.
// @Tags Payments
// @Accept json
// @Produce json
// @Param paymentID path string true "Payment code"
// @Param request body dto.UpdatePaymentRequest true "Payment update payload"
// @Success 200 {object} dto.PaymentResponse "Payment updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{paymentID} [put]
// @Security BearerAuth
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getPaymentIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdatePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse(time.RFC3339[:10], req.Date)
	}

	pmt, err := h.service.UpdatePayment(r.Context(), paymentID, req.Amount, date)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentResponse(pmt))
}

// DeletePayment handles DELETE /payments/{paymentID}
// @Summary Delete a payment record
// @Description Removes a recorded payment. Customer balances are not recalculated.
// @Tags Payments
// @Param paymentID path string true "Payment code"
// @Success 204 "Payment deleted"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/{paymentID} [delete]
// @Security BearerAuth
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := getPaymentIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeletePayment(r.Context(), paymentID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
