package dto

import (
	"fmt"
	"time"

	"wifi-billing/internal/domain/payment"
)

type ProcessPaymentRequest struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
}

func (r *ProcessPaymentRequest) Validate() error {
	if r.CustomerID == "" {
		return fmt.Errorf("customerId cannot be empty")
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if _, err := time.Parse(time.RFC3339[:10], r.Date); err != nil || r.Date == "" {
		return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}
	return nil
}

type UpdatePaymentRequest struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"`
}

func (r *UpdatePaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	if r.Date != "" {
		if _, err := time.Parse(time.RFC3339[:10], r.Date); err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}
	return nil
}

type PaymentResponse struct {
	PaymentID  string    `json:"paymentId"`
	CustomerID string    `json:"customerId"`
	Amount     string    `json:"amount"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewPaymentResponse(pmt *payment.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:  pmt.PaymentID,
		CustomerID: pmt.CustomerID,
		Amount:     FormatMoney(pmt.Amount),
		Date:       pmt.Date.Format(time.RFC3339[:10]),
		CreatedAt:  pmt.CreatedAt,
		UpdatedAt:  pmt.UpdatedAt,
	}
}

type ProcessPaymentResponse struct {
	Payment    PaymentResponse `json:"payment"`
	NewDebt    string          `json:"newDebt"`
	NewDeposit string          `json:"newDeposit"`
}
