package payment

import (
	"fmt"
	"time"
)

type Payment struct {
	ID         int64     `json:"id"`
	PaymentID  string    `json:"paymentId"`
	CustomerID string    `json:"customerId"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewPaymentID derives an operator-visible payment code from the creation
// instant, e.g. PAY1718000000123.
func NewPaymentID(at time.Time) string {
	return fmt.Sprintf("PAY%d", at.UnixMilli())
}

// InMonth reports whether the payment is dated in the given calendar month.
// Time of day is irrelevant for period matching.
func (p *Payment) InMonth(year, month int) bool {
	return p.Date.Year() == year && int(p.Date.Month())-1 == month
}
