package event

import (
	"context"
	"time"
)

type CustomerEventPayload struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	MonthlyFee float64   `json:"monthlyFee"`
	Bandwidth  int       `json:"bandwidth"`
	Status     string    `json:"status"`
	Debt       float64   `json:"debt"`
	Deposit    float64   `json:"deposit"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type PaymentProcessedEvent struct {
	PaymentID  string    `json:"paymentId"`
	CustomerID string    `json:"customerId"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	NewDebt    float64   `json:"newDebt"`
	NewDeposit float64   `json:"newDeposit"`
	Timestamp  time.Time `json:"timestamp"`
}

type DebtAccumulatedEvent struct {
	Year             int       `json:"year"`
	Month            int       `json:"month"`
	CustomersCharged int       `json:"customersCharged"`
	Timestamp        time.Time `json:"timestamp"`
}

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishPaymentProcessed(ctx context.Context, event PaymentProcessedEvent) error
	PublishDebtAccumulated(ctx context.Context, event DebtAccumulatedEvent) error
}

// NoopPublisher is used when no message broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error {
	return nil
}

func (NoopPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error {
	return nil
}

func (NoopPublisher) PublishPaymentProcessed(context.Context, PaymentProcessedEvent) error {
	return nil
}

func (NoopPublisher) PublishDebtAccumulated(context.Context, DebtAccumulatedEvent) error {
	return nil
}

var _ EventPublisher = (*NoopPublisher)(nil)
