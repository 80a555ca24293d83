package payment

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("payment not found")

	ErrDuplicatePaymentID = errors.New("payment ID already exists")
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error

	FindByPaymentID(ctx context.Context, paymentID string) (*Payment, error)

	FindAll(ctx context.Context) ([]Payment, error)

	FindByCustomer(ctx context.Context, customerID string) ([]Payment, error)

	Update(ctx context.Context, payment *Payment) error

	Delete(ctx context.Context, paymentID string) error
}
