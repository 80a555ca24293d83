package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateCode = errors.New("customer code already in use")

	ErrUpdateConflict = errors.New("update conflict detected")
)

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByCode(ctx context.Context, customerID string) (*Customer, error)

	FindAll(ctx context.Context, activeOnly bool) ([]*Customer, error)

	Delete(ctx context.Context, customerID string) error

	UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error

	SetLastAccumulatedPeriod(ctx context.Context, customerID string, periodKey int) error
}
