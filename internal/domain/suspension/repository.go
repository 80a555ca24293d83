package suspension

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("suspension not found")

type Repository interface {
	Create(ctx context.Context, suspension *Suspension) error

	FindByCustomer(ctx context.Context, customerID string) ([]Suspension, error)

	FindAll(ctx context.Context) ([]Suspension, error)

	Delete(ctx context.Context, customerID string, suspensionID int64) error
}
