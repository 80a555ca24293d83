package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"wifi-billing/internal/event"
	"wifi-billing/internal/pkg/apperrors"
)

const customerNotFound = "Customer not found by repository"

// UpdateParams carries the optional fields of a customer update. Nil fields
// are left untouched.
type UpdateParams struct {
	Name       *string
	MonthlyFee *float64
	Bandwidth  *int
	Status     *Status
	Debt       *float64
	Deposit    *float64
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, customerID, name string, monthlyFee float64, bandwidth int, status Status) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	ListCustomers(ctx context.Context, activeOnly bool) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, params UpdateParams) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error
	MarkAccumulated(ctx context.Context, customerID string, periodKey int) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	if eventPublisher == nil {
		eventPublisher = event.NoopPublisher{}
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func newCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		MonthlyFee: cust.MonthlyFee,
		Bandwidth:  cust.Bandwidth,
		Status:     string(cust.Status),
		Debt:       cust.Debt,
		Deposit:    cust.Deposit,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
}

func (s *customerService) publishCustomerUpdated(ctx context.Context, cust *Customer) {
	if cust == nil {
		s.logger.ErrorContext(ctx, "Attempted to publish update event for nil customer")
		return
	}
	evt := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   newCustomerEventPayload(cust),
	}
	if err := s.pub.PublishCustomerUpdated(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer update event",
			slog.String("customerID", cust.CustomerID), slog.Any("error", err))
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, customerID, name string, monthlyFee float64, bandwidth int, status Status) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer", slog.String("customerID", customerID))

	customerID = strings.TrimSpace(customerID)
	name = strings.TrimSpace(name)
	if customerID == "" {
		return nil, apperrors.NewValidationError("customerId", "customer code cannot be empty")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name", "customer name cannot be empty")
	}
	if monthlyFee < 0 {
		return nil, apperrors.NewValidationError("monthlyFee", "monthly fee cannot be negative")
	}
	if bandwidth < 0 {
		return nil, apperrors.NewValidationError("bandwidth", "bandwidth cannot be negative")
	}
	switch status {
	case StatusActive, StatusInactive:
	case "":
		status = StatusActive
	default:
		return nil, apperrors.NewValidationError("status", "status must be active or inactive")
	}

	cust := NewCustomer(customerID, name, monthlyFee, bandwidth)
	cust.Status = status

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicateCode) || errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Customer code already in use", slog.String("customerID", customerID))
			return nil, ErrDuplicateCode
		}
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	evt := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   newCustomerEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, evt); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer created, but failed to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully created new customer", slog.String("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	cust, err := s.repo.FindByCode(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound, slog.String("customerID", customerID))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, activeOnly bool) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	s.logger.DebugContext(ctx, "Retrieved customers", slog.Int("count", len(customers)), slog.Bool("activeOnly", activeOnly))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID string, params UpdateParams) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.String("customerID", customerID))

	cust, err := s.repo.FindByCode(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound, slog.String("customerID", customerID))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cannot find customer %s to update: %w", customerID, err)
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "customer name cannot be empty")
		}
		cust.Name = name
	}
	if params.MonthlyFee != nil {
		if *params.MonthlyFee < 0 {
			return nil, apperrors.NewValidationError("monthlyFee", "monthly fee cannot be negative")
		}
		cust.MonthlyFee = *params.MonthlyFee
	}
	if params.Bandwidth != nil {
		if *params.Bandwidth < 0 {
			return nil, apperrors.NewValidationError("bandwidth", "bandwidth cannot be negative")
		}
		cust.Bandwidth = *params.Bandwidth
	}
	if params.Status != nil {
		if *params.Status != StatusActive && *params.Status != StatusInactive {
			return nil, apperrors.NewValidationError("status", "status must be active or inactive")
		}
		cust.Status = *params.Status
	}
	if params.Debt != nil {
		if *params.Debt < 0 {
			return nil, apperrors.NewValidationError("debt", "debt cannot be negative")
		}
		cust.Debt = *params.Debt
	}
	if params.Deposit != nil {
		if *params.Deposit < 0 {
			return nil, apperrors.NewValidationError("deposit", "deposit cannot be negative")
		}
		cust.Deposit = *params.Deposit
	}
	cust.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "Customer disappeared before save completed", slog.String("customerID", customerID))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to save updated customer %s: %w", customerID, err)
	}

	s.publishCustomerUpdated(ctx, cust)
	s.logger.InfoContext(ctx, "Successfully updated customer", slog.String("customerID", customerID))
	return cust, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID string) error {
	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.String("customerID", customerID))

	err := s.repo.Delete(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound, slog.String("customerID", customerID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %s: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer", slog.String("customerID", customerID))
	return nil
}

func (s *customerService) UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error {
	if debt < 0 {
		return apperrors.NewValidationError("debt", "debt cannot be negative")
	}
	if deposit < 0 {
		return apperrors.NewValidationError("deposit", "deposit cannot be negative")
	}

	err := s.repo.UpdateBalances(ctx, customerID, debt, deposit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound, slog.String("customerID", customerID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error updating balances", slog.Any("error", err))
		return fmt.Errorf("failed to update balances for customer %s: %w", customerID, err)
	}

	updated, fetchErr := s.repo.FindByCode(ctx, customerID)
	if fetchErr != nil {
		s.logger.ErrorContext(ctx, "Balances updated, but failed to re-fetch customer for event publishing", slog.Any("error", fetchErr))
	} else {
		s.publishCustomerUpdated(ctx, updated)
	}
	return nil
}

func (s *customerService) MarkAccumulated(ctx context.Context, customerID string, periodKey int) error {
	err := s.repo.SetLastAccumulatedPeriod(ctx, customerID, periodKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, customerNotFound, slog.String("customerID", customerID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error marking accumulated period", slog.Any("error", err))
		return fmt.Errorf("failed to mark accumulated period for customer %s: %w", customerID, err)
	}
	return nil
}
