package suspension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wifi-billing/internal/domain/billing"
	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/pkg/apperrors"
)

type SuspensionService interface {
	// AddSuspension validates the period (month bounds, ordering, customer
	// existence, no overlap with the customer's existing suspensions) before
	// any write.
	AddSuspension(ctx context.Context, customerID string, period billing.Period, reason string) (*Suspension, error)

	DeleteSuspension(ctx context.Context, customerID string, suspensionID int64) error
	ListForCustomer(ctx context.Context, customerID string) ([]Suspension, error)
	ListAll(ctx context.Context) ([]Suspension, error)

	// IsSuspended reports whether the customer is suspended in (year, month).
	IsSuspended(ctx context.Context, customerID string, year, month int) (bool, error)
}

var _ SuspensionService = (*suspensionService)(nil)

type suspensionService struct {
	repo      Repository
	customers customer.CustomerService
	logger    *slog.Logger
}

func NewSuspensionService(repo Repository, customers customer.CustomerService, logger *slog.Logger) SuspensionService {
	if repo == nil || customers == nil {
		panic("suspension service dependencies cannot be nil")
	}
	return &suspensionService{
		repo:      repo,
		customers: customers,
		logger:    logger.With(slog.String("component", "suspensionService")),
	}
}

func (s *suspensionService) AddSuspension(ctx context.Context, customerID string, period billing.Period, reason string) (*Suspension, error) {
	s.logger.InfoContext(ctx, "Attempting to add suspension", slog.String("customerID", customerID))

	if err := period.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Suspension period validation failed", slog.Any("error", err))
		return nil, err
	}

	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	existing, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing existing suspensions", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check existing suspensions: %w", err)
	}
	for _, other := range existing {
		if period.Overlaps(other.Period) {
			s.logger.WarnContext(ctx, "Suspension period overlaps existing suspension",
				slog.Int64("existingID", other.ID))
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, apperrors.ErrOverlappingSuspension)
		}
	}

	susp := &Suspension{
		CustomerID: customerID,
		Period:     period,
		Reason:     reason,
	}
	if err := s.repo.Create(ctx, susp); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save suspension", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save suspension: %w", err)
	}

	s.logger.InfoContext(ctx, "Suspension added", slog.String("customerID", customerID), slog.Int64("suspensionID", susp.ID))
	return susp, nil
}

func (s *suspensionService) DeleteSuspension(ctx context.Context, customerID string, suspensionID int64) error {
	err := s.repo.Delete(ctx, customerID, suspensionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Suspension not found",
				slog.String("customerID", customerID), slog.Int64("suspensionID", suspensionID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error deleting suspension", slog.Any("error", err))
		return fmt.Errorf("failed to delete suspension %d for customer %s: %w", suspensionID, customerID, err)
	}
	s.logger.InfoContext(ctx, "Suspension deleted",
		slog.String("customerID", customerID), slog.Int64("suspensionID", suspensionID))
	return nil
}

func (s *suspensionService) ListForCustomer(ctx context.Context, customerID string) ([]Suspension, error) {
	suspensions, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customer suspensions",
			slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list suspensions for customer %s: %w", customerID, err)
	}
	return suspensions, nil
}

func (s *suspensionService) ListAll(ctx context.Context) ([]Suspension, error) {
	suspensions, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing suspensions", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list suspensions: %w", err)
	}
	return suspensions, nil
}

func (s *suspensionService) IsSuspended(ctx context.Context, customerID string, year, month int) (bool, error) {
	suspensions, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return false, fmt.Errorf("failed to list suspensions for customer %s: %w", customerID, err)
	}
	return billing.AnyCovers(Periods(suspensions), year, month), nil
}
