package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/event"
	"wifi-billing/internal/infrastructure/monitoring"
	"wifi-billing/internal/pkg/apperrors"
)

// ProcessResult reports the settle-or-carry outcome of a payment: after
// processing, at most one of NewDebt and NewDeposit is positive.
type ProcessResult struct {
	Payment    *Payment
	NewDebt    float64
	NewDeposit float64
}

type PaymentService interface {
	// ProcessPayment applies an incoming amount against the customer's total
	// obligation (monthly fee + debt, offset by deposit) and records the
	// payment. The monthly fee is always included in the obligation, even
	// while the customer is suspended; only the bill preview zeroes it.
	ProcessPayment(ctx context.Context, customerID string, amount float64, date time.Time) (*ProcessResult, error)

	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	ListCustomerPayments(ctx context.Context, customerID string) ([]Payment, error)
	UpdatePayment(ctx context.Context, paymentID string, amount float64, date time.Time) (*Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error
}

var _ PaymentService = (*paymentService)(nil)

type paymentService struct {
	repo      Repository
	customers customer.CustomerService
	pub       event.EventPublisher
	logger    *slog.Logger
}

func NewPaymentService(repo Repository, customers customer.CustomerService, eventPublisher event.EventPublisher, logger *slog.Logger) PaymentService {
	if repo == nil || customers == nil {
		panic("payment service dependencies cannot be nil")
	}
	if eventPublisher == nil {
		eventPublisher = event.NoopPublisher{}
	}
	return &paymentService{
		repo:      repo,
		customers: customers,
		pub:       eventPublisher,
		logger:    logger.With(slog.String("component", "paymentService")),
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, customerID string, amount float64, date time.Time) (result *ProcessResult, err error) {
	s.logger.InfoContext(ctx, "Processing payment", slog.String("customerID", customerID), slog.Float64("amount", amount))

	defer func() {
		switch {
		case err == nil:
			monitoring.RecordPayment("success")
		case errors.Is(err, apperrors.ErrInvalidPaymentAmount):
			monitoring.RecordPayment("failure_amount")
		case errors.Is(err, customer.ErrNotFound), errors.Is(err, apperrors.ErrNotFound):
			monitoring.RecordPayment("failure_not_found")
		default:
			monitoring.RecordPayment("failure_internal")
		}
	}()

	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %.2f", apperrors.ErrInvalidPaymentAmount, amount)
	}
	if date.IsZero() {
		return nil, apperrors.NewValidationError("date", "payment date is required")
	}

	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	totalBill := cust.MonthlyFee + cust.Debt

	var newDebt, newDeposit float64
	if amount+cust.Deposit >= totalBill {
		newDeposit = amount + cust.Deposit - totalBill
		newDebt = 0
	} else {
		newDebt = totalBill - (amount + cust.Deposit)
		newDeposit = 0
	}

	pmt := &Payment{
		PaymentID:  NewPaymentID(time.Now()),
		CustomerID: cust.CustomerID,
		Amount:     amount,
		Date:       date,
	}

	// Two sequential writes with no transaction spanning them: a crash after
	// the payment insert leaves the customer balances stale until the next
	// successful operation. Known consistency gap.
	if err = s.repo.Create(ctx, pmt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist payment record", slog.Any("error", err))
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	if err = s.customers.UpdateBalances(ctx, cust.CustomerID, newDebt, newDeposit); err != nil {
		s.logger.ErrorContext(ctx, "Payment recorded but balance update failed",
			slog.String("paymentID", pmt.PaymentID), slog.Any("error", err))
		return nil, fmt.Errorf("payment %s recorded but balance update failed: %w", pmt.PaymentID, err)
	}

	evt := event.PaymentProcessedEvent{
		PaymentID:  pmt.PaymentID,
		CustomerID: pmt.CustomerID,
		Amount:     pmt.Amount,
		Date:       pmt.Date,
		NewDebt:    newDebt,
		NewDeposit: newDeposit,
		Timestamp:  time.Now(),
	}
	if pubErr := s.pub.PublishPaymentProcessed(ctx, evt); pubErr != nil {
		s.logger.ErrorContext(ctx, "Payment processed, but failed to publish event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Payment processed successfully",
		slog.String("paymentID", pmt.PaymentID),
		slog.Float64("newDebt", newDebt),
		slog.Float64("newDeposit", newDeposit))

	return &ProcessResult{Payment: pmt, NewDebt: newDebt, NewDeposit: newDeposit}, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	pmt, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Payment not found", slog.String("paymentID", paymentID))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding payment", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get payment %s: %w", paymentID, err)
	}
	return pmt, nil
}

func (s *paymentService) ListPayments(ctx context.Context) ([]Payment, error) {
	payments, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing payments", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) ListCustomerPayments(ctx context.Context, customerID string) ([]Payment, error) {
	payments, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customer payments",
			slog.String("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments for customer %s: %w", customerID, err)
	}
	return payments, nil
}

// UpdatePayment is plain record maintenance; it does not re-run the
// settle-or-carry split against the customer's balances.
func (s *paymentService) UpdatePayment(ctx context.Context, paymentID string, amount float64, date time.Time) (*Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %.2f", apperrors.ErrInvalidPaymentAmount, amount)
	}

	pmt, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cannot find payment %s to update: %w", paymentID, err)
	}

	pmt.Amount = amount
	if !date.IsZero() {
		pmt.Date = date
	}
	pmt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, pmt); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID, err)
	}

	s.logger.InfoContext(ctx, "Payment updated", slog.String("paymentID", paymentID))
	return pmt, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, paymentID string) error {
	err := s.repo.Delete(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Payment not found", slog.String("paymentID", paymentID))
			return ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error deleting payment", slog.Any("error", err))
		return fmt.Errorf("failed to delete payment %s: %w", paymentID, err)
	}
	s.logger.InfoContext(ctx, "Payment deleted", slog.String("paymentID", paymentID))
	return nil
}
