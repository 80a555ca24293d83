package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/infrastructure/monitoring"
	"wifi-billing/internal/pkg/apperrors"
)

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	if db == nil {
		panic("DBPool cannot be nil for PaymentRepository")
	}
	return &PaymentRepository{
		db:     db,
		logger: logger.With("component", "PaymentRepository"),
	}
}

const paymentColumns = `id, payment_id, customer_id, amount, date, created_at, updated_at`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var pmt payment.Payment
	err := row.Scan(
		&pmt.ID,
		&pmt.PaymentID,
		&pmt.CustomerID,
		&pmt.Amount,
		&pmt.Date,
		&pmt.CreatedAt,
		&pmt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pmt, nil
}

func (r *PaymentRepository) Create(ctx context.Context, pmt *payment.Payment) error {
	if pmt == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.logger.InfoContext(ctx, "Attempting to insert payment", slog.String("paymentID", pmt.PaymentID))

	query := `
        INSERT INTO payments (payment_id, customer_id, amount, date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	startTime := time.Now()
	err := r.db.QueryRow(ctx, query,
		pmt.PaymentID,
		pmt.CustomerID,
		pmt.Amount,
		pmt.Date,
	).Scan(
		&pmt.ID,
		&pmt.CreatedAt,
		&pmt.UpdatedAt,
	)
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreatePayment", status, time.Since(startTime))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert payment due to unique constraint violation", slog.String("paymentID", pmt.PaymentID))
			return fmt.Errorf(errMsgFormat, payment.ErrDuplicatePaymentID, translatedErr)
		}
		r.logger.ErrorContext(ctx, "Failed to insert payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert payment: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Payment inserted successfully", slog.Int64("id", pmt.ID))
	return nil
}

func (r *PaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Payment, error) {
	r.logger.DebugContext(ctx, "Attempting to find payment", slog.String("paymentID", paymentID))

	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE payment_id = $1`

	pmt, err := scanPayment(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Payment not found", slog.String("paymentID", paymentID))
			return nil, payment.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan payment", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get payment: %w", apperrors.ErrDatabase, err)
	}

	return pmt, nil
}

func (r *PaymentRepository) FindAll(ctx context.Context) ([]payment.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        ORDER BY date DESC, id DESC`

	return r.queryPayments(ctx, query)
}

func (r *PaymentRepository) FindByCustomer(ctx context.Context, customerID string) ([]payment.Payment, error) {
	query := `
        SELECT ` + paymentColumns + `
        FROM payments
        WHERE customer_id = $1
        ORDER BY date DESC, id DESC`

	return r.queryPayments(ctx, query, customerID)
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...any) ([]payment.Payment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query payments: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]payment.Payment, 0)
	for rows.Next() {
		pmt, err := scanPayment(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan payment row: %w", apperrors.ErrDatabase, err)
		}
		payments = append(payments, *pmt)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating payment rows: %w", apperrors.ErrDatabase, err)
	}

	return payments, nil
}

func (r *PaymentRepository) Update(ctx context.Context, pmt *payment.Payment) error {
	if pmt == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.logger.InfoContext(ctx, "Attempting to update payment", slog.String("paymentID", pmt.PaymentID))

	query := `
        UPDATE payments
        SET amount = $1,
            date = $2,
            updated_at = NOW()
        WHERE payment_id = $3`

	cmdTag, err := r.db.Exec(ctx, query, pmt.Amount, pmt.Date, pmt.PaymentID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update payment: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, payment likely not found")
		return payment.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Payment updated successfully")
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID string) error {
	r.logger.InfoContext(ctx, "Attempting to delete payment", slog.String("paymentID", paymentID))

	query := `DELETE FROM payments WHERE payment_id = $1`

	cmdTag, err := r.db.Exec(ctx, query, paymentID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete payment", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete payment: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, payment likely not found")
		return payment.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Payment deleted successfully")
	return nil
}
