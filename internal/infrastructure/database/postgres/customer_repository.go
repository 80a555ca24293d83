package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"

	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/infrastructure/monitoring"
	"wifi-billing/internal/pkg/apperrors"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

const customerColumns = `id, customer_id, name, monthly_fee, bandwidth, status, debt, deposit, last_accumulated_period, created_at, updated_at`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.ID,
		&cust.CustomerID,
		&cust.Name,
		&cust.MonthlyFee,
		&cust.Bandwidth,
		&cust.Status,
		&cust.Debt,
		&cust.Deposit,
		&cust.LastAccumulatedPeriod,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.ID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("customerID", cust.CustomerID))

	query := `
        INSERT INTO customers (customer_id, name, monthly_fee, bandwidth, status, debt, deposit, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	startTime := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.CustomerID,
		cust.Name,
		cust.MonthlyFee,
		cust.Bandwidth,
		cust.Status,
		cust.Debt,
		cust.Deposit,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("CreateCustomer", status, time.Since(startTime))

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.String("customerID", cust.CustomerID))
			return fmt.Errorf(errMsgFormat, customer.ErrDuplicateCode, translatedErr)
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("id", cust.ID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.InfoContext(ctx, "Attempting to update customer", slog.String("customerID", cust.CustomerID))

	query := `
        UPDATE customers
        SET name = $1,
            monthly_fee = $2,
            bandwidth = $3,
            status = $4,
            debt = $5,
            deposit = $6,
            updated_at = NOW()
        WHERE id = $7`

	cmdTag, err := r.db.Exec(ctx, query,
		cust.Name,
		cust.MonthlyFee,
		cust.Bandwidth,
		cust.Status,
		cust.Debt,
		cust.Deposit,
		cust.ID,
	)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to update customer due to unique constraint violation", slog.Any("error", err))
			return fmt.Errorf(errMsgFormat, customer.ErrDuplicateCode, translatedErr)
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByCode(ctx context.Context, customerID string) (*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find customer by code", slog.String("customerID", customerID))

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE customer_id = $1`

	startTime := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("FindCustomerByCode", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", slog.String("customerID", customerID))
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by code", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by code: %w", apperrors.ErrDatabase, err)
	}

	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, activeOnly bool) ([]*customer.Customer, error) {
	r.logger.DebugContext(ctx, "Attempting to find all customers", slog.Bool("activeOnly", activeOnly))

	query := `
        SELECT ` + customerColumns + `
        FROM customers`
	args := []any{}
	if activeOnly {
		query += " WHERE status = $1"
		args = append(args, customer.StatusActive)
	}
	query += " ORDER BY customer_id ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID string) error {
	r.logger.InfoContext(ctx, "Attempting to delete customer", slog.String("customerID", customerID))

	query := `DELETE FROM customers WHERE customer_id = $1`

	cmdTag, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer deleted successfully")
	return nil
}

func (r *CustomerRepository) UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error {
	r.logger.InfoContext(ctx, "Attempting to update customer balances", slog.String("customerID", customerID))

	query := `UPDATE customers SET debt = $1, deposit = $2, updated_at = NOW() WHERE customer_id = $3`

	startTime := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, debt, deposit, customerID)
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("UpdateCustomerBalances", status, time.Since(startTime))

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute balance update", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update balances: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Balance update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer balances updated successfully")
	return nil
}

func (r *CustomerRepository) SetLastAccumulatedPeriod(ctx context.Context, customerID string, periodKey int) error {
	r.logger.DebugContext(ctx, "Attempting to set last accumulated period",
		slog.String("customerID", customerID), slog.Int("periodKey", periodKey))

	query := `UPDATE customers SET last_accumulated_period = $1, updated_at = NOW() WHERE customer_id = $2`

	cmdTag, err := r.db.Exec(ctx, query, periodKey, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute accumulated period update", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update accumulated period: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Accumulated period update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	return nil
}
