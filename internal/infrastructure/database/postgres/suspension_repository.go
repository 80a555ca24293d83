package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"

	"wifi-billing/internal/domain/suspension"
	"wifi-billing/internal/pkg/apperrors"
)

type SuspensionRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ suspension.Repository = (*SuspensionRepository)(nil)

func NewSuspensionRepository(db DBPool, logger *slog.Logger) *SuspensionRepository {
	if db == nil {
		panic("DBPool cannot be nil for SuspensionRepository")
	}
	return &SuspensionRepository{
		db:     db,
		logger: logger.With("component", "SuspensionRepository"),
	}
}

const suspensionColumns = `id, customer_id, start_month, start_year, end_month, end_year, reason, created_at, updated_at`

func scanSuspension(row pgx.Row) (*suspension.Suspension, error) {
	var susp suspension.Suspension
	var reason pgtype.Text
	err := row.Scan(
		&susp.ID,
		&susp.CustomerID,
		&susp.Period.StartMonth,
		&susp.Period.StartYear,
		&susp.Period.EndMonth,
		&susp.Period.EndYear,
		&reason,
		&susp.CreatedAt,
		&susp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason.Status == pgtype.Present {
		susp.Reason = reason.String
	}
	return &susp, nil
}

func (r *SuspensionRepository) Create(ctx context.Context, susp *suspension.Suspension) error {
	if susp == nil {
		return fmt.Errorf("%w: suspension cannot be nil", apperrors.ErrInvalidArgument)
	}
	r.logger.InfoContext(ctx, "Attempting to insert suspension", slog.String("customerID", susp.CustomerID))

	reason := pgtype.Text{String: susp.Reason, Status: pgtype.Present}
	if susp.Reason == "" {
		reason = pgtype.Text{Status: pgtype.Null}
	}

	query := `
        INSERT INTO suspensions (customer_id, start_month, start_year, end_month, end_year, reason, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		susp.CustomerID,
		susp.Period.StartMonth,
		susp.Period.StartYear,
		susp.Period.EndMonth,
		susp.Period.EndYear,
		reason,
	).Scan(
		&susp.ID,
		&susp.CreatedAt,
		&susp.UpdatedAt,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert suspension", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert suspension: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Suspension inserted successfully", slog.Int64("id", susp.ID))
	return nil
}

func (r *SuspensionRepository) FindByCustomer(ctx context.Context, customerID string) ([]suspension.Suspension, error) {
	query := `
        SELECT ` + suspensionColumns + `
        FROM suspensions
        WHERE customer_id = $1
        ORDER BY start_year ASC, start_month ASC`

	return r.querySuspensions(ctx, query, customerID)
}

func (r *SuspensionRepository) FindAll(ctx context.Context) ([]suspension.Suspension, error) {
	query := `
        SELECT ` + suspensionColumns + `
        FROM suspensions
        ORDER BY customer_id ASC, start_year ASC, start_month ASC`

	return r.querySuspensions(ctx, query)
}

func (r *SuspensionRepository) querySuspensions(ctx context.Context, query string, args ...any) ([]suspension.Suspension, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query suspensions", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query suspensions: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	suspensions := make([]suspension.Suspension, 0)
	for rows.Next() {
		susp, err := scanSuspension(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan suspension row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan suspension row: %w", apperrors.ErrDatabase, err)
		}
		suspensions = append(suspensions, *susp)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating suspension rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating suspension rows: %w", apperrors.ErrDatabase, err)
	}

	return suspensions, nil
}

func (r *SuspensionRepository) Delete(ctx context.Context, customerID string, suspensionID int64) error {
	r.logger.InfoContext(ctx, "Attempting to delete suspension",
		slog.String("customerID", customerID), slog.Int64("suspensionID", suspensionID))

	query := `DELETE FROM suspensions WHERE customer_id = $1 AND id = $2`

	cmdTag, err := r.db.Exec(ctx, query, customerID, suspensionID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete suspension", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete suspension: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, suspension likely not found")
		return suspension.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Suspension deleted successfully")
	return nil
}
