package postgres

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/pkg/apperrors"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const pgxmockExpectationsNotMetMsg = "pgxmock expectations not met"

var testTime = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func newCustomerTest() *customer.Customer {
	return &customer.Customer{
		ID:         1,
		CustomerID: "C001",
		Name:       "Budi Santoso",
		MonthlyFee: 150000,
		Bandwidth:  10,
		Status:     customer.StatusActive,
		Debt:       0,
		Deposit:    50000,
		CreatedAt:  testTime,
		UpdatedAt:  testTime,
	}
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

const insertCustomerQuery = `
        INSERT INTO customers (customer_id, name, monthly_fee, bandwidth, status, debt, deposit, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at`

func TestCreateCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()
	customerTest := newCustomerTest()
	customerTest.ID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).WithArgs(
		customerTest.CustomerID,
		customerTest.Name,
		customerTest.MonthlyFee,
		customerTest.Bandwidth,
		customerTest.Status,
		customerTest.Debt,
		customerTest.Deposit,
	).WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow(int64(1), testTime, testTime))

	err := repo.Save(ctx, customerTest)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), customerTest.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateCustomerWhenDuplicateCode(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()
	customerTest := newCustomerTest()
	customerTest.ID = 0

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCustomerQuery)).WithArgs(
		customerTest.CustomerID,
		customerTest.Name,
		customerTest.MonthlyFee,
		customerTest.Bandwidth,
		customerTest.Status,
		customerTest.Debt,
		customerTest.Deposit,
	).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_customer_id_key"})

	err := repo.Save(ctx, customerTest)
	assert.ErrorIs(t, err, customer.ErrDuplicateCode)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSaveExistingCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()
	customerTest := newCustomerTest()

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

	mockPool.ExpectExec(regexp.QuoteMeta(query)).WithArgs(
		customerTest.Name,
		customerTest.MonthlyFee,
		customerTest.Bandwidth,
		customerTest.Status,
		customerTest.Debt,
		customerTest.Deposit,
		customerTest.ID,
	).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Save(ctx, customerTest)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByCodeReturnOne(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()
	customerTest := newCustomerTest()

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE customer_id = $1`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(customerTest.CustomerID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "name", "monthly_fee", "bandwidth", "status", "debt", "deposit", "last_accumulated_period", "created_at", "updated_at"}).
			AddRow(customerTest.ID, customerTest.CustomerID, customerTest.Name, customerTest.MonthlyFee, customerTest.Bandwidth, customerTest.Status, customerTest.Debt, customerTest.Deposit, nil, testTime, testTime))

	result, err := repo.FindByCode(ctx, customerTest.CustomerID)
	assert.NoError(t, err)
	assert.Equal(t, customerTest.CustomerID, result.CustomerID)
	assert.Equal(t, 50000.0, result.Deposit)
	assert.Nil(t, result.LastAccumulatedPeriod)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindCustomerByCodeReturnNone(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE customer_id = $1`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("NOPE").WillReturnError(pgx.ErrNoRows)

	result, err := repo.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, customer.ErrNotFound)
	assert.Nil(t, result)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindAllCustomersActiveOnly(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()
	customerTest := newCustomerTest()

	query := `
        SELECT ` + customerColumns + `
        FROM customers WHERE status = $1 ORDER BY customer_id ASC`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(customer.StatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "name", "monthly_fee", "bandwidth", "status", "debt", "deposit", "last_accumulated_period", "created_at", "updated_at"}).
			AddRow(customerTest.ID, customerTest.CustomerID, customerTest.Name, customerTest.MonthlyFee, customerTest.Bandwidth, customerTest.Status, customerTest.Debt, customerTest.Deposit, nil, testTime, testTime))

	customers, err := repo.FindAll(ctx, true)
	assert.NoError(t, err)
	assert.Len(t, customers, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateCustomerBalancesWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `UPDATE customers SET debt = $1, deposit = $2, updated_at = NOW() WHERE customer_id = $3`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).WithArgs(70000.0, 0.0, "C001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateBalances(ctx, "C001", 70000, 0)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestUpdateCustomerBalancesWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `UPDATE customers SET debt = $1, deposit = $2, updated_at = NOW() WHERE customer_id = $3`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).WithArgs(70000.0, 0.0, "NOPE").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateBalances(ctx, "NOPE", 70000, 0)
	assert.ErrorIs(t, err, customer.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSetLastAccumulatedPeriodWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `UPDATE customers SET last_accumulated_period = $1, updated_at = NOW() WHERE customer_id = $2`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).WithArgs(24305, "C001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetLastAccumulatedPeriod(ctx, "C001", 24305)
	assert.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDeleteCustomerWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `DELETE FROM customers WHERE customer_id = $1`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).WithArgs("NOPE").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(ctx, "NOPE")
	assert.ErrorIs(t, err, customer.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
