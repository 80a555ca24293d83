package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/pkg/apperrors"
)

type mockCustomerService struct {
	mock.Mock
}

func (_m *mockCustomerService) CreateCustomer(ctx context.Context, customerID, name string, monthlyFee float64, bandwidth int, status customer.Status) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, name, monthlyFee, bandwidth, status)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *mockCustomerService) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *mockCustomerService) ListCustomers(ctx context.Context, activeOnly bool) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, activeOnly)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *mockCustomerService) UpdateCustomer(ctx context.Context, customerID string, params customer.UpdateParams) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, params)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *mockCustomerService) DeleteCustomer(ctx context.Context, customerID string) error {
	return _m.Called(ctx, customerID).Error(0)
}

func (_m *mockCustomerService) UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error {
	return _m.Called(ctx, customerID, debt, deposit).Error(0)
}

func (_m *mockCustomerService) MarkAccumulated(ctx context.Context, customerID string, periodKey int) error {
	return _m.Called(ctx, customerID, periodKey).Error(0)
}

func setupPaymentTest() (*payment.MockPaymentRepository, *mockCustomerService, payment.PaymentService) {
	mockRepo := new(payment.MockPaymentRepository)
	mockCustomers := new(mockCustomerService)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := payment.NewPaymentService(mockRepo, mockCustomers, nil, logger)
	return mockRepo, mockCustomers, service
}

func activeCustomer(fee, debt, deposit float64) *customer.Customer {
	return &customer.Customer{
		ID:         1,
		CustomerID: "C001",
		Name:       "Budi",
		MonthlyFee: fee,
		Status:     customer.StatusActive,
		Debt:       debt,
		Deposit:    deposit,
	}
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

	t.Run("Exact payment clears the bill", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "C001").Return(activeCustomer(100000, 0, 0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil).Once()
		mockCustomers.On("UpdateBalances", ctx, "C001", 0.0, 0.0).Return(nil).Once()

		result, err := service.ProcessPayment(ctx, "C001", 100000, date)

		assert.NoError(t, err)
		if assert.NotNil(t, result) {
			assert.Equal(t, 0.0, result.NewDebt)
			assert.Equal(t, 0.0, result.NewDeposit)
			assert.Equal(t, "C001", result.Payment.CustomerID)
			assert.NotEmpty(t, result.Payment.PaymentID)
		}
		mockRepo.AssertExpectations(t)
		mockCustomers.AssertExpectations(t)
	})

	t.Run("Overpayment becomes deposit", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "C001").Return(activeCustomer(100000, 50000, 0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil).Once()
		mockCustomers.On("UpdateBalances", ctx, "C001", 0.0, 100000.0).Return(nil).Once()

		result, err := service.ProcessPayment(ctx, "C001", 250000, date)

		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.NewDebt)
		assert.Equal(t, 100000.0, result.NewDeposit)
	})

	t.Run("Underpayment becomes debt", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "C001").Return(activeCustomer(100000, 0, 0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil).Once()
		mockCustomers.On("UpdateBalances", ctx, "C001", 40000.0, 0.0).Return(nil).Once()

		result, err := service.ProcessPayment(ctx, "C001", 60000, date)

		assert.NoError(t, err)
		assert.Equal(t, 40000.0, result.NewDebt)
		assert.Equal(t, 0.0, result.NewDeposit)
	})

	t.Run("Existing deposit offsets the bill", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "C001").Return(activeCustomer(100000, 20000, 50000), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil).Once()
		// 100000 fee + 20000 debt = 120000 bill; 80000 paid + 50000 deposit = 130000.
		mockCustomers.On("UpdateBalances", ctx, "C001", 0.0, 10000.0).Return(nil).Once()

		result, err := service.ProcessPayment(ctx, "C001", 80000, date)

		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.NewDebt)
		assert.Equal(t, 10000.0, result.NewDeposit)
	})

	t.Run("Error - Non-positive amount", func(t *testing.T) {
		_, mockCustomers, service := setupPaymentTest()

		_, err := service.ProcessPayment(ctx, "C001", 0, date)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)

		_, err = service.ProcessPayment(ctx, "C001", -5000, date)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)

		mockCustomers.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Error - Customer not found", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "NOPE").Return(nil, customer.ErrNotFound).Once()

		_, err := service.ProcessPayment(ctx, "NOPE", 100000, date)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Balance update fails after insert", func(t *testing.T) {
		mockRepo, mockCustomers, service := setupPaymentTest()
		mockCustomers.On("GetCustomer", ctx, "C001").Return(activeCustomer(100000, 0, 0), nil).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*payment.Payment")).Return(nil).Once()
		dbErr := errors.New("connection reset")
		mockCustomers.On("UpdateBalances", ctx, "C001", 0.0, 0.0).Return(dbErr).Once()

		_, err := service.ProcessPayment(ctx, "C001", 100000, date)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPaymentService_UpdatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupPaymentTest()
		existing := &payment.Payment{PaymentID: "PAY123", CustomerID: "C001", Amount: 100000}
		mockRepo.On("FindByPaymentID", ctx, "PAY123").Return(existing, nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Amount == 120000.0
		})).Return(nil).Once()

		updated, err := service.UpdatePayment(ctx, "PAY123", 120000, time.Time{})
		assert.NoError(t, err)
		assert.Equal(t, 120000.0, updated.Amount)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error - Not Found", func(t *testing.T) {
		mockRepo, _, service := setupPaymentTest()
		mockRepo.On("FindByPaymentID", ctx, "NOPE").Return(nil, payment.ErrNotFound).Once()

		_, err := service.UpdatePayment(ctx, "NOPE", 120000, time.Time{})
		assert.ErrorIs(t, err, payment.ErrNotFound)
	})

	t.Run("Error - Non-positive amount", func(t *testing.T) {
		mockRepo, _, service := setupPaymentTest()
		_, err := service.UpdatePayment(ctx, "PAY123", 0, time.Time{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
		mockRepo.AssertNotCalled(t, "FindByPaymentID", mock.Anything, mock.Anything)
	})
}

func TestPaymentService_DeletePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo, _, service := setupPaymentTest()
		mockRepo.On("Delete", ctx, "PAY123").Return(nil).Once()

		assert.NoError(t, service.DeletePayment(ctx, "PAY123"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo, _, service := setupPaymentTest()
		mockRepo.On("Delete", ctx, "NOPE").Return(payment.ErrNotFound).Once()

		assert.ErrorIs(t, service.DeletePayment(ctx, "NOPE"), payment.ErrNotFound)
	})
}

func TestNewPaymentID(t *testing.T) {
	at := time.Date(2025, time.June, 5, 10, 30, 0, 0, time.UTC)
	id := payment.NewPaymentID(at)
	assert.Equal(t, "PAY1749119400000", id)
}
