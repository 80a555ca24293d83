package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wifi-billing/internal/domain/billing"
	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/domain/suspension"
)

type fakeCustomerRepo struct {
	customers []*customer.Customer
}

func (f *fakeCustomerRepo) Save(ctx context.Context, cust *customer.Customer) error { return nil }
func (f *fakeCustomerRepo) FindByCode(ctx context.Context, customerID string) (*customer.Customer, error) {
	return nil, customer.ErrNotFound
}
func (f *fakeCustomerRepo) FindAll(ctx context.Context, activeOnly bool) ([]*customer.Customer, error) {
	if !activeOnly {
		return f.customers, nil
	}
	var active []*customer.Customer
	for _, c := range f.customers {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return active, nil
}
func (f *fakeCustomerRepo) Delete(ctx context.Context, customerID string) error { return nil }
func (f *fakeCustomerRepo) UpdateBalances(ctx context.Context, customerID string, debt, deposit float64) error {
	return nil
}
func (f *fakeCustomerRepo) SetLastAccumulatedPeriod(ctx context.Context, customerID string, periodKey int) error {
	return nil
}

type fakePaymentRepo struct {
	payments []payment.Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *payment.Payment) error { return nil }
func (f *fakePaymentRepo) FindByPaymentID(ctx context.Context, paymentID string) (*payment.Payment, error) {
	return nil, payment.ErrNotFound
}
func (f *fakePaymentRepo) FindAll(ctx context.Context) ([]payment.Payment, error) {
	return f.payments, nil
}
func (f *fakePaymentRepo) FindByCustomer(ctx context.Context, customerID string) ([]payment.Payment, error) {
	return nil, nil
}
func (f *fakePaymentRepo) Update(ctx context.Context, p *payment.Payment) error { return nil }
func (f *fakePaymentRepo) Delete(ctx context.Context, paymentID string) error   { return nil }

type fakeSuspensionRepo struct {
	suspensions []suspension.Suspension
}

func (f *fakeSuspensionRepo) Create(ctx context.Context, s *suspension.Suspension) error { return nil }
func (f *fakeSuspensionRepo) FindByCustomer(ctx context.Context, customerID string) ([]suspension.Suspension, error) {
	return nil, nil
}
func (f *fakeSuspensionRepo) FindAll(ctx context.Context) ([]suspension.Suspension, error) {
	return f.suspensions, nil
}
func (f *fakeSuspensionRepo) Delete(ctx context.Context, customerID string, suspensionID int64) error {
	return nil
}

// newTestService pins the clock to June 15 2025.
func newTestService(customers []*customer.Customer, payments []payment.Payment, suspensions []suspension.Suspension) *reportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewReportService(
		&fakeCustomerRepo{customers: customers},
		&fakePaymentRepo{payments: payments},
		&fakeSuspensionRepo{suspensions: suspensions},
		logger,
	).(*reportService)
	svc.now = func() time.Time {
		return time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func fixtureCustomers() ([]*customer.Customer, []payment.Payment, []suspension.Suspension) {
	customers := []*customer.Customer{
		{
			CustomerID: "C001", Name: "Budi", MonthlyFee: 100000, Bandwidth: 10,
			Status: customer.StatusActive, Debt: 20000, Deposit: 250000,
			CreatedAt: time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			CustomerID: "C002", Name: "Siti", MonthlyFee: 150000, Bandwidth: 20,
			Status:    customer.StatusActive,
			CreatedAt: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			CustomerID: "C003", Name: "Agus", MonthlyFee: 100000, Bandwidth: 10,
			Status:    customer.StatusInactive,
			CreatedAt: time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	payments := []payment.Payment{
		{PaymentID: "PAY1", CustomerID: "C002", Amount: 150000,
			Date: time.Date(2025, time.April, 3, 0, 0, 0, 0, time.UTC)},
	}
	suspensions := []suspension.Suspension{
		{ID: 1, CustomerID: "C002",
			Period: billing.Period{StartMonth: 4, StartYear: 2025, EndMonth: 6, EndYear: 2025}},
	}
	return customers, payments, suspensions
}

func TestBuildYearLedger(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fixtureCustomers())

	rows, err := svc.BuildYearLedger(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	t.Run("deposit holder", func(t *testing.T) {
		row := rows[0]
		assert.Equal(t, "C001", row.CustomerID)
		assert.Equal(t, 20000.0, row.Debt)

		// January through May predate the deposit anchor.
		for month := 0; month < 5; month++ {
			assert.Equal(t, LabelUnpaid, row.Months[month].Status, "month %d", month)
		}
		// 250000 at 100000/month covers June, July and August.
		for month := 5; month < 8; month++ {
			assert.Equal(t, LabelPaidDeposit, row.Months[month].Status, "month %d", month)
		}
		for month := 8; month < 12; month++ {
			assert.Equal(t, LabelUnpaid, row.Months[month].Status, "month %d", month)
		}

		assert.Equal(t, 900000.0, row.TotalDue)
		assert.Equal(t, 250000.0, row.RemainingDeposit)
	})

	t.Run("payer with suspension", func(t *testing.T) {
		row := rows[1]
		assert.Equal(t, "C002", row.CustomerID)

		april := row.Months[3]
		assert.Equal(t, LabelPaid, april.Status)
		assert.Equal(t, 150000.0, april.Amount)
		require.NotNil(t, april.PaidAt)
		assert.Equal(t, time.April, april.PaidAt.Month())

		for month := 4; month < 7; month++ {
			assert.Equal(t, LabelSuspended, row.Months[month].Status, "month %d", month)
		}

		// Three unpaid months before April plus five after the suspension.
		assert.Equal(t, 1200000.0, row.TotalDue)
	})

	t.Run("inactive customer", func(t *testing.T) {
		row := rows[2]
		assert.Equal(t, "C003", row.CustomerID)
		for month := 0; month < 12; month++ {
			assert.Equal(t, LabelNotSubscribed, row.Months[month].Status, "month %d", month)
		}
		assert.Equal(t, 0.0, row.TotalDue)
	})
}

func TestMonthlySummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(fixtureCustomers())

	t.Run("April mixes paid and unpaid", func(t *testing.T) {
		summary, err := svc.MonthlySummary(ctx, 2025, 3)
		require.NoError(t, err)

		assert.Equal(t, 250000.0, summary.TotalTarget)
		assert.Equal(t, 150000.0, summary.TotalPaid)
		assert.Equal(t, 100000.0, summary.TotalUnpaid)
		assert.Equal(t, 0.0, summary.TotalDepositCovered)
		assert.Equal(t, 1, summary.CustomersPaid)
		assert.Equal(t, 1, summary.CustomersActuallyPaid)
	})

	t.Run("July counts deposit coverage and skips suspended", func(t *testing.T) {
		summary, err := svc.MonthlySummary(ctx, 2025, 6)
		require.NoError(t, err)

		assert.Equal(t, 100000.0, summary.TotalTarget)
		assert.Equal(t, 0.0, summary.TotalPaid)
		assert.Equal(t, 100000.0, summary.TotalDepositCovered)
		assert.Equal(t, 0.0, summary.TotalUnpaid)
		assert.Equal(t, 1, summary.CustomersPaid)
		assert.Equal(t, 0, summary.CustomersActuallyPaid)
	})

	t.Run("Enrollment month is not billed", func(t *testing.T) {
		newcomer := []*customer.Customer{{
			CustomerID: "C004", Name: "Dewi", MonthlyFee: 50000,
			Status:    customer.StatusActive,
			CreatedAt: time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
		}}
		svc := newTestService(newcomer, nil, nil)

		summary, err := svc.MonthlySummary(ctx, 2025, 5)
		require.NoError(t, err)
		assert.Equal(t, 0.0, summary.TotalTarget)
		assert.Equal(t, 0.0, summary.TotalUnpaid)
	})

	t.Run("Month out of range", func(t *testing.T) {
		_, err := svc.MonthlySummary(ctx, 2025, 12)
		assert.Error(t, err)
	})
}
