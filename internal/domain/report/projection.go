package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wifi-billing/internal/domain/billing"
	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/domain/suspension"
)

// Ledger status labels as they appear on the printed yearly report.
const (
	LabelPaid          = "Sudah Bayar"
	LabelPaidDeposit   = "Sudah Bayar (Uang Titip)"
	LabelUnpaid        = "Belum Bayar"
	LabelNotSubscribed = "Tidak Berlangganan"
	LabelSuspended     = "Ditangguhkan"
)

// MonthCell is one customer-month on the yearly ledger.
type MonthCell struct {
	Status string     `json:"status"`
	Amount float64    `json:"amount,omitempty"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

// LedgerRow is one customer's line on the yearly ledger: twelve month cells
// plus the balances the cashier needs at a glance.
type LedgerRow struct {
	CustomerID       string        `json:"customerId"`
	Name             string        `json:"name"`
	MonthlyFee       float64       `json:"monthlyFee"`
	Bandwidth        int           `json:"bandwidth"`
	Months           [12]MonthCell `json:"months"`
	Debt             float64       `json:"debt"`
	RemainingDeposit float64       `json:"remainingDeposit"`
	TotalDue         float64       `json:"totalDue"`
}

// Summary aggregates one calendar month across all customers for the
// dashboard header.
type Summary struct {
	Year                  int     `json:"year"`
	Month                 int     `json:"month"`
	TotalTarget           float64 `json:"totalTarget"`
	TotalPaid             float64 `json:"totalPaid"`
	TotalDepositCovered   float64 `json:"totalDepositCovered"`
	TotalUnpaid           float64 `json:"totalUnpaid"`
	CustomersPaid         int     `json:"customersPaid"`
	CustomersActuallyPaid int     `json:"customersActuallyPaid"`
}

type ReportService interface {
	// BuildYearLedger projects every customer's twelve month statuses for the
	// given year. Deposit coverage replays from the current calendar month.
	BuildYearLedger(ctx context.Context, year int) ([]LedgerRow, error)

	// MonthlySummary aggregates one month's billing position across all
	// active customers.
	MonthlySummary(ctx context.Context, year, month int) (*Summary, error)
}

var _ ReportService = (*reportService)(nil)

type reportService struct {
	customers   customer.CustomerRepository
	payments    payment.Repository
	suspensions suspension.Repository
	logger      *slog.Logger
	now         func() time.Time
}

func NewReportService(customers customer.CustomerRepository, payments payment.Repository, suspensions suspension.Repository, logger *slog.Logger) ReportService {
	if customers == nil || payments == nil || suspensions == nil {
		panic("report service dependencies cannot be nil")
	}
	return &reportService{
		customers:   customers,
		payments:    payments,
		suspensions: suspensions,
		logger:      logger.With(slog.String("component", "reportService")),
		now:         time.Now,
	}
}

// load fetches all three collections once and groups payments and suspensions
// by customer code. One query per table instead of one per customer.
func (s *reportService) load(ctx context.Context) ([]*customer.Customer, map[string][]payment.Payment, map[string][]billing.Period, error) {
	customers, err := s.customers.FindAll(ctx, false)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load customers: %w", err)
	}

	allPayments, err := s.payments.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load payments: %w", err)
	}
	paymentsByCustomer := make(map[string][]payment.Payment)
	for _, p := range allPayments {
		paymentsByCustomer[p.CustomerID] = append(paymentsByCustomer[p.CustomerID], p)
	}

	allSuspensions, err := s.suspensions.FindAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load suspensions: %w", err)
	}
	periodsByCustomer := make(map[string][]billing.Period)
	for _, sp := range allSuspensions {
		periodsByCustomer[sp.CustomerID] = append(periodsByCustomer[sp.CustomerID], sp.Period)
	}

	return customers, paymentsByCustomer, periodsByCustomer, nil
}

func (s *reportService) evaluator() billing.Evaluator {
	now := s.now()
	return billing.NewEvaluator(now.Year(), int(now.Month())-1)
}

func (s *reportService) BuildYearLedger(ctx context.Context, year int) ([]LedgerRow, error) {
	customers, paymentsByCustomer, periodsByCustomer, err := s.load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load ledger inputs", slog.Any("error", err))
		return nil, err
	}

	eval := s.evaluator()
	rows := make([]LedgerRow, 0, len(customers))
	for _, cust := range customers {
		periods := periodsByCustomer[cust.CustomerID]
		pays := paymentsByCustomer[cust.CustomerID]

		row := LedgerRow{
			CustomerID: cust.CustomerID,
			Name:       cust.Name,
			MonthlyFee: cust.MonthlyFee,
			Bandwidth:  cust.Bandwidth,
			Debt:       cust.Debt,
		}

		statuses := eval.EvaluateYear(cust, periods, pays, year)
		for month, st := range statuses {
			row.Months[month] = toCell(st)
			if st.Kind == billing.StatusUnpaid && !cust.EnrolledIn(year, month) {
				row.TotalDue += cust.MonthlyFee
			}
		}

		now := s.now()
		row.RemainingDeposit = eval.RemainingDeposit(cust, periods, pays, now.Year(), int(now.Month())-1)

		rows = append(rows, row)
	}

	s.logger.DebugContext(ctx, "Built yearly ledger", slog.Int("year", year), slog.Int("rows", len(rows)))
	return rows, nil
}

func toCell(st billing.MonthStatus) MonthCell {
	switch st.Kind {
	case billing.StatusInactive:
		return MonthCell{Status: LabelNotSubscribed}
	case billing.StatusSuspended:
		return MonthCell{Status: LabelSuspended}
	case billing.StatusPaid:
		if st.Via == billing.PaidViaDeposit {
			return MonthCell{Status: LabelPaidDeposit}
		}
		return MonthCell{Status: LabelPaid, Amount: st.Amount, PaidAt: st.PaidAt}
	default:
		return MonthCell{Status: LabelUnpaid}
	}
}

func (s *reportService) MonthlySummary(ctx context.Context, year, month int) (*Summary, error) {
	if month < 0 || month > 11 {
		return nil, fmt.Errorf("month must be between 0 and 11, got %d", month)
	}

	customers, paymentsByCustomer, periodsByCustomer, err := s.load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load summary inputs", slog.Any("error", err))
		return nil, err
	}

	eval := s.evaluator()
	summary := &Summary{Year: year, Month: month}
	for _, cust := range customers {
		st := eval.EvaluateMonth(cust, periodsByCustomer[cust.CustomerID], paymentsByCustomer[cust.CustomerID], year, month)

		switch st.Kind {
		case billing.StatusInactive, billing.StatusSuspended:
			continue
		case billing.StatusPaid:
			summary.TotalTarget += cust.MonthlyFee
			summary.CustomersPaid++
			if st.Via == billing.PaidViaActualPayment {
				summary.TotalPaid += st.Amount
				summary.CustomersActuallyPaid++
			} else {
				summary.TotalDepositCovered += cust.MonthlyFee
			}
		case billing.StatusUnpaid:
			if cust.EnrolledIn(year, month) {
				continue
			}
			summary.TotalTarget += cust.MonthlyFee
			summary.TotalUnpaid += cust.MonthlyFee
		}
	}

	s.logger.DebugContext(ctx, "Built monthly summary",
		slog.Int("year", year), slog.Int("month", month),
		slog.Int("customersPaid", summary.CustomersPaid))
	return summary, nil
}
