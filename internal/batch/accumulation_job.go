package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wifi-billing/internal/domain/billing"
	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
	"wifi-billing/internal/domain/suspension"
	"wifi-billing/internal/event"
	"wifi-billing/internal/infrastructure/monitoring"
)

// DebtAccumulationJob runs at the end of each month and rolls the monthly fee
// of every active customer who has not paid into their carried debt, draining
// the deposit first. Each customer carries a last-accumulated-period marker so
// a rerun of the same period is a no-op.
type DebtAccumulationJob struct {
	customerService customer.CustomerService
	paymentRepo     payment.Repository
	suspensionRepo  suspension.Repository
	pub             event.EventPublisher
	logger          *slog.Logger
}

func NewDebtAccumulationJob(
	customerSvc customer.CustomerService,
	paymentRepo payment.Repository,
	suspensionRepo suspension.Repository,
	eventPublisher event.EventPublisher,
	logger *slog.Logger,
) *DebtAccumulationJob {
	if customerSvc == nil || paymentRepo == nil || suspensionRepo == nil || logger == nil {
		panic("DebtAccumulationJob dependencies cannot be nil")
	}
	if eventPublisher == nil {
		eventPublisher = event.NoopPublisher{}
	}
	return &DebtAccumulationJob{
		customerService: customerSvc,
		paymentRepo:     paymentRepo,
		suspensionRepo:  suspensionRepo,
		pub:             eventPublisher,
		logger:          logger.With("job", "DebtAccumulation"),
	}
}

// Run accumulates debt for the given calendar month. Customers are processed
// sequentially; a failure on one customer is logged and does not stop the
// rest of the run.
func (j *DebtAccumulationJob) Run(ctx context.Context, year, month int) error {
	startTime := time.Now()
	periodKey := billing.MonthKey(year, month)
	j.logger.InfoContext(ctx, "Starting debt accumulation job.",
		slog.Int("year", year), slog.Int("month", month))

	customers, err := j.customerService.ListCustomers(ctx, true)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list active customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list active customers: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched active customers.", slog.Int("count", len(customers)))

	var processedCount, chargedCount, skippedCount, errorCount int

	for _, cust := range customers {
		logCtx := j.logger.With(slog.String("customerID", cust.CustomerID))

		if cust.LastAccumulatedPeriod != nil && *cust.LastAccumulatedPeriod >= periodKey {
			logCtx.DebugContext(ctx, "Period already accumulated for customer, skipping.",
				slog.Int("lastAccumulatedPeriod", *cust.LastAccumulatedPeriod))
			skippedCount++
			continue
		}

		charged, err := j.processCustomer(ctx, cust, year, month, periodKey)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to accumulate debt for customer", slog.Any("error", err))
			errorCount++
			continue
		}
		processedCount++
		if charged {
			chargedCount++
		}
	}

	monitoring.RecordAccumulationRun(chargedCount)

	evt := event.DebtAccumulatedEvent{
		Year:             year,
		Month:            month,
		CustomersCharged: chargedCount,
		Timestamp:        time.Now(),
	}
	if pubErr := j.pub.PublishDebtAccumulated(ctx, evt); pubErr != nil {
		j.logger.ErrorContext(ctx, "Failed to publish debt accumulation event", slog.Any("error", pubErr))
	}

	duration := time.Since(startTime)
	summaryLog := j.logger.With(
		slog.Duration("duration", duration),
		slog.Int("total_active_customers", len(customers)),
		slog.Int("customers_processed", processedCount),
		slog.Int("customers_charged", chargedCount),
		slog.Int("customers_skipped", skippedCount),
		slog.Int("errors_encountered", errorCount),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Debt accumulation job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Debt accumulation job finished successfully.")
	return nil
}

// processCustomer settles one customer for the period and stamps the marker.
// Enrollment month, suspension and an actual payment all leave balances
// untouched; the marker is stamped in every branch so a rerun skips cleanly.
func (j *DebtAccumulationJob) processCustomer(ctx context.Context, cust *customer.Customer, year, month, periodKey int) (bool, error) {
	if cust.EnrolledIn(year, month) {
		j.logger.DebugContext(ctx, "Customer enrolled this month, no fee due.",
			slog.String("customerID", cust.CustomerID))
		return false, j.customerService.MarkAccumulated(ctx, cust.CustomerID, periodKey)
	}

	suspensions, err := j.suspensionRepo.FindByCustomer(ctx, cust.CustomerID)
	if err != nil {
		return false, fmt.Errorf("failed to load suspensions: %w", err)
	}
	if billing.AnyCovers(suspension.Periods(suspensions), year, month) {
		j.logger.DebugContext(ctx, "Customer suspended this month, no fee due.",
			slog.String("customerID", cust.CustomerID))
		return false, j.customerService.MarkAccumulated(ctx, cust.CustomerID, periodKey)
	}

	payments, err := j.paymentRepo.FindByCustomer(ctx, cust.CustomerID)
	if err != nil {
		return false, fmt.Errorf("failed to load payments: %w", err)
	}
	if billing.PaymentIn(payments, year, month) != nil {
		j.logger.DebugContext(ctx, "Customer already paid this month.",
			slog.String("customerID", cust.CustomerID))
		return false, j.customerService.MarkAccumulated(ctx, cust.CustomerID, periodKey)
	}

	// Drain the deposit before carrying anything into debt.
	remainingFee := cust.MonthlyFee - cust.Deposit
	if remainingFee < 0 {
		remainingFee = 0
	}
	newDeposit := cust.Deposit - cust.MonthlyFee
	if newDeposit < 0 {
		newDeposit = 0
	}
	newDebt := cust.Debt + remainingFee

	if err := j.customerService.UpdateBalances(ctx, cust.CustomerID, newDebt, newDeposit); err != nil {
		return false, fmt.Errorf("failed to update balances: %w", err)
	}
	if err := j.customerService.MarkAccumulated(ctx, cust.CustomerID, periodKey); err != nil {
		return true, fmt.Errorf("balances updated but marker not stamped: %w", err)
	}

	j.logger.InfoContext(ctx, "Accumulated debt for customer.",
		slog.String("customerID", cust.CustomerID),
		slog.Float64("newDebt", newDebt),
		slog.Float64("newDeposit", newDeposit))
	return true, nil
}
