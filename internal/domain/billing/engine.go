package billing

import (
	"time"

	"wifi-billing/internal/domain/customer"
	"wifi-billing/internal/domain/payment"
)

type StatusKind string

const (
	StatusInactive  StatusKind = "INACTIVE"
	StatusSuspended StatusKind = "SUSPENDED"
	StatusPaid      StatusKind = "PAID"
	StatusUnpaid    StatusKind = "UNPAID"
)

type PaidVia string

const (
	PaidViaActualPayment PaidVia = "ACTUAL_PAYMENT"
	PaidViaDeposit       PaidVia = "DEPOSIT"
)

// MonthStatus is the evaluation result for one customer in one month.
// Via, Amount and PaidAt are only meaningful when Kind is StatusPaid;
// deposit-covered months carry a zero Amount and no PaidAt.
type MonthStatus struct {
	Kind   StatusKind
	Via    PaidVia
	Amount Money
	PaidAt *time.Time
}

// Evaluator is the authoritative per-customer-per-month status calculator.
//
// The anchor pins the calendar month that a customer's stored deposit balance
// belongs to. Deposit coverage for months after the anchor is never read from
// the stored balance directly; it is replayed forward month by month so a
// single deposit cannot cover every future month at once. The caller resolves
// "now" into the anchor exactly once; the evaluator itself never reads the
// clock.
type Evaluator struct {
	anchorYear  int
	anchorMonth int
}

func NewEvaluator(anchorYear, anchorMonth int) Evaluator {
	return Evaluator{anchorYear: anchorYear, anchorMonth: anchorMonth}
}

// PaymentIn returns the first payment dated in (year, month), or nil.
func PaymentIn(payments []payment.Payment, year, month int) *payment.Payment {
	for i := range payments {
		d := payments[i].Date
		if d.Year() == year && int(d.Month())-1 == month {
			return &payments[i]
		}
	}
	return nil
}

// EvaluateMonth classifies (year, month) for the given customer. Evaluation
// order: inactive, suspended, actual payment, deposit coverage, unpaid.
func (e Evaluator) EvaluateMonth(cust *customer.Customer, suspensions []Period, payments []payment.Payment, year, month int) MonthStatus {
	if cust.Status != customer.StatusActive {
		return MonthStatus{Kind: StatusInactive}
	}

	if AnyCovers(suspensions, year, month) {
		return MonthStatus{Kind: StatusSuspended}
	}

	if p := PaymentIn(payments, year, month); p != nil {
		paidAt := p.Date
		return MonthStatus{Kind: StatusPaid, Via: PaidViaActualPayment, Amount: p.Amount, PaidAt: &paidAt}
	}

	if e.depositCovers(cust, suspensions, payments, year, month) {
		return MonthStatus{Kind: StatusPaid, Via: PaidViaDeposit}
	}

	return MonthStatus{Kind: StatusUnpaid}
}

// EvaluateYear evaluates all twelve months of a year. It is exactly twelve
// independent EvaluateMonth calls; no state leaks between months.
func (e Evaluator) EvaluateYear(cust *customer.Customer, suspensions []Period, payments []payment.Payment, year int) [12]MonthStatus {
	var statuses [12]MonthStatus
	for month := 0; month < 12; month++ {
		statuses[month] = e.EvaluateMonth(cust, suspensions, payments, year, month)
	}
	return statuses
}

// depositCovers replays deposit consumption from the anchor forward. Months
// strictly between the anchor and the target each consume one monthly fee,
// except months already settled by an actual payment and suspended months
// (no fee accrues there). The target month is covered when the remaining
// balance still meets the fee. Months before the anchor are never
// deposit-covered: the stored balance says nothing about the past.
func (e Evaluator) depositCovers(cust *customer.Customer, suspensions []Period, payments []payment.Payment, year, month int) bool {
	target := MonthKey(year, month)
	anchor := MonthKey(e.anchorYear, e.anchorMonth)
	if target < anchor {
		return false
	}

	remaining := cust.Deposit
	for key := anchor + 1; key < target; key++ {
		y, m := MonthOf(key)
		if AnyCovers(suspensions, y, m) || PaymentIn(payments, y, m) != nil {
			continue
		}
		if remaining < cust.MonthlyFee {
			return false
		}
		remaining -= cust.MonthlyFee
	}
	return remaining >= cust.MonthlyFee
}

// RemainingDeposit reports the deposit balance available to the target month
// after the forward replay. For the anchor month and earlier this is the
// stored balance itself.
func (e Evaluator) RemainingDeposit(cust *customer.Customer, suspensions []Period, payments []payment.Payment, year, month int) Money {
	target := MonthKey(year, month)
	anchor := MonthKey(e.anchorYear, e.anchorMonth)
	if target <= anchor {
		return cust.Deposit
	}

	remaining := cust.Deposit
	for key := anchor + 1; key < target; key++ {
		y, m := MonthOf(key)
		if AnyCovers(suspensions, y, m) || PaymentIn(payments, y, m) != nil {
			continue
		}
		if remaining < cust.MonthlyFee {
			return 0
		}
		remaining -= cust.MonthlyFee
	}
	return remaining
}

// CurrentBill is the amount a payment form pre-fills: the monthly fee (zero
// while suspended) plus carried debt minus the deposit, floored at zero.
func CurrentBill(cust *customer.Customer, suspendedNow bool) Money {
	fee := cust.MonthlyFee
	if suspendedNow {
		fee = 0
	}
	bill := fee + cust.Debt - cust.Deposit
	if bill < 0 {
		return 0
	}
	return bill
}
