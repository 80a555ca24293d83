package dto

import (
	"time"

	"wifi-billing/internal/domain/report"
)

type SummaryResponse struct {
	Year                  int    `json:"year"`
	Month                 int    `json:"month"`
	TotalTarget           string `json:"totalTarget"`
	TotalPaid             string `json:"totalPaid"`
	TotalDepositCovered   string `json:"totalDepositCovered"`
	TotalUnpaid           string `json:"totalUnpaid"`
	CustomersPaid         int    `json:"customersPaid"`
	CustomersActuallyPaid int    `json:"customersActuallyPaid"`
}

func NewSummaryResponse(s *report.Summary) SummaryResponse {
	return SummaryResponse{
		Year:                  s.Year,
		Month:                 s.Month,
		TotalTarget:           FormatMoney(s.TotalTarget),
		TotalPaid:             FormatMoney(s.TotalPaid),
		TotalDepositCovered:   FormatMoney(s.TotalDepositCovered),
		TotalUnpaid:           FormatMoney(s.TotalUnpaid),
		CustomersPaid:         s.CustomersPaid,
		CustomersActuallyPaid: s.CustomersActuallyPaid,
	}
}

type MonthCellResponse struct {
	Status string     `json:"status"`
	Amount string     `json:"amount,omitempty"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

type LedgerRowResponse struct {
	CustomerID       string                `json:"customerId"`
	Name             string                `json:"name"`
	MonthlyFee       string                `json:"monthlyFee"`
	Bandwidth        int                   `json:"bandwidth"`
	Months           [12]MonthCellResponse `json:"months"`
	Debt             string                `json:"debt"`
	RemainingDeposit string                `json:"remainingDeposit"`
	TotalDue         string                `json:"totalDue"`
}

func NewLedgerRowResponse(row *report.LedgerRow) LedgerRowResponse {
	resp := LedgerRowResponse{
		CustomerID:       row.CustomerID,
		Name:             row.Name,
		MonthlyFee:       FormatMoney(row.MonthlyFee),
		Bandwidth:        row.Bandwidth,
		Debt:             FormatMoney(row.Debt),
		RemainingDeposit: FormatMoney(row.RemainingDeposit),
		TotalDue:         FormatMoney(row.TotalDue),
	}
	for i, cell := range row.Months {
		resp.Months[i] = MonthCellResponse{Status: cell.Status, PaidAt: cell.PaidAt}
		if cell.Amount != 0 {
			resp.Months[i].Amount = FormatMoney(cell.Amount)
		}
	}
	return resp
}

type LedgerResponse struct {
	Year int                 `json:"year"`
	Rows []LedgerRowResponse `json:"rows"`
}
