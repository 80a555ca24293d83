package suspension

import (
	"time"

	"wifi-billing/internal/domain/billing"
)

// Suspension is a temporary billing pause: no monthly fee accrues for any
// month inside the period. Existing debt is still owed but does not grow.
type Suspension struct {
	ID         int64          `json:"id"`
	CustomerID string         `json:"customerId"`
	Period     billing.Period `json:"period"`
	Reason     string         `json:"reason,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Periods extracts the raw month ranges for the billing engine.
func Periods(suspensions []Suspension) []billing.Period {
	if len(suspensions) == 0 {
		return nil
	}
	periods := make([]billing.Period, len(suspensions))
	for i, s := range suspensions {
		periods[i] = s.Period
	}
	return periods
}
