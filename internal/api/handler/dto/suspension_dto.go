package dto

import (
	"time"

	"wifi-billing/internal/domain/billing"
	"wifi-billing/internal/domain/suspension"
)

type CreateSuspensionRequest struct {
	StartMonth int    `json:"startMonth"`
	StartYear  int    `json:"startYear"`
	EndMonth   int    `json:"endMonth"`
	EndYear    int    `json:"endYear"`
	Reason     string `json:"reason,omitempty"`
}

func (r *CreateSuspensionRequest) Period() billing.Period {
	return billing.Period{
		StartMonth: r.StartMonth,
		StartYear:  r.StartYear,
		EndMonth:   r.EndMonth,
		EndYear:    r.EndYear,
	}
}

type SuspensionResponse struct {
	ID         int64     `json:"id"`
	CustomerID string    `json:"customerId"`
	StartMonth int       `json:"startMonth"`
	StartYear  int       `json:"startYear"`
	EndMonth   int       `json:"endMonth"`
	EndYear    int       `json:"endYear"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewSuspensionResponse(susp *suspension.Suspension) SuspensionResponse {
	return SuspensionResponse{
		ID:         susp.ID,
		CustomerID: susp.CustomerID,
		StartMonth: susp.Period.StartMonth,
		StartYear:  susp.Period.StartYear,
		EndMonth:   susp.Period.EndMonth,
		EndYear:    susp.Period.EndYear,
		Reason:     susp.Reason,
		CreatedAt:  susp.CreatedAt,
		UpdatedAt:  susp.UpdatedAt,
	}
}
