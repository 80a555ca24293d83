package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"wifi-billing/internal/domain/customer"
)

type CreateCustomerRequest struct {
	CustomerID string  `json:"customerId"`
	Name       string  `json:"name"`
	MonthlyFee float64 `json:"monthlyFee"`
	Bandwidth  int     `json:"bandwidth"`
	Status     string  `json:"status,omitempty"`
}

func (r *CreateCustomerRequest) Validate() error {
	if r.CustomerID == "" {
		return fmt.Errorf("customerId cannot be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.MonthlyFee < 0 {
		return fmt.Errorf("monthlyFee cannot be negative")
	}
	if r.Bandwidth < 0 {
		return fmt.Errorf("bandwidth cannot be negative")
	}
	return nil
}

type UpdateCustomerRequest struct {
	Name       *string  `json:"name,omitempty"`
	MonthlyFee *float64 `json:"monthlyFee,omitempty"`
	Bandwidth  *int     `json:"bandwidth,omitempty"`
	Status     *string  `json:"status,omitempty"`
	Debt       *float64 `json:"debt,omitempty"`
	Deposit    *float64 `json:"deposit,omitempty"`
}

type CustomerResponse struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	MonthlyFee string    `json:"monthlyFee"`
	Bandwidth  int       `json:"bandwidth"`
	Status     string    `json:"status"`
	Debt       string    `json:"debt"`
	Deposit    string    `json:"deposit"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FormatMoney renders a rupiah amount with two decimal places.
func FormatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		MonthlyFee: FormatMoney(cust.MonthlyFee),
		Bandwidth:  cust.Bandwidth,
		Status:     string(cust.Status),
		Debt:       FormatMoney(cust.Debt),
		Deposit:    FormatMoney(cust.Deposit),
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
}

type BillResponse struct {
	CustomerID string `json:"customerId"`
	Suspended  bool   `json:"suspended"`
	MonthlyFee string `json:"monthlyFee"`
	Debt       string `json:"debt"`
	Deposit    string `json:"deposit"`
	TotalBill  string `json:"totalBill"`
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
