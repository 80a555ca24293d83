package customer

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Customer struct {
	ID         int64   `json:"id"`
	CustomerID string  `json:"customerId"`
	Name       string  `json:"name"`
	MonthlyFee float64 `json:"monthlyFee"`
	Bandwidth  int     `json:"bandwidth"`
	Status     Status  `json:"status"`
	Debt       float64 `json:"debt"`
	Deposit    float64 `json:"deposit"`
	// Month-key of the last period the debt accumulation job settled for
	// this customer. Nil until the job first touches the customer.
	LastAccumulatedPeriod *int      `json:"lastAccumulatedPeriod,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func NewCustomer(customerID, name string, monthlyFee float64, bandwidth int) *Customer {
	now := time.Now()
	return &Customer{
		CustomerID: customerID,
		Name:       name,
		MonthlyFee: monthlyFee,
		Bandwidth:  bandwidth,
		Status:     StatusActive,
		Debt:       0,
		Deposit:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

// EnrolledIn reports whether the customer was created in the given calendar
// month. New enrollees are not billed for their enrollment month.
func (c *Customer) EnrolledIn(year, month int) bool {
	return c.CreatedAt.Year() == year && int(c.CreatedAt.Month())-1 == month
}

func (c *Customer) SetBalances(debt, deposit float64) {
	c.Debt = debt
	c.Deposit = deposit
	c.UpdatedAt = time.Now()
}

func (c *Customer) Deactivate() {
	if c.Status == StatusActive {
		c.Status = StatusInactive
		c.UpdatedAt = time.Now()
	}
}
