package billing

import (
	"fmt"

	"wifi-billing/internal/pkg/apperrors"
)

// Money is the currency amount type used across billing computations.
type Money = float64

// MonthKey encodes a (year, zero-based month) pair into a single integer
// with total ordering. All period comparisons go through it.
func MonthKey(year, month int) int {
	return year*12 + month
}

// MonthOf is the inverse of MonthKey.
func MonthOf(key int) (year, month int) {
	return key / 12, key % 12
}

// Period is an inclusive month range. Months are zero-based (0 = January).
type Period struct {
	StartMonth int
	StartYear  int
	EndMonth   int
	EndYear    int
}

func (p Period) startKey() int { return MonthKey(p.StartYear, p.StartMonth) }
func (p Period) endKey() int   { return MonthKey(p.EndYear, p.EndMonth) }

// Validate checks month bounds and period ordering.
func (p Period) Validate() error {
	if p.StartMonth < 0 || p.StartMonth > 11 || p.EndMonth < 0 || p.EndMonth > 11 {
		return fmt.Errorf("%w: month must be between 0 and 11", apperrors.ErrValidation)
	}
	if p.startKey() > p.endKey() {
		return fmt.Errorf("%w: period start must not be after period end", apperrors.ErrValidation)
	}
	return nil
}

// Covers reports whether (year, month) falls inside the period, inclusive on
// both ends. A period is effective starting in its own start month.
func (p Period) Covers(year, month int) bool {
	key := MonthKey(year, month)
	return p.startKey() <= key && key <= p.endKey()
}

// Overlaps reports whether two periods share at least one month: neither may
// lie entirely before the other.
func (p Period) Overlaps(o Period) bool {
	return !(p.endKey() < o.startKey() || o.endKey() < p.startKey())
}

// AnyCovers reports whether any period in the slice covers (year, month).
func AnyCovers(periods []Period, year, month int) bool {
	for _, p := range periods {
		if p.Covers(year, month) {
			return true
		}
	}
	return false
}
