// internal/domain/subscription/entity.go
package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interval is the recurring billing period of a plan.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth, IntervalYear:
		return true
	}
	return false
}

// Price is a plan price with two decimal places. It is encoded as a JSON
// string ("20.00") and accepts either a string or a number on input.
type Price struct {
	decimal.Decimal
}

func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{d}, nil
}

func MustPrice(s string) Price {
	p, err := NewPrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.StringFixed(2) + `"`), nil
}

// Cents returns the price in the smallest currency unit.
func (p Price) Cents() int64 {
	return p.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// HasValidScale reports whether the price has at most two decimal places.
func (p Price) HasValidScale() bool {
	return p.Equal(p.Round(2))
}

// Plan is an entry of the subscription plan catalog.
type Plan struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     Price     `json:"price" db:"price"`
	Interval  Interval  `json:"interval" db:"interval"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Plan defaults.
const (
	DefaultPlanName = "Basic Plan"
	DefaultPrice    = "20.00"
	DefaultInterval = IntervalMonth
)

// LedgerEntry links a user to a plan and the provider's subscription.
// Entries are deactivated, never deleted.
type LedgerEntry struct {
	ID                   int64      `json:"id" db:"id"`
	UserID               int64      `json:"user_id" db:"user_id"`
	PlanID               int64      `json:"plan_id" db:"plan_id"`
	PlanName             string     `json:"plan_name" db:"plan_name"`
	StripeSubscriptionID string     `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	IsActive             bool       `json:"is_active" db:"is_active"`
	CurrentPeriodEnd     time.Time  `json:"current_period_end" db:"current_period_end"`
	CancelledAt          *time.Time `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// PeriodEndFromUnix converts a provider epoch-seconds timestamp to UTC.
func PeriodEndFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
