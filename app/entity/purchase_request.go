package entity

import "time"

const (
	RecurrenceUnitDay   = "day"
	RecurrenceUnitMonth = "month"
)

// PurchaseRequest is a pending purchase. Its numeric ID doubles as the
// invoice number sent to the provider and is the correlation key of last
// resort for inbound webhook events.
type PurchaseRequest struct {
	ID uint64

	RequestKey       string
	PaymentProfileID uint64
	UserID           uint64

	CostAmount   float64
	CostCurrency string

	Title     string
	Recurring bool

	LengthAmount *int
	LengthUnit   *string

	ReturnURL string

	CreatedAt time.Time
}
