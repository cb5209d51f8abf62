package entity

import "time"

const (
	LogTypeInfo  = "info"
	LogTypeError = "error"
)

// ProviderLog is an append-only audit record of provider activity. A log
// carrying a SubscriberID is the only durable evidence that a subscription
// was created for a purchase request.
type ProviderLog struct {
	ID uint64

	PurchaseRequestKey string
	ProviderID         string
	TransactionID      string

	LogType    string
	LogMessage string
	Details    map[string]interface{}

	SubscriberID *string

	LogDate time.Time
}
