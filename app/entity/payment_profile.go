package entity

import "time"

// PaymentProfile is one merchant credential set for the provider. It is
// owned by the merchant configuration and read-only to the payment core.
type PaymentProfile struct {
	ID uint64

	ProviderID string
	Active     bool

	APILoginID      string
	TransactionKey  string
	SignatureKey    string
	PublicClientKey string

	RequireNames   bool
	RequireEmail   bool
	RequireAddress bool

	AcceptedCards []string

	CreatedAt time.Time
	UpdatedAt time.Time
}
