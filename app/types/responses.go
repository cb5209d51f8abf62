package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Purchase struct {
	Id               uint64  `json:"id"`
	RequestKey       string  `json:"request_key"`
	PaymentProfileId uint64  `json:"payment_profile_id"`
	UserId           uint64  `json:"user_id"`
	CostAmount       float64 `json:"cost_amount"`
	CostCurrency     string  `json:"cost_currency"`
	Title            string  `json:"title"`
	Recurring        bool    `json:"recurring"`
	LengthAmount     int     `json:"length_amount,omitempty"`
	LengthUnit       string  `json:"length_unit,omitempty"`
	ReturnUrl        string  `json:"return_url,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// PaymentForm carries everything a client needs to render the hosted
// card form and tokenize card data against the right merchant account.
type PaymentForm struct {
	ApiLoginId      string   `json:"api_login_id"`
	PublicClientKey string   `json:"public_client_key"`
	AcceptedCards   []string `json:"accepted_cards,omitempty"`
	RequireNames    bool     `json:"require_names"`
	RequireEmail    bool     `json:"require_email"`
	RequireAddress  bool     `json:"require_address"`
}

type PurchaseEnvelopeResponse struct {
	Purchase    *Purchase    `json:"purchase"`
	PaymentForm *PaymentForm `json:"payment_form,omitempty"`
}

type ChargeResponse struct {
	Purchase       *Purchase `json:"purchase"`
	TransactionId  string    `json:"transaction_id"`
	SubscriptionId string    `json:"subscription_id,omitempty"`
	ReturnUrl      string    `json:"return_url,omitempty"`
}
