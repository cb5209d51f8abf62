package anet

// Wire shapes of the Authorize.Net JSON API. Field order inside the
// transactionRequest element is significant to the remote schema and must
// match the declaration order below.

type merchantAuthentication struct {
	Name           string `json:"name"`
	TransactionKey string `json:"transactionKey"`
}

type opaqueData struct {
	DataDescriptor string `json:"dataDescriptor"`
	DataValue      string `json:"dataValue"`
}

type paymentElement struct {
	OpaqueData opaqueData `json:"opaqueData"`
}

type orderElement struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Description   string `json:"description"`
}

type customerElement struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
}

type billToElement struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Zip         string `json:"zip,omitempty"`
	Country     string `json:"country,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type transactionRequestElement struct {
	TransactionType string           `json:"transactionType"`
	Amount          string           `json:"amount"`
	Payment         paymentElement   `json:"payment"`
	Order           orderElement     `json:"order"`
	Customer        *customerElement `json:"customer,omitempty"`
	BillTo          *billToElement   `json:"billTo,omitempty"`
}

type createTransactionRequestBody struct {
	MerchantAuthentication merchantAuthentication    `json:"merchantAuthentication"`
	TransactionRequest     transactionRequestElement `json:"transactionRequest"`
}

type createTransactionRequest struct {
	CreateTransactionRequest createTransactionRequestBody `json:"createTransactionRequest"`
}

type customerProfileElement struct {
	Description string `json:"description"`
}

type createCustomerProfileFromTransactionRequestBody struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	TransID                string                 `json:"transId"`
	Customer               customerProfileElement `json:"customer"`
}

type createCustomerProfileFromTransactionRequest struct {
	CreateCustomerProfileFromTransactionRequest createCustomerProfileFromTransactionRequestBody `json:"createCustomerProfileFromTransactionRequest"`
}

type intervalElement struct {
	Length int    `json:"length"`
	Unit   string `json:"unit"`
}

type paymentScheduleElement struct {
	Interval         intervalElement `json:"interval"`
	StartDate        string          `json:"startDate"`
	TotalOccurrences int             `json:"totalOccurrences"`
}

type customerProfileIDsElement struct {
	CustomerProfileID        string `json:"customerProfileId"`
	CustomerPaymentProfileID string `json:"customerPaymentProfileId"`
}

type subscriptionElement struct {
	PaymentSchedule paymentScheduleElement    `json:"paymentSchedule"`
	Amount          string                    `json:"amount"`
	Order           orderElement              `json:"order"`
	Profile         customerProfileIDsElement `json:"profile"`
}

type arbCreateSubscriptionRequestBody struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	Subscription           subscriptionElement    `json:"subscription"`
}

type arbCreateSubscriptionRequest struct {
	ARBCreateSubscriptionRequest arbCreateSubscriptionRequestBody `json:"ARBCreateSubscriptionRequest"`
}

type arbCancelSubscriptionRequestBody struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	SubscriptionID         string                 `json:"subscriptionId"`
}

type arbCancelSubscriptionRequest struct {
	ARBCancelSubscriptionRequest arbCancelSubscriptionRequestBody `json:"ARBCancelSubscriptionRequest"`
}

type getTransactionDetailsRequestBody struct {
	MerchantAuthentication merchantAuthentication `json:"merchantAuthentication"`
	TransID                string                 `json:"transId"`
}

type getTransactionDetailsRequest struct {
	GetTransactionDetailsRequest getTransactionDetailsRequestBody `json:"getTransactionDetailsRequest"`
}
