package anet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

const (
	sandboxAPIBaseURL    = "https://apitest.authorize.net"
	productionAPIBaseURL = "https://api.authorize.net"

	apiPath      = "/xml/v1/request.api"
	webhooksPath = "/rest/v1/webhooks"
)

const (
	// ResponseOk is the API-level result code of a successful call.
	ResponseOk = "Ok"
	// ResponseCodeApproved is the transaction-level response code of an
	// approved charge. An API-level Ok can still carry a declined card.
	ResponseCodeApproved = "1"

	// subscribeRetryErrorCode is "The record cannot be found." — returned
	// when a freshly created customer profile is not yet visible to ARB.
	subscribeRetryErrorCode = "E00040"

	// ARB has no notion of an open-ended schedule, 9999 is its
	// documented sentinel for "charge until cancelled".
	totalOccurrencesIndefinite = 9999

	transactionTypeAuthCapture = "authCaptureTransaction"
	transactionTypeRefund      = "refundTransaction"
)

const (
	EventTypeAuthCapture      = "net.authorize.payment.authcapture.created"
	EventTypeCapture          = "net.authorize.payment.capture.created"
	EventTypePriorAuthCapture = "net.authorize.payment.priorAuthCapture.created"
	EventTypeRefund           = "net.authorize.payment.refund.created"
	EventTypeVoid             = "net.authorize.payment.void.created"
)

// webhookEventTypes is the exact event set every registered webhook must be
// subscribed to.
var webhookEventTypes = []string{
	EventTypeAuthCapture,
	EventTypeRefund,
	EventTypeVoid,
}

var (
	ErrOpaqueData          = errors.New("opaque data cannot be decoded")
	ErrCurrencyUnsupported = errors.New("currency is not supported")
	ErrMissingTransID      = errors.New("charge does not have a valid transaction id")
)

type Config struct {
	LiveMode bool

	// APIBaseURL / WebhookBaseURL override the endpoints derived from
	// LiveMode.
	APIBaseURL     string
	WebhookBaseURL string

	HTTPTimeout time.Duration

	SubscribeMaxAttempts       int
	SubscribeRetryDelay        time.Duration
	SubscribeRetryDelaySandbox time.Duration
}

// Client performs outbound calls against the Authorize.Net transaction,
// ARB and webhook management APIs. It is constructed once at process start
// and shared; it holds no per-request state.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if cfg.SubscribeMaxAttempts <= 0 {
		cfg.SubscribeMaxAttempts = 3
	}
	if cfg.SubscribeRetryDelay <= 0 {
		cfg.SubscribeRetryDelay = time.Second
	}
	if cfg.SubscribeRetryDelaySandbox <= 0 {
		cfg.SubscribeRetryDelaySandbox = 20 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Purchase is the line item being paid for. It is constructed per request
// and never persisted by this package.
type Purchase struct {
	Cost      float64
	Currency  string
	Title     string
	Recurring bool

	LengthAmount int
	LengthUnit   string

	ReturnURL string
}

// ChargeInputs are the operator-supplied billing fields. Empty means not
// supplied; which fields are required is decided by the caller from the
// payment profile flags before the remote call.
type ChargeInputs struct {
	CustomerID string
	Email      string

	FirstName string
	LastName  string

	PhoneNumber string

	Address string
	City    string
	State   string
	Zip     string
	Country string
}

func (c *Client) Charge(
	ctx context.Context,
	profile *entity.PaymentProfile,
	purchaseRequest *entity.PurchaseRequest,
	purchase Purchase,
	opaqueDataJSON string,
	inputs ChargeInputs,
) (ChargeResult, error) {
	if purchase.Currency != "USD" {
		return ChargeResult{}, fmt.Errorf("%w: %s", ErrCurrencyUnsupported, purchase.Currency)
	}

	var opaque opaqueData
	if err := json.Unmarshal([]byte(opaqueDataJSON), &opaque); err != nil {
		return ChargeResult{}, ErrOpaqueData
	}
	if opaque.DataDescriptor == "" || opaque.DataValue == "" {
		return ChargeResult{}, ErrOpaqueData
	}

	billTo := &billToElement{}
	billToHasData := false
	if inputs.FirstName != "" && inputs.LastName != "" {
		billTo.FirstName = inputs.FirstName
		billTo.LastName = inputs.LastName
		billToHasData = true
	} else if purchase.Recurring {
		// names are required for ARB subscriptions
		billTo.FirstName = "John"
		billTo.LastName = "Appleseed"
		billToHasData = true
	}
	if inputs.PhoneNumber != "" {
		billTo.PhoneNumber = inputs.PhoneNumber
		billToHasData = true
	}
	if inputs.Address != "" && inputs.City != "" && inputs.State != "" && inputs.Zip != "" && inputs.Country != "" {
		billTo.Address = inputs.Address
		billTo.City = inputs.City
		billTo.State = inputs.State
		billTo.Zip = inputs.Zip
		billTo.Country = inputs.Country
		billToHasData = true
	}
	if !billToHasData {
		billTo = nil
	}

	customer := &customerElement{}
	customerHasData := false
	if inputs.CustomerID != "" {
		customer.ID = inputs.CustomerID
		customerHasData = true
	}
	if inputs.Email != "" {
		customer.Email = inputs.Email
		customerHasData = true
	}
	if !customerHasData {
		customer = nil
	}

	request := createTransactionRequest{
		CreateTransactionRequest: createTransactionRequestBody{
			MerchantAuthentication: newMerchantAuthentication(profile),
			TransactionRequest: transactionRequestElement{
				TransactionType: transactionTypeAuthCapture,
				Amount:          formatAmount(purchase.Cost),
				Payment:         paymentElement{OpaqueData: opaque},
				Order: orderElement{
					InvoiceNumber: strconv.FormatUint(purchaseRequest.ID, 10),
					Description:   purchase.Title,
				},
				Customer: customer,
				BillTo:   billTo,
			},
		},
	}

	raw, err := c.doAPI(ctx, request)
	if err != nil {
		return ChargeResult{}, err
	}

	return ChargeResult{BaseResult: newBaseResult(raw)}, nil
}

func (c *Client) CreateCustomerProfileFromTransaction(
	ctx context.Context,
	profile *entity.PaymentProfile,
	charge ChargeResult,
) (CreateCustomerProfileResult, error) {
	transID := charge.TransID()
	if transID == "" {
		return CreateCustomerProfileResult{}, ErrMissingTransID
	}

	request := createCustomerProfileFromTransactionRequest{
		CreateCustomerProfileFromTransactionRequest: createCustomerProfileFromTransactionRequestBody{
			MerchantAuthentication: newMerchantAuthentication(profile),
			TransID:                transID,
			Customer: customerProfileElement{
				Description: fmt.Sprintf("Customer Profile for transaction %s", transID),
			},
		},
	}

	raw, err := c.doAPI(ctx, request)
	if err != nil {
		return CreateCustomerProfileResult{}, err
	}

	return CreateCustomerProfileResult{BaseResult: newBaseResult(raw)}, nil
}

// Subscribe creates an ARB subscription billing against the customer
// profile created from the initial charge. The provider may not have the
// profile visible to ARB yet (error E00040), in which case the call is
// retried a bounded number of times; each retry re-submits with an invoice
// number suffixed by the attempt so the order reference stays unique.
func (c *Client) Subscribe(
	ctx context.Context,
	profile *entity.PaymentProfile,
	purchaseRequest *entity.PurchaseRequest,
	purchase Purchase,
	customerProfile CreateCustomerProfileResult,
) (SubscribeResult, error) {
	if err := ValidateRecurrenceLength(purchase.LengthAmount, purchase.LengthUnit); err != nil {
		return SubscribeResult{}, err
	}
	if purchase.Currency != "USD" {
		return SubscribeResult{}, fmt.Errorf("%w: %s", ErrCurrencyUnsupported, purchase.Currency)
	}

	for attempt := 0; ; attempt++ {
		result, err := c.subscribeOnce(ctx, profile, purchaseRequest, purchase, customerProfile, attempt)
		if err != nil {
			return SubscribeResult{}, err
		}
		if result.IsOk() {
			return result, nil
		}

		if _, found := result.APIMessages()[subscribeRetryErrorCode]; !found {
			return result, nil
		}
		if attempt+1 >= c.cfg.SubscribeMaxAttempts {
			return result, nil
		}

		if err := c.sleepBeforeRetry(ctx); err != nil {
			return result, err
		}
	}
}

func (c *Client) subscribeOnce(
	ctx context.Context,
	profile *entity.PaymentProfile,
	purchaseRequest *entity.PurchaseRequest,
	purchase Purchase,
	customerProfile CreateCustomerProfileResult,
	attempt int,
) (SubscribeResult, error) {
	invoiceNumber := strconv.FormatUint(purchaseRequest.ID, 10)
	if attempt > 0 {
		invoiceNumber = fmt.Sprintf("%s:%d", invoiceNumber, attempt)
	}

	request := arbCreateSubscriptionRequest{
		ARBCreateSubscriptionRequest: arbCreateSubscriptionRequestBody{
			MerchantAuthentication: newMerchantAuthentication(profile),
			Subscription: subscriptionElement{
				PaymentSchedule: paymentScheduleElement{
					Interval: intervalElement{
						Length: purchase.LengthAmount,
						Unit:   purchase.LengthUnit + "s",
					},
					StartDate:        c.subscriptionStartDate(purchase).Format("2006-01-02"),
					TotalOccurrences: totalOccurrencesIndefinite,
				},
				Amount: formatAmount(purchase.Cost),
				Order: orderElement{
					InvoiceNumber: invoiceNumber,
					Description:   purchase.Title,
				},
				Profile: customerProfileIDsElement{
					CustomerProfileID:        customerProfile.ProfileID(),
					CustomerPaymentProfileID: customerProfile.PaymentProfileID(),
				},
			},
		},
	}

	raw, err := c.doAPI(ctx, request)
	if err != nil {
		return SubscribeResult{}, err
	}

	return SubscribeResult{BaseResult: newBaseResult(raw)}, nil
}

func (c *Client) subscriptionStartDate(purchase Purchase) time.Time {
	now := time.Now()
	if !c.cfg.LiveMode {
		// Sandbox profile provisioning is slow; a subscription starting
		// immediately can fail validation. Start the next day instead.
		return now.AddDate(0, 0, 1)
	}

	if purchase.LengthUnit == entity.RecurrenceUnitMonth {
		return now.AddDate(0, purchase.LengthAmount, 0)
	}
	return now.AddDate(0, 0, purchase.LengthAmount)
}

func (c *Client) sleepBeforeRetry(ctx context.Context) error {
	delay := c.cfg.SubscribeRetryDelay
	if !c.cfg.LiveMode {
		delay = c.cfg.SubscribeRetryDelaySandbox
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) UnSubscribe(ctx context.Context, profile *entity.PaymentProfile, subscriptionID string) (bool, error) {
	request := arbCancelSubscriptionRequest{
		ARBCancelSubscriptionRequest: arbCancelSubscriptionRequestBody{
			MerchantAuthentication: newMerchantAuthentication(profile),
			SubscriptionID:         subscriptionID,
		},
	}

	raw, err := c.doAPI(ctx, request)
	if err != nil {
		return false, err
	}

	return raw.Messages.ResultCode == ResponseOk, nil
}

func (c *Client) GetTransactionDetails(ctx context.Context, profile *entity.PaymentProfile, transID string) (GetTransactionDetailsResult, error) {
	request := getTransactionDetailsRequest{
		GetTransactionDetailsRequest: getTransactionDetailsRequestBody{
			MerchantAuthentication: newMerchantAuthentication(profile),
			TransID:                transID,
		},
	}

	raw, err := c.doAPI(ctx, request)
	if err != nil {
		return GetTransactionDetailsResult{}, err
	}

	return GetTransactionDetailsResult{BaseResult: newBaseResult(raw)}, nil
}

// ValidateRecurrenceLength rejects interval combinations outside the
// provider's ARB limits before any remote call is made.
func ValidateRecurrenceLength(amount int, unit string) error {
	switch unit {
	case entity.RecurrenceUnitDay:
		if amount >= 7 && amount <= 365 {
			return nil
		}
	case entity.RecurrenceUnitMonth:
		if amount >= 1 && amount <= 12 {
			return nil
		}
	}

	return fmt.Errorf("recurring length combination %d %s is not supported", amount, unit)
}

func (c *Client) apiBaseURL() string {
	if c.cfg.APIBaseURL != "" {
		return strings.TrimRight(c.cfg.APIBaseURL, "/")
	}
	if c.cfg.LiveMode {
		return productionAPIBaseURL
	}
	return sandboxAPIBaseURL
}

func (c *Client) webhookBaseURL() string {
	if c.cfg.WebhookBaseURL != "" {
		return strings.TrimRight(c.cfg.WebhookBaseURL, "/")
	}
	if c.cfg.LiveMode {
		return productionAPIBaseURL
	}
	return sandboxAPIBaseURL
}

func (c *Client) doAPI(ctx context.Context, payload interface{}) (rawResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return rawResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL()+apiPath, bytes.NewReader(body))
	if err != nil {
		return rawResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return rawResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, err
	}
	if resp.StatusCode >= 400 {
		return rawResponse{}, fmt.Errorf("authorize.net request failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	// the transaction API prefixes its JSON with a UTF-8 BOM
	respBody = bytes.TrimPrefix(respBody, []byte("\xef\xbb\xbf"))

	var raw rawResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return rawResponse{}, fmt.Errorf("authorize.net response cannot be parsed: %w", err)
	}

	return raw, nil
}

func newMerchantAuthentication(profile *entity.PaymentProfile) merchantAuthentication {
	return merchantAuthentication{
		Name:           profile.APILoginID,
		TransactionKey: profile.TransactionKey,
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
