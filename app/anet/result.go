package anet

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type messageEntry struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type messagesBlock struct {
	ResultCode string         `json:"resultCode"`
	Message    []messageEntry `json:"message"`
}

type transactionError struct {
	ErrorCode string `json:"errorCode"`
	ErrorText string `json:"errorText"`
}

type transactionResponseBlock struct {
	ResponseCode string             `json:"responseCode"`
	AuthCode     string             `json:"authCode"`
	TransID      string             `json:"transId"`
	AccountType  string             `json:"accountType"`
	Errors       []transactionError `json:"errors"`
}

type subscriptionRef struct {
	ID     int64  `json:"id"`
	PayNum int    `json:"payNum"`
	Status string `json:"status,omitempty"`
}

type transactionDetailsBlock struct {
	TransID          string           `json:"transId"`
	TransactionType  string           `json:"transactionType"`
	TransactionStatus string          `json:"transactionStatus"`
	ResponseCode     int              `json:"responseCode"`
	RefTransID       string           `json:"refTransId"`
	AuthAmount       float64          `json:"authAmount"`
	SettleAmount     float64          `json:"settleAmount"`
	RecurringBilling bool             `json:"recurringBilling"`
	Subscription     *subscriptionRef `json:"subscription"`
	Order            *orderElement    `json:"order"`
}

// rawResponse is the superset of every API response this client parses.
// Per-operation result types expose only the accessors that are valid for
// their operation.
type rawResponse struct {
	Messages messagesBlock `json:"messages"`

	TransactionResponse *transactionResponseBlock `json:"transactionResponse"`

	CustomerProfileID            string   `json:"customerProfileId"`
	CustomerPaymentProfileIDList []string `json:"customerPaymentProfileIdList"`

	SubscriptionID string `json:"subscriptionId"`

	Transaction *transactionDetailsBlock `json:"transaction"`
}

// BaseResult is an immutable wrapper around one remote API response.
type BaseResult struct {
	raw rawResponse
}

func newBaseResult(raw rawResponse) BaseResult {
	return BaseResult{raw: raw}
}

func (r BaseResult) IsOk() bool {
	return r.raw.Messages.ResultCode == ResponseOk
}

// APIMessages returns the API-level messages keyed by code. A repeated
// code gets a positional suffix so no message is dropped.
func (r BaseResult) APIMessages() map[string]string {
	messages := make(map[string]string, len(r.raw.Messages.Message))
	for _, message := range r.raw.Messages.Message {
		code := message.Code
		if _, exists := messages[code]; exists {
			code = fmt.Sprintf("%s_%d", code, len(messages)+1)
		}
		messages[code] = message.Text
	}
	return messages
}

// Details renders the response as a generic map for audit logging.
func (r BaseResult) Details() map[string]interface{} {
	details := castToMap(r.raw)
	details["_apiMessages"] = r.APIMessages()
	return details
}

type ChargeResult struct {
	BaseResult
}

// IsOk reports whether the charge was accepted: the API call must have
// succeeded AND the transaction must have been approved. An Ok API result
// with any other response code is a declined card.
func (r ChargeResult) IsOk() bool {
	return r.BaseResult.IsOk() && r.ResponseCode() == ResponseCodeApproved
}

func (r ChargeResult) ResponseCode() string {
	if r.raw.TransactionResponse == nil {
		return ""
	}
	return r.raw.TransactionResponse.ResponseCode
}

func (r ChargeResult) TransID() string {
	if r.raw.TransactionResponse == nil {
		return ""
	}
	return r.raw.TransactionResponse.TransID
}

// TransactionErrors returns the provider-supplied per-transaction error
// texts, falling back to the API-level message texts when the transaction
// block carries none.
func (r ChargeResult) TransactionErrors() []string {
	texts := make([]string, 0)
	if r.raw.TransactionResponse != nil {
		for _, txErr := range r.raw.TransactionResponse.Errors {
			texts = append(texts, txErr.ErrorText)
		}
	}
	if len(texts) > 0 {
		return texts
	}

	for _, message := range r.raw.Messages.Message {
		if message.Code == "I00001" {
			continue
		}
		texts = append(texts, message.Text)
	}
	return texts
}

func (r ChargeResult) Details() map[string]interface{} {
	details := map[string]interface{}{}
	if r.raw.TransactionResponse != nil {
		details = castToMap(*r.raw.TransactionResponse)
	}
	details["_apiMessages"] = r.APIMessages()
	return details
}

type CreateCustomerProfileResult struct {
	BaseResult
}

func (r CreateCustomerProfileResult) ProfileID() string {
	return r.raw.CustomerProfileID
}

func (r CreateCustomerProfileResult) PaymentProfileID() string {
	if len(r.raw.CustomerPaymentProfileIDList) == 0 {
		return ""
	}
	return r.raw.CustomerPaymentProfileIDList[0]
}

type SubscribeResult struct {
	BaseResult
}

func (r SubscribeResult) SubscriptionID() string {
	return r.raw.SubscriptionID
}

type GetTransactionDetailsResult struct {
	BaseResult
}

func (r GetTransactionDetailsResult) IsOk() bool {
	if !r.BaseResult.IsOk() || r.raw.Transaction == nil {
		return false
	}
	return r.raw.Transaction.ResponseCode == 1
}

func (r GetTransactionDetailsResult) InvoiceNumber() string {
	if r.raw.Transaction == nil || r.raw.Transaction.Order == nil {
		return ""
	}
	return r.raw.Transaction.Order.InvoiceNumber
}

// ReversedTransID returns the id of the transaction this one reverses, or
// empty when the transaction is not a reversal.
func (r GetTransactionDetailsResult) ReversedTransID() string {
	if r.raw.Transaction == nil {
		return ""
	}
	if r.raw.Transaction.TransactionType != transactionTypeRefund {
		return ""
	}
	return r.raw.Transaction.RefTransID
}

// SubscriptionID returns the owning ARB subscription id, or empty when the
// transaction is not flagged as recurring billing. The provider does not
// flag a subscription's first transaction, so an empty value does not prove
// the transaction is one-off.
func (r GetTransactionDetailsResult) SubscriptionID() string {
	if r.raw.Transaction == nil || !r.raw.Transaction.RecurringBilling {
		return ""
	}
	if r.raw.Transaction.Subscription == nil || r.raw.Transaction.Subscription.ID == 0 {
		return ""
	}
	return strconv.FormatInt(r.raw.Transaction.Subscription.ID, 10)
}

func (r GetTransactionDetailsResult) AuthAmount() float64 {
	if r.raw.Transaction == nil {
		return 0
	}
	return r.raw.Transaction.AuthAmount
}

func (r GetTransactionDetailsResult) Details() map[string]interface{} {
	if r.raw.Transaction == nil {
		return map[string]interface{}{}
	}
	return castToMap(*r.raw.Transaction)
}

func castToMap(v interface{}) map[string]interface{} {
	payload, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(payload, &result); err != nil {
		return map[string]interface{}{}
	}
	if result == nil {
		result = map[string]interface{}{}
	}
	return result
}
