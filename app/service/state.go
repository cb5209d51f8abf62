package service

import (
	"net/http"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

type PaymentResult int32

const (
	PaymentResultNone PaymentResult = iota
	PaymentResultReceived
	PaymentResultReversed
)

// CallbackState carries one inbound webhook notification through the
// processing pipeline. Every pipeline stage takes the state by value and
// returns an updated copy; nothing is retained between deliveries, all
// cross-request correlation goes through the provider log.
type CallbackState struct {
	InputRaw        []byte
	SignatureHeader string

	EventType  string
	AuthAmount *float64

	Profile         *entity.PaymentProfile
	PurchaseRequest *entity.PurchaseRequest
	RequestKey      string

	TransactionID   string
	ReversedTransID string
	SubscriberID    string
	InvoiceNumber   string

	APITransaction map[string]interface{}

	PaymentResult PaymentResult

	LogType    string
	LogMessage string
	LogDetails map[string]interface{}

	HTTPStatus int
}

func newCallbackState(raw []byte, signatureHeader string) CallbackState {
	return CallbackState{
		InputRaw:        raw,
		SignatureHeader: signatureHeader,
		LogType:         entity.LogTypeInfo,
		HTTPStatus:      http.StatusOK,
	}
}

// failed marks the state terminal. The HTTP status stays 200: any other
// status makes the provider count the delivery as failed and eventually
// auto-disable the webhook.
func (s CallbackState) failed(message string) CallbackState {
	s.LogType = entity.LogTypeError
	s.LogMessage = message
	s.HTTPStatus = http.StatusOK
	return s
}

// withRequestKey resolves the correlation key. A non-empty key is
// authoritative and is never overwritten by a later correlation step.
func (s CallbackState) withRequestKey(requestKey string) CallbackState {
	if s.RequestKey == "" {
		s.RequestKey = requestKey
	}
	return s
}

// mergeLogDetails adds entries without replacing fields an earlier stage
// already populated.
func (s CallbackState) mergeLogDetails(details map[string]interface{}) CallbackState {
	merged := make(map[string]interface{}, len(s.LogDetails)+len(details))
	for key, value := range s.LogDetails {
		merged[key] = value
	}
	for key, value := range details {
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = value
	}
	s.LogDetails = merged
	return s
}
