package service

import (
	"context"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-authorizenet/app/anet"
	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

var invoiceNumberPattern = regexp.MustCompile(`^(\d+)(:\d+)?$`)

type callbackNotification struct {
	NotificationID string `json:"notificationId"`
	EventType      string `json:"eventType"`
	Payload        struct {
		ID         string   `json:"id"`
		EntityName string   `json:"entityName"`
		AuthAmount *float64 `json:"authAmount"`
	} `json:"payload"`
}

// HandleCallback processes one webhook delivery from the provider. The
// returned state always carries an HTTP status the controller can answer
// with; failures are recorded in the state rather than returned, so a bad
// notification never makes the provider retry or disable the webhook.
func (s *PaymentService) HandleCallback(ctx context.Context, raw []byte, signatureHeader string) (CallbackState, error) {
	state := newCallbackState(raw, signatureHeader)

	state, ok := s.parseNotification(state)
	if !ok {
		return state, nil
	}

	state, err := s.verifySignature(ctx, state)
	if err != nil {
		return state, err
	}
	if state.Profile == nil {
		return state, nil
	}

	state, err = s.correlate(ctx, state)
	if err != nil {
		return state, err
	}
	if state.RequestKey == "" {
		return state.failed("cannot correlate transaction " + state.TransactionID), nil
	}

	state, err = s.resolvePurchaseRequest(ctx, state)
	if err != nil {
		return state, err
	}
	if state.PurchaseRequest == nil {
		return s.writeCallbackLog(ctx, state)
	}

	state = s.validateCost(state)
	state = s.classify(state)

	return s.writeCallbackLog(ctx, state)
}

func (s *PaymentService) parseNotification(state CallbackState) (CallbackState, bool) {
	var notification callbackNotification
	if err := json.Unmarshal(state.InputRaw, &notification); err != nil {
		return state.failed("cannot parse notification"), false
	}
	if notification.EventType == "" || notification.Payload.ID == "" {
		return state.failed("notification has no event type or payload id"), false
	}

	state.EventType = notification.EventType
	state.TransactionID = notification.Payload.ID
	state.AuthAmount = notification.Payload.AuthAmount
	return state, true
}

// verifySignature tries every active profile: deliveries do not identify
// which merchant account they belong to, only the HMAC key can.
func (s *PaymentService) verifySignature(ctx context.Context, state CallbackState) (CallbackState, error) {
	profiles, err := s.profileRepo.FindActiveByProvider(ctx, s.anetCfg.ProviderID)
	if err != nil {
		return state, err
	}

	for _, profile := range profiles {
		if anet.VerifySignature(profile, state.SignatureHeader, state.InputRaw, s.anetCfg.SignatureKeyHex) {
			state.Profile = profile
			return state, nil
		}
	}

	return state.failed("signature does not match any active profile"), nil
}

func (s *PaymentService) correlate(ctx context.Context, state CallbackState) (CallbackState, error) {
	state, err := s.correlateFromTransactionLogs(ctx, state, state.TransactionID)
	if err != nil {
		return state, err
	}
	if state.RequestKey != "" {
		if state.EventType == anet.EventTypeVoid {
			// Suffix keeps the void distinguishable from the original
			// charge log that shares the same provider transaction id.
			state.ReversedTransID = state.TransactionID
			state.TransactionID += ":voided"
			state.PaymentResult = PaymentResultReversed
		}
		return state, nil
	}

	state, err = s.fetchTransactionDetails(ctx, state)
	if err != nil || state.APITransaction == nil {
		return state, err
	}

	state, err = s.correlateFromSubscriber(ctx, state)
	if err != nil || state.RequestKey != "" {
		return state, err
	}

	state, err = s.correlateFromReversal(ctx, state)
	if err != nil || state.RequestKey != "" {
		return state, err
	}

	return s.correlateFromInvoice(ctx, state)
}

func (s *PaymentService) correlateFromTransactionLogs(ctx context.Context, state CallbackState, transactionID string) (CallbackState, error) {
	if transactionID == "" {
		return state, nil
	}

	logs, err := s.logRepo.FindByTransactionID(ctx, transactionID, entity.LogTypeInfo, s.anetCfg.ProviderID)
	if err != nil {
		return state, err
	}

	for _, log := range logs {
		if log.PurchaseRequestKey == "" {
			continue
		}
		state = state.withRequestKey(log.PurchaseRequestKey)
		if state.SubscriberID == "" && log.SubscriberID != nil {
			state.SubscriberID = *log.SubscriberID
		}
		break
	}

	return state, nil
}

func (s *PaymentService) fetchTransactionDetails(ctx context.Context, state CallbackState) (CallbackState, error) {
	details, err := s.gateway.GetTransactionDetails(ctx, state.Profile, state.TransactionID)
	if err != nil {
		return state, err
	}
	if !details.IsOk() {
		return state, nil
	}

	state.APITransaction = details.Details()
	state.ReversedTransID = details.ReversedTransID()
	state.InvoiceNumber = details.InvoiceNumber()
	if state.SubscriberID == "" {
		state.SubscriberID = details.SubscriptionID()
	}
	if state.AuthAmount == nil {
		amount := details.AuthAmount()
		state.AuthAmount = &amount
	}
	return state, nil
}

func (s *PaymentService) correlateFromSubscriber(ctx context.Context, state CallbackState) (CallbackState, error) {
	if state.SubscriberID == "" {
		return state, nil
	}

	log, err := s.logRepo.FindBySubscriberID(ctx, state.SubscriberID, s.anetCfg.ProviderID)
	if err != nil {
		return state, err
	}
	if log != nil {
		state = state.withRequestKey(log.PurchaseRequestKey)
	}

	return state, nil
}

// correlateFromReversal follows refunds and voids back to the transaction
// they undo. The original charge is what the provider log knows about.
func (s *PaymentService) correlateFromReversal(ctx context.Context, state CallbackState) (CallbackState, error) {
	if state.ReversedTransID == "" {
		return state, nil
	}

	state, err := s.correlateFromTransactionLogs(ctx, state, state.ReversedTransID)
	if err != nil {
		return state, err
	}
	if state.RequestKey != "" {
		state.PaymentResult = PaymentResultReversed
	}

	return state, nil
}

func (s *PaymentService) correlateFromInvoice(ctx context.Context, state CallbackState) (CallbackState, error) {
	matches := invoiceNumberPattern.FindStringSubmatch(state.InvoiceNumber)
	if matches == nil {
		return state, nil
	}

	purchaseRequestID, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		return state, nil
	}

	purchaseRequest, err := s.purchaseRepo.FindByIDAndProfile(ctx, purchaseRequestID, state.Profile.ID)
	if err != nil {
		return state, err
	}
	if purchaseRequest != nil {
		state.PurchaseRequest = purchaseRequest
		state = state.withRequestKey(purchaseRequest.RequestKey)
	}

	return state, nil
}

func (s *PaymentService) resolvePurchaseRequest(ctx context.Context, state CallbackState) (CallbackState, error) {
	if state.PurchaseRequest == nil {
		purchaseRequest, err := s.purchaseRepo.FindByRequestKey(ctx, state.RequestKey)
		if err != nil {
			return state, err
		}
		if purchaseRequest == nil {
			return state.failed("no purchase request for key " + state.RequestKey), nil
		}
		state.PurchaseRequest = purchaseRequest
	}

	if state.PurchaseRequest.PaymentProfileID != state.Profile.ID {
		state.PurchaseRequest = nil
		return state.failed("purchase request belongs to another profile"), nil
	}

	return state, nil
}

// validateCost rejects capture notifications whose amount drifted from what
// the purchase request asked for. Only initial captures are checked; refund
// and void amounts legitimately differ on partial reversals.
func (s *PaymentService) validateCost(state CallbackState) CallbackState {
	if state.EventType != anet.EventTypeAuthCapture {
		return state
	}
	if state.AuthAmount == nil {
		return state.failed("capture notification is missing the auth amount")
	}

	if math.Abs(*state.AuthAmount-state.PurchaseRequest.CostAmount) > 0.01 {
		return state.failed("amount " + strconv.FormatFloat(*state.AuthAmount, 'f', 2, 64) +
			" does not match expected " + strconv.FormatFloat(state.PurchaseRequest.CostAmount, 'f', 2, 64))
	}

	return state
}

func (s *PaymentService) classify(state CallbackState) CallbackState {
	if state.LogType == entity.LogTypeError {
		return state
	}

	switch {
	case state.ReversedTransID != "":
		state.PaymentResult = PaymentResultReversed
	case state.EventType == anet.EventTypeRefund || state.EventType == anet.EventTypeVoid:
		state.PaymentResult = PaymentResultReversed
	case state.EventType == anet.EventTypeAuthCapture,
		state.EventType == anet.EventTypeCapture,
		state.EventType == anet.EventTypePriorAuthCapture:
		state.PaymentResult = PaymentResultReceived
	}

	return state
}

func (s *PaymentService) writeCallbackLog(ctx context.Context, state CallbackState) (CallbackState, error) {
	if state.LogMessage == "" {
		state.LogMessage = "Authorize.Net callback " + state.EventType
	}

	var input map[string]interface{}
	if err := json.Unmarshal(state.InputRaw, &input); err == nil {
		state = state.mergeLogDetails(input)
	}
	if state.APITransaction != nil {
		state = state.mergeLogDetails(map[string]interface{}{"apiTransaction": state.APITransaction})
	}

	var subscriberID *string
	if state.SubscriberID != "" {
		subscriberID = &state.SubscriberID
	}

	if err := s.logRepo.Create(ctx, &entity.ProviderLog{
		PurchaseRequestKey: state.RequestKey,
		ProviderID:         s.anetCfg.ProviderID,
		TransactionID:      state.TransactionID,
		LogType:            state.LogType,
		LogMessage:         state.LogMessage,
		Details:            state.LogDetails,
		SubscriberID:       subscriberID,
		LogDate:            time.Now().UTC(),
	}); err != nil {
		return state, err
	}

	return state, nil
}
