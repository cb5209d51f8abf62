package anet

import "testing"

func TestChargeResultRequiresBothOkAndApproved(t *testing.T) {
	approved := ChargeResult{BaseResult: newBaseResult(rawResponse{
		Messages:            messagesBlock{ResultCode: "Ok"},
		TransactionResponse: &transactionResponseBlock{ResponseCode: "1", TransID: "tx-1"},
	})}
	if !approved.IsOk() {
		t.Fatal("expected approved charge to be ok")
	}

	declined := ChargeResult{BaseResult: newBaseResult(rawResponse{
		Messages:            messagesBlock{ResultCode: "Ok"},
		TransactionResponse: &transactionResponseBlock{ResponseCode: "2", TransID: "tx-2"},
	})}
	if declined.IsOk() {
		t.Fatal("declined transaction must not be ok even when the api call succeeded")
	}

	apiError := ChargeResult{BaseResult: newBaseResult(rawResponse{
		Messages:            messagesBlock{ResultCode: "Error"},
		TransactionResponse: &transactionResponseBlock{ResponseCode: "1"},
	})}
	if apiError.IsOk() {
		t.Fatal("api-level error must not be ok even with an approved response code")
	}
}

func TestChargeResultTransactionErrorsFallsBackToAPIMessages(t *testing.T) {
	withErrors := ChargeResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok", Message: []messageEntry{{Code: "I00001", Text: "Successful."}}},
		TransactionResponse: &transactionResponseBlock{
			ResponseCode: "2",
			Errors:       []transactionError{{ErrorCode: "2", ErrorText: "This transaction has been declined."}},
		},
	})}
	texts := withErrors.TransactionErrors()
	if len(texts) != 1 || texts[0] != "This transaction has been declined." {
		t.Fatalf("unexpected transaction errors: %v", texts)
	}

	withoutErrors := ChargeResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Error", Message: []messageEntry{
			{Code: "I00001", Text: "Successful."},
			{Code: "E00027", Text: "The transaction was unsuccessful."},
		}},
	})}
	texts = withoutErrors.TransactionErrors()
	if len(texts) != 1 || texts[0] != "The transaction was unsuccessful." {
		t.Fatalf("expected fallback to non-informational api messages, got %v", texts)
	}
}

func TestAPIMessagesKeepsDuplicateCodes(t *testing.T) {
	result := newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Error", Message: []messageEntry{
			{Code: "E00027", Text: "first"},
			{Code: "E00027", Text: "second"},
		}},
	})

	messages := result.APIMessages()
	if len(messages) != 2 {
		t.Fatalf("expected both messages to survive, got %v", messages)
	}
	if messages["E00027"] != "first" {
		t.Fatalf("unexpected first message: %v", messages)
	}
	if messages["E00027_2"] != "second" {
		t.Fatalf("expected positional suffix for duplicate code, got %v", messages)
	}
}

func TestGetTransactionDetailsReversedTransIDOnlyForRefunds(t *testing.T) {
	refund := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok"},
		Transaction: &transactionDetailsBlock{
			TransID:         "tx-2",
			TransactionType: "refundTransaction",
			ResponseCode:    1,
			RefTransID:      "tx-1",
		},
	})}
	if got := refund.ReversedTransID(); got != "tx-1" {
		t.Fatalf("expected reversed trans id tx-1, got %q", got)
	}

	capture := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok"},
		Transaction: &transactionDetailsBlock{
			TransID:         "tx-3",
			TransactionType: "authCaptureTransaction",
			ResponseCode:    1,
			RefTransID:      "tx-1",
		},
	})}
	if got := capture.ReversedTransID(); got != "" {
		t.Fatalf("non-refund transaction must not report a reversal, got %q", got)
	}
}

func TestGetTransactionDetailsSubscriptionIDGatedByRecurringFlag(t *testing.T) {
	recurring := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok"},
		Transaction: &transactionDetailsBlock{
			ResponseCode:     1,
			RecurringBilling: true,
			Subscription:     &subscriptionRef{ID: 42, PayNum: 2},
		},
	})}
	if got := recurring.SubscriptionID(); got != "42" {
		t.Fatalf("expected subscription id 42, got %q", got)
	}

	oneOff := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok"},
		Transaction: &transactionDetailsBlock{
			ResponseCode: 1,
			Subscription: &subscriptionRef{ID: 42},
		},
	})}
	if got := oneOff.SubscriptionID(); got != "" {
		t.Fatalf("non-recurring transaction must not report a subscription, got %q", got)
	}
}

func TestGetTransactionDetailsIsOkRequiresTransaction(t *testing.T) {
	missing := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages: messagesBlock{ResultCode: "Ok"},
	})}
	if missing.IsOk() {
		t.Fatal("ok without a transaction block must not be ok")
	}

	unapproved := GetTransactionDetailsResult{BaseResult: newBaseResult(rawResponse{
		Messages:    messagesBlock{ResultCode: "Ok"},
		Transaction: &transactionDetailsBlock{ResponseCode: 2},
	})}
	if unapproved.IsOk() {
		t.Fatal("unapproved transaction must not be ok")
	}
}
