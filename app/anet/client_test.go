package anet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

func testProfile() *entity.PaymentProfile {
	return &entity.PaymentProfile{
		ID:             1,
		ProviderID:     "authorizenet",
		Active:         true,
		APILoginID:     "login-1",
		TransactionKey: "key-1",
		SignatureKey:   "signature-1",
	}
}

func testPurchaseRequest() *entity.PurchaseRequest {
	return &entity.PurchaseRequest{
		ID:               12,
		RequestKey:       "req-key-12",
		PaymentProfileID: 1,
		UserID:           7,
		CostAmount:       9.99,
		CostCurrency:     "USD",
		Title:            "Premium upgrade",
	}
}

func newTestClient(serverURL string) *Client {
	return NewClient(Config{
		LiveMode:                   true,
		APIBaseURL:                 serverURL,
		WebhookBaseURL:             serverURL,
		HTTPTimeout:                time.Second,
		SubscribeMaxAttempts:       3,
		SubscribeRetryDelay:        time.Millisecond,
		SubscribeRetryDelaySandbox: time.Millisecond,
	})
}

func decodeRequest(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return decoded
}

func dig(t *testing.T, m map[string]interface{}, path ...string) interface{} {
	t.Helper()
	var current interface{} = m
	for _, key := range path {
		asMap, ok := current.(map[string]interface{})
		if !ok {
			t.Fatalf("path %v does not lead to an object", path)
		}
		current, ok = asMap[key]
		if !ok {
			t.Fatalf("key %q missing on path %v", key, path)
		}
	}
	return current
}

func TestChargeApproved(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = decodeRequest(t, r)
		// the transaction API prefixes its JSON with a UTF-8 BOM
		_, _ = w.Write([]byte("\xef\xbb\xbf" + `{
			"transactionResponse": {"responseCode": "1", "transId": "tx-100"},
			"messages": {"resultCode": "Ok", "message": [{"code": "I00001", "text": "Successful."}]}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Charge(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Title: "Premium upgrade"},
		`{"dataDescriptor":"COMMON.ACCEPT.INAPP.PAYMENT","dataValue":"tok-1"}`,
		ChargeInputs{CustomerID: "7", Email: "user@example.com"},
	)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if !result.IsOk() {
		t.Fatal("expected approved charge")
	}
	if result.TransID() != "tx-100" {
		t.Fatalf("unexpected trans id %q", result.TransID())
	}

	if got := dig(t, captured, "createTransactionRequest", "transactionRequest", "amount"); got != "9.99" {
		t.Fatalf("unexpected amount %v", got)
	}
	if got := dig(t, captured, "createTransactionRequest", "transactionRequest", "order", "invoiceNumber"); got != "12" {
		t.Fatalf("unexpected invoice number %v", got)
	}
	if got := dig(t, captured, "createTransactionRequest", "merchantAuthentication", "name"); got != "login-1" {
		t.Fatalf("unexpected merchant login %v", got)
	}
}

func TestChargeDeclinedCarriesErrorTexts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"transactionResponse": {"responseCode": "2", "transId": "tx-101", "errors": [{"errorCode": "2", "errorText": "This transaction has been declined."}]},
			"messages": {"resultCode": "Ok", "message": [{"code": "I00001", "text": "Successful."}]}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Charge(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Title: "Premium upgrade"},
		`{"dataDescriptor":"COMMON.ACCEPT.INAPP.PAYMENT","dataValue":"tok-1"}`,
		ChargeInputs{},
	)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if result.IsOk() {
		t.Fatal("expected declined charge")
	}
	texts := result.TransactionErrors()
	if len(texts) != 1 || !strings.Contains(texts[0], "declined") {
		t.Fatalf("unexpected error texts %v", texts)
	}
}

func TestChargeRejectsNonUSD(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	_, err := client.Charge(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "EUR"},
		`{"dataDescriptor":"d","dataValue":"v"}`,
		ChargeInputs{},
	)
	if !errors.Is(err, ErrCurrencyUnsupported) {
		t.Fatalf("expected currency error, got %v", err)
	}
}

func TestChargeRejectsIncompleteOpaqueData(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	for _, payload := range []string{"not json", `{"dataDescriptor":"d"}`, `{"dataValue":"v"}`} {
		_, err := client.Charge(
			context.Background(),
			testProfile(),
			testPurchaseRequest(),
			Purchase{Cost: 9.99, Currency: "USD"},
			payload,
			ChargeInputs{},
		)
		if !errors.Is(err, ErrOpaqueData) {
			t.Fatalf("payload %q: expected opaque data error, got %v", payload, err)
		}
	}
}

func TestChargeDefaultsNamesForRecurring(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = decodeRequest(t, r)
		_, _ = w.Write([]byte(`{"transactionResponse": {"responseCode": "1", "transId": "tx-1"}, "messages": {"resultCode": "Ok"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Charge(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Recurring: true},
		`{"dataDescriptor":"d","dataValue":"v"}`,
		ChargeInputs{},
	)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}

	if got := dig(t, captured, "createTransactionRequest", "transactionRequest", "billTo", "firstName"); got != "John" {
		t.Fatalf("unexpected default first name %v", got)
	}
	if got := dig(t, captured, "createTransactionRequest", "transactionRequest", "billTo", "lastName"); got != "Appleseed" {
		t.Fatalf("unexpected default last name %v", got)
	}
}

func TestCreateCustomerProfileRequiresTransID(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")
	_, err := client.CreateCustomerProfileFromTransaction(context.Background(), testProfile(), ChargeResult{})
	if !errors.Is(err, ErrMissingTransID) {
		t.Fatalf("expected missing trans id error, got %v", err)
	}
}

func TestSubscribeRetriesOnProfileNotReady(t *testing.T) {
	var invoices []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := decodeRequest(t, r)
		invoice, _ := dig(t, captured, "ARBCreateSubscriptionRequest", "subscription", "order", "invoiceNumber").(string)
		invoices = append(invoices, invoice)

		if len(invoices) < 3 {
			_, _ = w.Write([]byte(`{"messages": {"resultCode": "Error", "message": [{"code": "E00040", "text": "The record cannot be found."}]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"subscriptionId": "sub-9", "messages": {"resultCode": "Ok"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	customerProfile := CreateCustomerProfileResult{BaseResult: newBaseResult(rawResponse{
		Messages:                     messagesBlock{ResultCode: "Ok"},
		CustomerProfileID:            "cp-1",
		CustomerPaymentProfileIDList: []string{"cpp-1"},
	})}

	result, err := client.Subscribe(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Title: "Premium upgrade", Recurring: true, LengthAmount: 1, LengthUnit: "month"},
		customerProfile,
	)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if !result.IsOk() {
		t.Fatal("expected subscription to succeed on the third attempt")
	}
	if result.SubscriptionID() != "sub-9" {
		t.Fatalf("unexpected subscription id %q", result.SubscriptionID())
	}

	want := []string{"12", "12:1", "12:2"}
	if len(invoices) != len(want) {
		t.Fatalf("expected %d attempts, got invoices %v", len(want), invoices)
	}
	for i := range want {
		if invoices[i] != want[i] {
			t.Fatalf("attempt %d: expected invoice %q, got %q", i, want[i], invoices[i])
		}
	}
}

func TestSubscribeGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"messages": {"resultCode": "Error", "message": [{"code": "E00040", "text": "The record cannot be found."}]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Subscribe(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Recurring: true, LengthAmount: 30, LengthUnit: "day"},
		CreateCustomerProfileResult{},
	)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if result.IsOk() {
		t.Fatal("expected subscription to fail")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestSubscribeDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"messages": {"resultCode": "Error", "message": [{"code": "E00027", "text": "The transaction was unsuccessful."}]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Subscribe(
		context.Background(),
		testProfile(),
		testPurchaseRequest(),
		Purchase{Cost: 9.99, Currency: "USD", Recurring: true, LengthAmount: 30, LengthUnit: "day"},
		CreateCustomerProfileResult{},
	)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if result.IsOk() {
		t.Fatal("expected subscription to fail")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestValidateRecurrenceLength(t *testing.T) {
	cases := []struct {
		amount int
		unit   string
		valid  bool
	}{
		{6, "day", false},
		{7, "day", true},
		{365, "day", true},
		{366, "day", false},
		{0, "month", false},
		{1, "month", true},
		{12, "month", true},
		{13, "month", false},
		{1, "week", false},
	}

	for _, c := range cases {
		err := ValidateRecurrenceLength(c.amount, c.unit)
		if c.valid && err != nil {
			t.Fatalf("%d %s: expected valid, got %v", c.amount, c.unit, err)
		}
		if !c.valid && err == nil {
			t.Fatalf("%d %s: expected rejection", c.amount, c.unit)
		}
	}
}

func TestUnSubscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured := decodeRequest(t, r)
		if got := dig(t, captured, "ARBCancelSubscriptionRequest", "subscriptionId"); got != "sub-9" {
			t.Errorf("unexpected subscription id %v", got)
		}
		_, _ = w.Write([]byte(`{"messages": {"resultCode": "Ok"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ok, err := client.UnSubscribe(context.Background(), testProfile(), "sub-9")
	if err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if !ok {
		t.Fatal("expected unsubscribe to succeed")
	}
}

func TestGetTransactionDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"transaction": {
				"transId": "tx-100",
				"transactionType": "authCaptureTransaction",
				"responseCode": 1,
				"authAmount": 9.99,
				"order": {"invoiceNumber": "12", "description": "Premium upgrade"}
			},
			"messages": {"resultCode": "Ok"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GetTransactionDetails(context.Background(), testProfile(), "tx-100")
	if err != nil {
		t.Fatalf("get transaction details failed: %v", err)
	}
	if !result.IsOk() {
		t.Fatal("expected details to be ok")
	}
	if result.InvoiceNumber() != "12" {
		t.Fatalf("unexpected invoice number %q", result.InvoiceNumber())
	}
	if result.AuthAmount() != 9.99 {
		t.Fatalf("unexpected auth amount %v", result.AuthAmount())
	}
}

func TestDoAPIFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetTransactionDetails(context.Background(), testProfile(), "tx-1")
	if err == nil {
		t.Fatal("expected error on http failure")
	}
}
