package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-authorizenet/app/anet"
	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
	"github.com/vibast-solutions/ms-go-authorizenet/config"
)

type createPurchaseRequest interface {
	GetPaymentProfileId() uint64
	GetUserId() uint64
	GetCostAmount() float64
	GetCostCurrency() string
	GetTitle() string
	GetRecurring() bool
	GetLengthAmount() int
	GetLengthUnit() string
	GetReturnUrl() string
}

type chargePurchaseRequest interface {
	GetRequestKey() string
	GetOpaqueData() string
	GetFirstName() string
	GetLastName() string
	GetEmail() string
	GetPhoneNumber() string
	GetAddress() string
	GetCity() string
	GetState() string
	GetZip() string
	GetCountry() string
}

type paymentProfileRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.PaymentProfile, error)
	FindActiveByProvider(ctx context.Context, providerID string) ([]*entity.PaymentProfile, error)
}

type purchaseRequestRepository interface {
	Create(ctx context.Context, request *entity.PurchaseRequest) error
	FindByRequestKey(ctx context.Context, requestKey string) (*entity.PurchaseRequest, error)
	FindByIDAndProfile(ctx context.Context, id uint64, paymentProfileID uint64) (*entity.PurchaseRequest, error)
}

type providerLogRepository interface {
	Create(ctx context.Context, log *entity.ProviderLog) error
	FindByTransactionID(ctx context.Context, transactionID string, logType string, providerID string) ([]*entity.ProviderLog, error)
	FindBySubscriberID(ctx context.Context, subscriberID string, providerID string) (*entity.ProviderLog, error)
	ListByRequestKey(ctx context.Context, requestKey string, providerID string) ([]*entity.ProviderLog, error)
}

type gatewayClient interface {
	Charge(ctx context.Context, profile *entity.PaymentProfile, purchaseRequest *entity.PurchaseRequest, purchase anet.Purchase, opaqueDataJSON string, inputs anet.ChargeInputs) (anet.ChargeResult, error)
	CreateCustomerProfileFromTransaction(ctx context.Context, profile *entity.PaymentProfile, charge anet.ChargeResult) (anet.CreateCustomerProfileResult, error)
	Subscribe(ctx context.Context, profile *entity.PaymentProfile, purchaseRequest *entity.PurchaseRequest, purchase anet.Purchase, customerProfile anet.CreateCustomerProfileResult) (anet.SubscribeResult, error)
	UnSubscribe(ctx context.Context, profile *entity.PaymentProfile, subscriptionID string) (bool, error)
	GetTransactionDetails(ctx context.Context, profile *entity.PaymentProfile, transID string) (anet.GetTransactionDetailsResult, error)
	AssertWebhookExists(ctx context.Context, apiLoginID, transactionKey, callbackURL string) error
}

type PaymentService struct {
	profileRepo  paymentProfileRepository
	purchaseRepo purchaseRequestRepository
	logRepo      providerLogRepository
	gateway      gatewayClient
	anetCfg      config.AuthorizeNetConfig
}

func NewPaymentService(
	profileRepo paymentProfileRepository,
	purchaseRepo purchaseRequestRepository,
	logRepo providerLogRepository,
	gateway gatewayClient,
	anetCfg config.AuthorizeNetConfig,
) *PaymentService {
	return &PaymentService{
		profileRepo:  profileRepo,
		purchaseRepo: purchaseRepo,
		logRepo:      logRepo,
		gateway:      gateway,
		anetCfg:      anetCfg,
	}
}

func (s *PaymentService) CreatePurchase(ctx context.Context, req createPurchaseRequest) (*entity.PurchaseRequest, error) {
	profile, err := s.profileRepo.FindByID(ctx, req.GetPaymentProfileId())
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Active {
		return nil, ErrProfileNotFound
	}

	currency := strings.ToUpper(strings.TrimSpace(req.GetCostCurrency()))
	if currency != "USD" {
		return nil, fmt.Errorf("%w: %s", ErrCurrencyUnsupported, currency)
	}

	request := &entity.PurchaseRequest{
		RequestKey:       uuid.NewString(),
		PaymentProfileID: profile.ID,
		UserID:           req.GetUserId(),
		CostAmount:       req.GetCostAmount(),
		CostCurrency:     currency,
		Title:            strings.TrimSpace(req.GetTitle()),
		Recurring:        req.GetRecurring(),
		ReturnURL:        strings.TrimSpace(req.GetReturnUrl()),
		CreatedAt:        time.Now().UTC(),
	}

	if request.Recurring {
		lengthAmount := req.GetLengthAmount()
		lengthUnit := strings.ToLower(strings.TrimSpace(req.GetLengthUnit()))
		if err := anet.ValidateRecurrenceLength(lengthAmount, lengthUnit); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		request.LengthAmount = &lengthAmount
		request.LengthUnit = &lengthUnit
	}

	if err := s.purchaseRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func (s *PaymentService) GetPurchase(ctx context.Context, requestKey string) (*entity.PurchaseRequest, error) {
	request, err := s.purchaseRepo.FindByRequestKey(ctx, strings.TrimSpace(requestKey))
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrPurchaseNotFound
	}
	return request, nil
}

// GetPurchaseProfile resolves the merchant profile a purchase was created
// under. Clients need it to tokenize card data before charging.
func (s *PaymentService) GetPurchaseProfile(ctx context.Context, purchaseRequest *entity.PurchaseRequest) (*entity.PaymentProfile, error) {
	profile, err := s.profileRepo.FindByID(ctx, purchaseRequest.PaymentProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Active {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// ChargeOutcome is what a successful charge reports back to the caller.
// SubscriptionID is only set when the purchase is recurring and the
// best-effort subscription phase succeeded.
type ChargeOutcome struct {
	PurchaseRequest *entity.PurchaseRequest
	TransactionID   string
	SubscriptionID  string
	ReturnURL       string
}

func (s *PaymentService) ProcessPayment(ctx context.Context, req chargePurchaseRequest) (*ChargeOutcome, error) {
	purchaseRequest, err := s.GetPurchase(ctx, req.GetRequestKey())
	if err != nil {
		return nil, err
	}

	profile, err := s.GetPurchaseProfile(ctx, purchaseRequest)
	if err != nil {
		return nil, err
	}

	opaqueDataJSON := strings.TrimSpace(req.GetOpaqueData())
	if opaqueDataJSON == "" {
		return nil, ErrPaymentTokenMissing
	}

	inputs := anet.ChargeInputs{
		CustomerID:  formatUserID(purchaseRequest.UserID),
		Email:       strings.TrimSpace(req.GetEmail()),
		FirstName:   strings.TrimSpace(req.GetFirstName()),
		LastName:    strings.TrimSpace(req.GetLastName()),
		PhoneNumber: strings.TrimSpace(req.GetPhoneNumber()),
		Address:     strings.TrimSpace(req.GetAddress()),
		City:        strings.TrimSpace(req.GetCity()),
		State:       strings.TrimSpace(req.GetState()),
		Zip:         strings.TrimSpace(req.GetZip()),
		Country:     strings.TrimSpace(req.GetCountry()),
	}
	if err := validateRequiredInputs(profile, inputs); err != nil {
		return nil, err
	}

	purchase := buildPurchase(purchaseRequest)

	chargeResult, err := s.gateway.Charge(ctx, profile, purchaseRequest, purchase, opaqueDataJSON, inputs)
	if err != nil {
		return nil, err
	}

	chargeOk := chargeResult.IsOk()
	chargeLogType := entity.LogTypeError
	if chargeOk {
		chargeLogType = entity.LogTypeInfo
	}

	// every attempt is auditable, even when the caller sees an error
	if err := s.logRepo.Create(ctx, &entity.ProviderLog{
		PurchaseRequestKey: purchaseRequest.RequestKey,
		ProviderID:         s.anetCfg.ProviderID,
		TransactionID:      chargeResult.TransID(),
		LogType:            chargeLogType,
		LogMessage:         "Authorize.Net charge " + chargeLogType,
		Details:            map[string]interface{}{"charge": chargeResult.Details()},
		LogDate:            time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	if !chargeOk {
		if texts := chargeResult.TransactionErrors(); len(texts) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrChargeDeclined, strings.Join(texts, "; "))
		}
		return nil, ErrChargeDeclined
	}

	outcome := &ChargeOutcome{
		PurchaseRequest: purchaseRequest,
		TransactionID:   chargeResult.TransID(),
		ReturnURL:       purchaseRequest.ReturnURL,
	}

	if purchaseRequest.Recurring {
		subscribe := s.subscribeAfterCharge(ctx, profile, purchaseRequest, purchase, chargeResult)

		subscribeLogType := entity.LogTypeError
		var subscriberID *string
		if subscribe.Err == nil && subscribe.SubscriptionID != "" {
			subscribeLogType = entity.LogTypeInfo
			subscriberID = &subscribe.SubscriptionID
			outcome.SubscriptionID = subscribe.SubscriptionID
		}
		if subscribe.Err != nil {
			subscribe.Details["error"] = subscribe.Err.Error()
		}

		if err := s.logRepo.Create(ctx, &entity.ProviderLog{
			PurchaseRequestKey: purchaseRequest.RequestKey,
			ProviderID:         s.anetCfg.ProviderID,
			TransactionID:      chargeResult.TransID(),
			LogType:            subscribeLogType,
			LogMessage:         "Authorize.Net subscribe " + subscribeLogType,
			Details:            subscribe.Details,
			SubscriberID:       subscriberID,
			LogDate:            time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// subscribeOutcome is the explicit result of the best-effort subscription
// phase. The charge has already been captured when this phase runs, so its
// failures are recorded and never surfaced to the payer.
type subscribeOutcome struct {
	SubscriptionID string
	Details        map[string]interface{}
	Err            error
}

func (s *PaymentService) subscribeAfterCharge(
	ctx context.Context,
	profile *entity.PaymentProfile,
	purchaseRequest *entity.PurchaseRequest,
	purchase anet.Purchase,
	chargeResult anet.ChargeResult,
) subscribeOutcome {
	outcome := subscribeOutcome{Details: map[string]interface{}{}}

	customerProfile, err := s.gateway.CreateCustomerProfileFromTransaction(ctx, profile, chargeResult)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Details["customerProfile"] = customerProfile.Details()

	if !customerProfile.IsOk() {
		return outcome
	}

	subscribeResult, err := s.gateway.Subscribe(ctx, profile, purchaseRequest, purchase, customerProfile)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Details["subscribe"] = subscribeResult.Details()

	if subscribeResult.IsOk() {
		outcome.SubscriptionID = subscribeResult.SubscriptionID()
	}

	return outcome
}

func (s *PaymentService) ProcessCancellation(ctx context.Context, requestKey string) error {
	purchaseRequest, err := s.GetPurchase(ctx, requestKey)
	if err != nil {
		return err
	}

	profile, err := s.profileRepo.FindByID(ctx, purchaseRequest.PaymentProfileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	logs, err := s.logRepo.ListByRequestKey(ctx, purchaseRequest.RequestKey, s.anetCfg.ProviderID)
	if err != nil {
		return err
	}

	subscriptionID := ""
	for _, log := range logs {
		if log.SubscriberID != nil && *log.SubscriberID != "" {
			subscriptionID = *log.SubscriberID
			break
		}
	}
	if subscriptionID == "" {
		return ErrNoSubscriberID
	}

	unSubscribed, err := s.gateway.UnSubscribe(ctx, profile, subscriptionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCancel, err)
	}
	if !unSubscribed {
		return ErrCannotCancel
	}

	return nil
}

// EnsureWebhooks asserts the callback webhook registration for every
// active profile. It runs after configuration changes and periodically as
// a worker job.
func (s *PaymentService) EnsureWebhooks(ctx context.Context) error {
	callbackURL := strings.TrimSpace(s.anetCfg.CallbackBaseURL)
	if callbackURL == "" {
		return ErrCallbackURLNotSet
	}

	profiles, err := s.profileRepo.FindActiveByProvider(ctx, s.anetCfg.ProviderID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, profile := range profiles {
		if err := s.gateway.AssertWebhookExists(ctx, profile.APILoginID, profile.TransactionKey, callbackURL); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func validateRequiredInputs(profile *entity.PaymentProfile, inputs anet.ChargeInputs) error {
	required := map[string]string{}
	if profile.RequireNames {
		required["first_name"] = inputs.FirstName
		required["last_name"] = inputs.LastName
	}
	if profile.RequireEmail {
		required["email"] = inputs.Email
	}
	if profile.RequireAddress {
		required["address"] = inputs.Address
		required["city"] = inputs.City
		required["state"] = inputs.State
		required["zip"] = inputs.Zip
		required["country"] = inputs.Country
	}

	for _, field := range []string{"first_name", "last_name", "email", "address", "city", "state", "zip", "country"} {
		value, ok := required[field]
		if !ok {
			continue
		}
		if value == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, field)
		}
	}

	return nil
}

func buildPurchase(purchaseRequest *entity.PurchaseRequest) anet.Purchase {
	purchase := anet.Purchase{
		Cost:      purchaseRequest.CostAmount,
		Currency:  purchaseRequest.CostCurrency,
		Title:     purchaseRequest.Title,
		Recurring: purchaseRequest.Recurring,
		ReturnURL: purchaseRequest.ReturnURL,
	}
	if purchaseRequest.LengthAmount != nil {
		purchase.LengthAmount = *purchaseRequest.LengthAmount
	}
	if purchaseRequest.LengthUnit != nil {
		purchase.LengthUnit = *purchaseRequest.LengthUnit
	}
	return purchase
}

func formatUserID(userID uint64) string {
	if userID == 0 {
		return ""
	}
	return fmt.Sprintf("%d", userID)
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
