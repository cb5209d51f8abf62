package types

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
)

type CreatePurchaseRequest struct {
	PaymentProfileId uint64  `json:"payment_profile_id"`
	UserId           uint64  `json:"user_id"`
	CostAmount       float64 `json:"cost_amount"`
	CostCurrency     string  `json:"cost_currency"`
	Title            string  `json:"title"`
	Recurring        bool    `json:"recurring"`
	LengthAmount     int     `json:"length_amount"`
	LengthUnit       string  `json:"length_unit"`
	ReturnUrl        string  `json:"return_url"`
}

func NewCreatePurchaseRequestFromContext(ctx echo.Context) (*CreatePurchaseRequest, error) {
	var body CreatePurchaseRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.CostCurrency = strings.ToUpper(strings.TrimSpace(body.CostCurrency))
	body.Title = strings.TrimSpace(body.Title)
	body.LengthUnit = strings.ToLower(strings.TrimSpace(body.LengthUnit))
	body.ReturnUrl = strings.TrimSpace(body.ReturnUrl)

	return &body, nil
}

func (r *CreatePurchaseRequest) Validate() error {
	if r.GetPaymentProfileId() == 0 {
		return errors.New("payment_profile_id is required")
	}
	if r.GetCostAmount() <= 0 {
		return errors.New("cost_amount must be > 0")
	}
	if len(strings.TrimSpace(r.GetCostCurrency())) != 3 {
		return errors.New("cost_currency must be 3 letters")
	}
	if strings.TrimSpace(r.GetTitle()) == "" {
		return errors.New("title is required")
	}
	if r.GetRecurring() {
		if r.GetLengthAmount() <= 0 {
			return errors.New("length_amount must be > 0")
		}
		if r.GetLengthUnit() != entity.RecurrenceUnitDay && r.GetLengthUnit() != entity.RecurrenceUnitMonth {
			return errors.New("length_unit must be day or month")
		}
	}
	return nil
}

func (r *CreatePurchaseRequest) GetPaymentProfileId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentProfileId
}

func (r *CreatePurchaseRequest) GetUserId() uint64 {
	if r == nil {
		return 0
	}
	return r.UserId
}

func (r *CreatePurchaseRequest) GetCostAmount() float64 {
	if r == nil {
		return 0
	}
	return r.CostAmount
}

func (r *CreatePurchaseRequest) GetCostCurrency() string {
	if r == nil {
		return ""
	}
	return r.CostCurrency
}

func (r *CreatePurchaseRequest) GetTitle() string {
	if r == nil {
		return ""
	}
	return r.Title
}

func (r *CreatePurchaseRequest) GetRecurring() bool {
	if r == nil {
		return false
	}
	return r.Recurring
}

func (r *CreatePurchaseRequest) GetLengthAmount() int {
	if r == nil {
		return 0
	}
	return r.LengthAmount
}

func (r *CreatePurchaseRequest) GetLengthUnit() string {
	if r == nil {
		return ""
	}
	return r.LengthUnit
}

func (r *CreatePurchaseRequest) GetReturnUrl() string {
	if r == nil {
		return ""
	}
	return r.ReturnUrl
}

type GetPurchaseRequest struct {
	RequestKey string
}

func NewGetPurchaseRequestFromContext(ctx echo.Context) (*GetPurchaseRequest, error) {
	return &GetPurchaseRequest{RequestKey: strings.TrimSpace(ctx.Param("request_key"))}, nil
}

func (r *GetPurchaseRequest) Validate() error {
	if r.GetRequestKey() == "" {
		return errors.New("request_key is required")
	}
	return nil
}

func (r *GetPurchaseRequest) GetRequestKey() string {
	if r == nil {
		return ""
	}
	return r.RequestKey
}

type ChargePurchaseRequest struct {
	RequestKey  string          `json:"-"`
	OpaqueData  json.RawMessage `json:"opaque_data"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phone_number"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	Zip         string          `json:"zip"`
	Country     string          `json:"country"`
}

func NewChargePurchaseRequestFromContext(ctx echo.Context) (*ChargePurchaseRequest, error) {
	var body ChargePurchaseRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.RequestKey = strings.TrimSpace(ctx.Param("request_key"))
	body.FirstName = strings.TrimSpace(body.FirstName)
	body.LastName = strings.TrimSpace(body.LastName)
	body.Email = strings.TrimSpace(body.Email)
	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)
	body.Address = strings.TrimSpace(body.Address)
	body.City = strings.TrimSpace(body.City)
	body.State = strings.TrimSpace(body.State)
	body.Zip = strings.TrimSpace(body.Zip)
	body.Country = strings.TrimSpace(body.Country)

	return &body, nil
}

func (r *ChargePurchaseRequest) Validate() error {
	if r.GetRequestKey() == "" {
		return errors.New("request_key is required")
	}
	if strings.TrimSpace(r.GetOpaqueData()) == "" {
		return errors.New("opaque_data is required")
	}
	return nil
}

func (r *ChargePurchaseRequest) GetRequestKey() string {
	if r == nil {
		return ""
	}
	return r.RequestKey
}

func (r *ChargePurchaseRequest) GetOpaqueData() string {
	if r == nil {
		return ""
	}
	return string(r.OpaqueData)
}

func (r *ChargePurchaseRequest) GetFirstName() string {
	if r == nil {
		return ""
	}
	return r.FirstName
}

func (r *ChargePurchaseRequest) GetLastName() string {
	if r == nil {
		return ""
	}
	return r.LastName
}

func (r *ChargePurchaseRequest) GetEmail() string {
	if r == nil {
		return ""
	}
	return r.Email
}

func (r *ChargePurchaseRequest) GetPhoneNumber() string {
	if r == nil {
		return ""
	}
	return r.PhoneNumber
}

func (r *ChargePurchaseRequest) GetAddress() string {
	if r == nil {
		return ""
	}
	return r.Address
}

func (r *ChargePurchaseRequest) GetCity() string {
	if r == nil {
		return ""
	}
	return r.City
}

func (r *ChargePurchaseRequest) GetState() string {
	if r == nil {
		return ""
	}
	return r.State
}

func (r *ChargePurchaseRequest) GetZip() string {
	if r == nil {
		return ""
	}
	return r.Zip
}

func (r *ChargePurchaseRequest) GetCountry() string {
	if r == nil {
		return ""
	}
	return r.Country
}

type CancelPurchaseRequest struct {
	RequestKey string
}

func NewCancelPurchaseRequestFromContext(ctx echo.Context) (*CancelPurchaseRequest, error) {
	return &CancelPurchaseRequest{RequestKey: strings.TrimSpace(ctx.Param("request_key"))}, nil
}

func (r *CancelPurchaseRequest) Validate() error {
	if r.GetRequestKey() == "" {
		return errors.New("request_key is required")
	}
	return nil
}

func (r *CancelPurchaseRequest) GetRequestKey() string {
	if r == nil {
		return ""
	}
	return r.RequestKey
}

// SignatureHeader is where Authorize.Net puts the HMAC of the webhook body.
const SignatureHeader = "X-ANET-Signature"

type WebhookRequest struct {
	RawBody   []byte
	Signature string
}

func NewWebhookRequestFromContext(ctx echo.Context) (*WebhookRequest, error) {
	rawBody, err := io.ReadAll(ctx.Request().Body)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &WebhookRequest{
		RawBody:   rawBody,
		Signature: strings.TrimSpace(ctx.Request().Header.Get(SignatureHeader)),
	}, nil
}

func (r *WebhookRequest) Validate() error {
	if len(r.GetRawBody()) == 0 {
		return errors.New("body is required")
	}
	return nil
}

func (r *WebhookRequest) GetRawBody() []byte {
	if r == nil {
		return nil
	}
	return r.RawBody
}

func (r *WebhookRequest) GetSignature() string {
	if r == nil {
		return ""
	}
	return r.Signature
}
