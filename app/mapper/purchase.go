package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
	"github.com/vibast-solutions/ms-go-authorizenet/app/types"
)

func PurchaseToResponse(item *entity.PurchaseRequest) *types.Purchase {
	if item == nil {
		return nil
	}

	return &types.Purchase{
		Id:               item.ID,
		RequestKey:       item.RequestKey,
		PaymentProfileId: item.PaymentProfileID,
		UserId:           item.UserID,
		CostAmount:       item.CostAmount,
		CostCurrency:     item.CostCurrency,
		Title:            item.Title,
		Recurring:        item.Recurring,
		LengthAmount:     derefInt(item.LengthAmount),
		LengthUnit:       derefString(item.LengthUnit),
		ReturnUrl:        item.ReturnURL,
		CreatedAt:        item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ProfileToPaymentForm(profile *entity.PaymentProfile) *types.PaymentForm {
	if profile == nil {
		return nil
	}

	return &types.PaymentForm{
		ApiLoginId:      profile.APILoginID,
		PublicClientKey: profile.PublicClientKey,
		AcceptedCards:   profile.AcceptedCards,
		RequireNames:    profile.RequireNames,
		RequireEmail:    profile.RequireEmail,
		RequireAddress:  profile.RequireAddress,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
