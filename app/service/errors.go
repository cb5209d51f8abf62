package service

import "errors"

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrPurchaseNotFound      = errors.New("purchase request not found")
	ErrProfileNotFound       = errors.New("payment profile not found")
	ErrCurrencyUnsupported   = errors.New("currency is not supported")
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrPaymentTokenMissing   = errors.New("payment token is missing")
	ErrChargeDeclined        = errors.New("charge declined")
	ErrNoSubscriberID        = errors.New("no subscriber id found for this purchase request")
	ErrCannotCancel          = errors.New("subscription cannot be cancelled, maybe already cancelled")
	ErrCallbackURLNotSet     = errors.New("callback base url is not configured")
)
