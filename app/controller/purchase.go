package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-authorizenet/app/entity"
	"github.com/vibast-solutions/ms-go-authorizenet/app/factory"
	"github.com/vibast-solutions/ms-go-authorizenet/app/mapper"
	"github.com/vibast-solutions/ms-go-authorizenet/app/service"
	"github.com/vibast-solutions/ms-go-authorizenet/app/types"
)

type PurchaseController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPurchaseController(paymentService *service.PaymentService) *PurchaseController {
	return &PurchaseController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("purchases-controller"),
	}
}

func (c *PurchaseController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PurchaseController) CreatePurchase(ctx echo.Context) error {
	req, err := types.NewCreatePurchaseRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.CreatePurchase(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrCurrencyUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrProfileNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment profile not found")
		default:
			c.logger.WithError(err).Error("Create purchase failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.PurchaseEnvelopeResponse{Purchase: mapper.PurchaseToResponse(item)})
}

func (c *PurchaseController) GetPurchase(ctx echo.Context) error {
	req, err := types.NewGetPurchaseRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetPurchase(ctx.Request().Context(), req.GetRequestKey())
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "purchase not found")
		}
		c.logger.WithError(err).Error("Get purchase failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	profile, err := c.paymentService.GetPurchaseProfile(ctx.Request().Context(), item)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment profile not found")
		}
		c.logger.WithError(err).Error("Get purchase profile failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PurchaseEnvelopeResponse{
		Purchase:    mapper.PurchaseToResponse(item),
		PaymentForm: mapper.ProfileToPaymentForm(profile),
	})
}

func (c *PurchaseController) ChargePurchase(ctx echo.Context) error {
	req, err := types.NewChargePurchaseRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	outcome, err := c.paymentService.ProcessPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPurchaseNotFound):
			return c.writeError(ctx, http.StatusNotFound, "purchase not found")
		case errors.Is(err, service.ErrProfileNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment profile not found")
		case errors.Is(err, service.ErrPaymentTokenMissing),
			errors.Is(err, service.ErrMissingRequiredField),
			errors.Is(err, service.ErrChargeDeclined):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			c.logger.WithError(err).Error("Charge purchase failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.ChargeResponse{
		Purchase:       mapper.PurchaseToResponse(outcome.PurchaseRequest),
		TransactionId:  outcome.TransactionID,
		SubscriptionId: outcome.SubscriptionID,
		ReturnUrl:      outcome.ReturnURL,
	})
}

func (c *PurchaseController) CancelPurchase(ctx echo.Context) error {
	req, err := types.NewCancelPurchaseRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.paymentService.ProcessCancellation(ctx.Request().Context(), req.GetRequestKey())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPurchaseNotFound):
			return c.writeError(ctx, http.StatusNotFound, "purchase not found")
		case errors.Is(err, service.ErrNoSubscriberID):
			return c.writeError(ctx, http.StatusBadRequest, "no subscriber id found")
		case errors.Is(err, service.ErrCannotCancel):
			// the raw provider failure stays in the logs
			return c.writeError(ctx, http.StatusBadRequest, "subscription cannot be cancelled, possibly already cancelled")
		default:
			c.logger.WithError(err).Error("Cancel purchase failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Subscription cancelled"})
}

func (c *PurchaseController) HandleWebhook(ctx echo.Context) error {
	req, err := types.NewWebhookRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	state, err := c.paymentService.HandleCallback(ctx.Request().Context(), req.GetRawBody(), req.GetSignature())
	if err != nil {
		c.logger.WithError(err).Error("Handle webhook failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	if state.LogType == entity.LogTypeError {
		factory.LoggerWithContext(c.logger, ctx).
			WithField("event_type", state.EventType).
			WithField("transaction_id", state.TransactionID).
			Error(state.LogMessage)
	}

	return ctx.JSON(state.HTTPStatus, &types.MessageResponse{Message: "Webhook processed"})
}

func (c *PurchaseController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
