package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// PaymentHandler records charges for contact disclosure requests. Confirm
// is called once the payment processor reports the charge as captured.
type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Authorize handles POST /v1/payments.
//
// @Summary      Authorize a contact request payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  domain.Payment
// @Failure      401  {object}  errorResponse
// @Router       /v1/payments [post]
func (h *PaymentHandler) Authorize(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	p, err := h.service.Authorize(c.Request().Context(), subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Confirm handles POST /v1/payments/:ref/confirm.
//
// @Summary      Confirm a payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        ref  path      string  true  "Payment reference"
// @Success      200  {object}  domain.Payment
// @Failure      402  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/payments/{ref}/confirm [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	p, err := h.service.Confirm(c.Request().Context(), subject, c.Param("ref"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
