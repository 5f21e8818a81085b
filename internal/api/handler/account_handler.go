package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// AccountHandler serves account reads and the admin role/premium mutations.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Me handles GET /v1/me.
//
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	acct, err := h.service.Get(c.Request().Context(), subject, subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}

// Get handles GET /v1/accounts/:email.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "Account email"
// @Success      200    {object}  domain.Account
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/accounts/{email} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	acct, err := h.service.Get(c.Request().Context(), subject, c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}

// List handles GET /v1/admin/accounts.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.Account]
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	accounts, err := h.service.List(c.Request().Context(), subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(accounts))
}

// SetRole handles PATCH /v1/admin/accounts/:email/role.
//
// @Summary      Change an account's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string          true  "Account email"
// @Param        body   body      setRoleRequest  true  "New role"
// @Success      200    {object}  domain.Account
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/admin/accounts/{email}/role [patch]
func (h *AccountHandler) SetRole(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var req setRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acct, err := h.service.SetRole(c.Request().Context(), subject, c.Param("email"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}

// SetPremium handles PATCH /v1/admin/accounts/:email/premium.
//
// @Summary      Change an account's premium flag
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string             true  "Account email"
// @Param        body   body      setPremiumRequest  true  "Premium flag"
// @Success      200    {object}  domain.Account
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /v1/admin/accounts/{email}/premium [patch]
func (h *AccountHandler) SetPremium(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var req setPremiumRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	acct, err := h.service.SetPremium(c.Request().Context(), subject, c.Param("email"), *req.Premium)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acct)
}
