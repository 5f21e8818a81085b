package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

type PremiumHandler struct {
	service ports.PremiumService
}

func NewPremiumHandler(service ports.PremiumService) *PremiumHandler {
	return &PremiumHandler{service: service}
}

// Request handles POST /v1/profiles/:biodata_id/premium-request.
//
// @Summary      Request premium status for an owned profile
// @Tags         premium
// @Produce      json
// @Security     BearerAuth
// @Param        biodata_id  path      int  true  "Biodata id"
// @Success      201         {object}  domain.PremiumRequest
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      409         {object}  errorResponse
// @Router       /v1/profiles/{biodata_id}/premium-request [post]
func (h *PremiumHandler) Request(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	biodataID, err := biodataParam(c)
	if err != nil {
		return err
	}
	req, err := h.service.Request(c.Request().Context(), subject, biodataID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, req)
}

// List handles GET /v1/admin/premium-requests.
//
// @Summary      List premium requests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending or approved"
// @Success      200     {object}  listResponse[domain.PremiumRequest]
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/premium-requests [get]
func (h *PremiumHandler) List(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var q statusQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	reqs, err := h.service.List(c.Request().Context(), subject, domain.RequestStatus(q.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(reqs))
}

// Approve handles POST /v1/admin/premium-requests/:biodata_id/approve.
//
// @Summary      Approve a premium request
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        biodata_id  path      int  true  "Biodata id"
// @Success      200         {object}  domain.PremiumRequest
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Failure      503         {object}  errorResponse
// @Router       /v1/admin/premium-requests/{biodata_id}/approve [post]
func (h *PremiumHandler) Approve(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	biodataID, err := biodataParam(c)
	if err != nil {
		return err
	}
	req, err := h.service.Approve(c.Request().Context(), subject, biodataID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}
