package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

type DisclosureHandler struct {
	service ports.DisclosureService
}

func NewDisclosureHandler(service ports.DisclosureService) *DisclosureHandler {
	return &DisclosureHandler{service: service}
}

// Create handles POST /v1/disclosures.
//
// @Summary      Request contact disclosure for a profile
// @Tags         disclosures
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDisclosureRequest  true  "Profile and confirmed payment"
// @Success      201   {object}  domain.DisclosureRequest
// @Failure      402   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/disclosures [post]
func (h *DisclosureHandler) Create(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var req createDisclosureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.service.Create(c.Request().Context(), subject, req.BiodataID, req.PaymentRef)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// ListMine handles GET /v1/disclosures.
//
// @Summary      List my disclosure requests
// @Tags         disclosures
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.DisclosureRequest]
// @Router       /v1/disclosures [get]
func (h *DisclosureHandler) ListMine(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	reqs, err := h.service.ListMine(c.Request().Context(), subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(reqs))
}

// Delete handles DELETE /v1/disclosures/:id.
//
// @Summary      Withdraw a disclosure request
// @Tags         disclosures
// @Security     BearerAuth
// @Param        id  path  string  true  "Request id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/disclosures/{id} [delete]
func (h *DisclosureHandler) Delete(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), subject, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListForAdmin handles GET /v1/admin/disclosures.
//
// @Summary      List disclosure requests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "pending or approved"
// @Success      200     {object}  listResponse[domain.DisclosureRequest]
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/disclosures [get]
func (h *DisclosureHandler) ListForAdmin(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	var q statusQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	reqs, err := h.service.ListForAdmin(c.Request().Context(), subject, ports.DisclosureFilter{Status: domain.RequestStatus(q.Status)})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(reqs))
}

// Approve handles POST /v1/admin/disclosures/:id/approve.
//
// @Summary      Approve a disclosure request
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Request id"
// @Success      200  {object}  domain.DisclosureRequest
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/disclosures/{id}/approve [post]
func (h *DisclosureHandler) Approve(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	approved, err := h.service.Approve(c.Request().Context(), subject, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, approved)
}
