package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/ports"
)

type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Get handles GET /v1/profiles/:biodata_id/contact.
//
// @Summary      Reveal profile contact details
// @Description  Returns contact fields when the caller owns the profile, holds premium, or has an approved disclosure request.
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        biodata_id  path      int  true  "Biodata id"
// @Success      200         {object}  domain.Contact
// @Failure      403         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/profiles/{biodata_id}/contact [get]
func (h *ContactHandler) Get(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	biodataID, err := biodataParam(c)
	if err != nil {
		return err
	}
	contact, err := h.service.Contact(c.Request().Context(), subject, biodataID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// Visibility handles GET /v1/contacts/visibility?ids=1,2,3.
//
// @Summary      Batch contact visibility
// @Tags         contacts
// @Produce      json
// @Security     BearerAuth
// @Param        ids  query     string  true  "Comma separated biodata ids (at most 100)"
// @Success      200  {object}  visibilityResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/contacts/visibility [get]
func (h *ContactHandler) Visibility(c echo.Context) error {
	subject, err := ctxSubject(c)
	if err != nil {
		return err
	}
	ids, err := parseIDs(c.QueryParam("ids"))
	if err != nil {
		return err
	}

	res, err := h.service.Visibility(c.Request().Context(), subject, ids)
	if err != nil {
		return err
	}
	items := make([]visibilityItem, 0, len(res))
	for _, v := range res {
		items = append(items, visibilityItem{BiodataID: v.BiodataID, Visible: v.Visible})
	}
	return c.JSON(http.StatusOK, visibilityResponse{Items: items})
}

func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "ids must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
