package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/ports"
)

type SessionHandler struct {
	service ports.SessionService
}

func NewSessionHandler(service ports.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Exchange handles POST /v1/session.
//
// @Summary      Exchange an identity assertion for a session token
// @Description  Verifies the assertion issued by the identity provider, creates the account on first sign-in and returns a session token.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Identity assertion"
// @Success      200   {object}  sessionResponse
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/session [post]
func (h *SessionHandler) Exchange(c echo.Context) error {
	var req sessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.Exchange(c.Request().Context(), req.Assertion)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, sessionResponse{
		Token:      res.Token,
		ExpiresAt:  res.ExpiresAt,
		Created:    res.Created,
		Account:    res.Account,
		Privileges: res.Privileges,
	})
}
