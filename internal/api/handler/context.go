package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/api/middleware"
	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// ctxSubject returns the authenticated email stored by the Auth middleware.
// An empty subject means the route was mounted without Auth.
func ctxSubject(c echo.Context) (string, error) {
	subject, _ := c.Get(middleware.ContextKeySubject).(string)
	if subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return subject, nil
}

func biodataParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("biodata_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid biodata id %q", c.Param("biodata_id")))
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
