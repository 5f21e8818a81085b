package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var kindStatus = map[string]int{
	domain.KindIdentityInvalid:    http.StatusUnauthorized,
	domain.KindUnauthenticated:    http.StatusUnauthorized,
	domain.KindForbidden:          http.StatusForbidden,
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindDuplicateRequest:   http.StatusConflict,
	domain.KindInvalidTarget:      http.StatusUnprocessableEntity,
	domain.KindInvalidInput:       http.StatusUnprocessableEntity,
	domain.KindPaymentRequired:    http.StatusPaymentRequired,
	domain.KindStorageUnavailable: http.StatusServiceUnavailable,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to HTTP status codes by their kind.
//   - Logs unexpected and storage errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "kind": "<Kind>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, rate limiter, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	kind := domain.KindOf(err)
	code, known := kindStatus[kind]
	if !known {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: domain.KindInternal}
	}

	if kind == domain.KindStorageUnavailable {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("storage unavailable")
		return code, errorResponse{Error: "storage temporarily unavailable", Kind: kind}
	}
	if kind == domain.KindIdentityInvalid {
		return code, errorResponse{Error: domain.ErrIdentityInvalid.Error(), Kind: kind}
	}
	return code, errorResponse{Error: err.Error(), Kind: kind}
}
