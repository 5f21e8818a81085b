package middleware

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/pkg/sessiontoken"
)

// ContextKeySubject is the echo context key holding the authenticated email.
const ContextKeySubject = "subject"

// TokenParser validates session tokens.
type TokenParser interface {
	Parse(token string) (*sessiontoken.Claims, error)
}

// Auth validates the bearer session token and stores its subject in the
// context. Nothing else from the token is trusted: privileges are resolved
// per request from the account record.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
			}

			claims, err := parser.Parse(parts[1])
			if err != nil || claims.Subject == "" {
				return fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthenticated)
			}

			c.Set(ContextKeySubject, claims.Subject)
			return next(c)
		}
	}
}
