package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// RequireAdmin rejects the request unless the authenticated subject holds
// the admin role right now, as read by the resolver. Must run after Auth.
func RequireAdmin(resolver ports.RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject, _ := c.Get(ContextKeySubject).(string)
			if subject == "" {
				return domain.ErrUnauthenticated
			}
			if err := resolver.RequireAdmin(c.Request().Context(), subject); err != nil {
				return err
			}
			return next(c)
		}
	}
}
