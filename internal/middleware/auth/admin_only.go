package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/session"
)

// AdminOnly is RequireLogin plus a role check.
func AdminOnly(reg *session.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			sess, ok := reg.Resolve(token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if sess.Role != session.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}
