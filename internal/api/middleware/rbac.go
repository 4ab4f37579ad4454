package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/insanos/auth-server/internal/core/service"
	"github.com/insanos/auth-server/internal/metrics"
)

// RequireRoles admits callers holding at least one of roles. It must run after
// Auth or OptionalAuth: callers without claims get 401, callers lacking every
// role get 403.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := ClaimsFrom(c)
			decision := service.Authorize(claims, roles...)

			switch {
			case !decision.Authenticated:
				metrics.AccessDecisionsTotal.WithLabelValues("unauthenticated").Inc()
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			case !decision.Granted:
				metrics.AccessDecisionsTotal.WithLabelValues("forbidden").Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}

			metrics.AccessDecisionsTotal.WithLabelValues("granted").Inc()
			return next(c)
		}
	}
}
