package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/insanos/auth-server/internal/api/middleware"
	"github.com/insanos/auth-server/internal/core/domain"
)

// currentClaims returns the claims placed on the request by the auth
// middleware, or a 401 when the request is unauthenticated.
func currentClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return claims, nil
}
