package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/insanos/auth-server/internal/core/domain"
	"github.com/insanos/auth-server/internal/metrics"
)

const claimsKey = "auth.claims"

// ClaimsResolver turns a bearer token into claims for the current account.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, token string) (*domain.Claims, error)
}

// Auth requires a valid bearer token and stores the resolved claims on the
// request. Every failure yields the same 401 body; the reason is only logged.
func Auth(resolver ClaimsResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := resolve(c, resolver, token, log)
			if err != nil {
				return err
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// OptionalAuth resolves a bearer token when one is present. Requests without
// a token, or with an invalid one, continue unauthenticated.
func OptionalAuth(resolver ClaimsResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request())
			if err == nil {
				if claims, err := resolve(c, resolver, token, log); err == nil {
					c.Set(claimsKey, claims)
				}
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by Auth or OptionalAuth.
func ClaimsFrom(c echo.Context) (*domain.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], domain.TokenType) || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

func resolve(c echo.Context, resolver ClaimsResolver, token string, log zerolog.Logger) (*domain.Claims, error) {
	claims, err := resolver.ResolveClaims(c.Request().Context(), token)
	if err == nil {
		return claims, nil
	}

	reason := rejectionReason(err)
	if reason == "" {
		// Store failure, not a bad token.
		return nil, err
	}

	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().Str("reason", reason).Str("path", c.Path()).Msg("bearer token rejected")
	return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unknown_subject"
	default:
		return ""
	}
}
