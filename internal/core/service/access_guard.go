package service

import (
	"slices"

	"github.com/insanos/auth-server/internal/core/domain"
)

// Authorize decides whether claims satisfy any of the required roles.
// nil claims mean the caller is not authenticated. An empty required set
// admits every authenticated caller.
func Authorize(claims *domain.Claims, required ...string) domain.AuthorizationDecision {
	if claims == nil {
		return domain.AuthorizationDecision{Missing: slices.Clone(required)}
	}

	decision := domain.AuthorizationDecision{Authenticated: true}
	if len(required) == 0 {
		decision.Granted = true
		return decision
	}

	for _, role := range required {
		if slices.Contains(claims.Roles, role) {
			if !decision.Granted {
				decision.Granted = true
				decision.Matched = role
			}
			continue
		}
		decision.Missing = append(decision.Missing, role)
	}
	return decision
}
