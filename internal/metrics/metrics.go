// Package metrics defines and registers the custom Prometheus metrics of the
// auth service. HTTP request metrics come from echoprometheus; everything
// here describes authentication outcomes.
//
// Metrics are registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "locked"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts created accounts.
// Label:
//   - roles: comma separated resolved role set (e.g. "ROLE_ADMIN,ROLE_USER")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered users, by resolved role set.",
	},
	[]string{"roles"},
)

// TokenRejectionsTotal counts presented tokens that failed validation.
// Label:
//   - reason: "malformed", "bad_signature", "expired" or "unknown_subject"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// AccessDecisionsTotal counts role checks on gated routes.
// Label:
//   - result: "granted", "forbidden" or "unauthenticated"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of role-gated access decisions, by result.",
	},
	[]string{"result"},
)
