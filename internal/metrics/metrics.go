package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwise_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockwise_tokens_issued_total",
		Help: "Access tokens issued (login, registration and refresh).",
	})

	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockwise_tokens_revoked_total",
		Help: "Tokens added to the revocation ledger.",
	})

	TokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockwise_tokens_swept_total",
		Help: "Expired ledger entries removed by the background sweep.",
	})
)
