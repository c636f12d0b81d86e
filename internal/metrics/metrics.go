package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "databank_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "databank_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "databank_login_attempts_total",
		Help: "Login attempts by outcome",
	}, []string{"status"})

	AccountsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "databank_accounts_created_total",
		Help: "Accounts created through signup",
	})

	// ConfirmCodesTotal counts code emails by whether the code was minted or reused.
	ConfirmCodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "databank_confirm_email_codes_total",
		Help: "Confirmation code emails by kind (new, reused)",
	}, []string{"kind"})

	VerifyAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "databank_verify_account_attempts_total",
		Help: "Verify-account submissions by outcome",
	}, []string{"status"})
)
