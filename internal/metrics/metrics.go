package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by principal kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	DonationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donations_total",
			Help: "Committed donations by payment method.",
		},
		[]string{"method"},
	)

	DonationAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_amount_total",
			Help: "Sum of committed donation amounts.",
		},
	)

	ReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_total",
			Help: "Admin review decisions by entity.",
		},
		[]string{"entity", "decision"},
	)
)

// MustRegister registers every collector on reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		LoginsTotal,
		DonationsTotal,
		DonationAmountTotal,
		ReviewsTotal,
	)
}

func ObserveLogin(kind string, ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	LoginsTotal.WithLabelValues(kind, outcome).Inc()
}

func ObserveDonation(method string, amount decimal.Decimal) {
	DonationsTotal.WithLabelValues(method).Inc()
	f, _ := amount.Float64()
	DonationAmountTotal.Add(f)
}

func ObserveReview(entity, decision string) {
	ReviewsTotal.WithLabelValues(entity, decision).Inc()
}
