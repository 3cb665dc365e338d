package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMustRegisterOnFreshRegistry(t *testing.T) {
	assert.NotPanics(t, func() { MustRegister(prometheus.NewRegistry()) })
}

func TestObservers(t *testing.T) {
	before := testutil.ToFloat64(LoginsTotal.WithLabelValues("user", "failure"))
	ObserveLogin("user", false)
	assert.Equal(t, before+1, testutil.ToFloat64(LoginsTotal.WithLabelValues("user", "failure")))

	amountBefore := testutil.ToFloat64(DonationAmountTotal)
	ObserveDonation("qris", decimal.NewFromInt(100000))
	assert.Equal(t, amountBefore+100000, testutil.ToFloat64(DonationAmountTotal))

	reviewsBefore := testutil.ToFloat64(ReviewsTotal.WithLabelValues("campaign", "rejected"))
	ObserveReview("campaign", "rejected")
	assert.Equal(t, reviewsBefore+1, testutil.ToFloat64(ReviewsTotal.WithLabelValues("campaign", "rejected")))
}
