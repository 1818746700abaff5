package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntrySubmitDuration tracks the latency of entry submissions
	EntrySubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prizejet_entry_submit_duration_seconds",
			Help: "Duration of entry submission requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"status"}, // accepted, duplicate, rejected, rate_limited, error
	)

	// EntriesTotal counts accepted entries, split by how they arrived
	EntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizejet_entries_total",
			Help: "Total accepted campaign entries",
		},
		[]string{"referred"}, // yes or no
	)

	// ReferralCreditsTotal counts points credited to referrers
	ReferralCreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizejet_referral_credits_total",
			Help: "Total referral point credits applied to referrers",
		},
	)

	// LandingPageViews counts public landing page loads by campaign slug
	LandingPageViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizejet_landing_page_views_total",
			Help: "Total public landing page views",
		},
		[]string{"cache"}, // hit or miss
	)
)

// RecordEntrySubmit records the outcome and duration of a submission request
func RecordEntrySubmit(status string, duration float64) {
	EntrySubmitDuration.WithLabelValues(status).Observe(duration)
}

// RecordEntryAccepted counts an accepted entry
func RecordEntryAccepted(referred bool) {
	label := "no"
	if referred {
		label = "yes"
	}
	EntriesTotal.WithLabelValues(label).Inc()
}
