// Package metrics exposes the prometheus collectors of the API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
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
			Name: "bandhub_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	SignupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandhub_signups_total",
			Help: "Total number of signup attempts.",
		},
		[]string{"result"},
	)

	CampaignsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bandhub_campaigns_sent_total",
			Help: "Total number of email campaigns sent.",
		},
	)

	EmailsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandhub_emails_sent_total",
			Help: "Total number of outbound emails by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

var registerOnce sync.Once

// MustRegister registers every collector with the default registry. Safe to
// call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			LoginsTotal,
			SignupsTotal,
			CampaignsSentTotal,
			EmailsSentTotal,
		)
	})
}

// Result labels a success or failure outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
