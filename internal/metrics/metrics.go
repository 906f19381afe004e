// Package metrics declares the Prometheus collectors of the calculators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CalculationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelcap_calculations_completed_total",
			Help: "Total number of capacity calculations completed",
		},
		[]string{"variant"},
	)

	CalculationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelcap_calculations_failed_total",
			Help: "Total number of capacity calculations rejected",
		},
		[]string{"variant", "error_type"},
	)

	EstimatedRooms = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotelcap_estimated_rooms",
			Help:    "Distribution of estimated maximum room counts",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"variant"},
	)

	DatasetSites = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotelcap_dataset_sites",
			Help: "Number of distinct sites in the loaded dataset",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "hotelcap_http_request_duration_seconds",
			Help: "Duration of API requests in seconds",
		},
		[]string{"route", "status"},
	)
)
