// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kartela_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Image processing
	ImageProcessingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kartela_image_processing_total",
			Help: "Image processing requests by outcome",
		},
		[]string{"outcome"}, // "success", "timeout", "not_found", "upstream", "config", "unrecognized", "circuit_open", "error", "mock"
	)

	ImageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kartela_image_processing_duration_seconds",
			Help:    "Duration of calls to the image processing webhook",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kartela_webhook_circuit_state",
			Help: "Circuit breaker state per webhook host (0 closed, 1 half-open, 2 open)",
		},
		[]string{"host"},
	)

	// Palette lifecycle notifications
	WebhookNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kartela_webhook_notifications_total",
			Help: "Palette lifecycle notifications by action and result",
		},
		[]string{"action", "result"},
	)

	// Catalog response cache
	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kartela_catalog_cache_hits_total",
			Help: "Public catalog responses served from the cache",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kartela_catalog_cache_misses_total",
			Help: "Public catalog responses rendered from the store",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kartela_uploads_total",
			Help: "Image uploads by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest observes one handled request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordImageProcessing counts one processing outcome and, for real webhook
// calls, its duration.
func RecordImageProcessing(outcome string, d time.Duration) {
	ImageProcessingTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		ImageProcessingDuration.Observe(d.Seconds())
	}
}

// RecordNotification counts one lifecycle notification.
func RecordNotification(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	WebhookNotificationsTotal.WithLabelValues(action, result).Inc()
}
