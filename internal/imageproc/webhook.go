// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imageproc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"kartela/internal/catalog"
	"kartela/internal/metrics"
)

const (
	// DefaultTimeout bounds one webhook call. Recolouring is slow, so this
	// is longer than the timeout used for notification calls.
	DefaultTimeout = 30 * time.Second

	// maxReplySize caps the webhook reply read into memory.
	maxReplySize = 32 << 20
)

// errClientStatus marks non-404 4xx answers. They do not trip the breaker.
var errClientStatus = errors.New("webhook rejected request")

// WebhookClient processes images by calling the palette's webhook.
type WebhookClient struct {
	finder PaletteFinder
	client *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// NewWebhookClient creates a client with a dedicated http.Client. A zero
// timeout selects DefaultTimeout.
func NewWebhookClient(finder PaletteFinder, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookClient{
		finder:   finder,
		client:   &http.Client{Timeout: timeout},
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// Process resolves the palette owning req.ItemID, POSTs the photo to its
// active webhook endpoint and normalises the reply. Configuration problems
// are reported before any network call is made.
func (c *WebhookClient) Process(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	palette, err := c.finder.FindPaletteByItem(ctx, req.ItemID)
	if errors.Is(err, catalog.ErrNotFound) {
		metrics.RecordImageProcessing("config", 0)
		return nil, &ConfigError{ItemID: req.ItemID, Err: errPaletteNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("find palette by item: %w", err)
	}

	if !palette.PhotoUploadEnabled {
		metrics.RecordImageProcessing("config", 0)
		return nil, ErrPhotoUploadDisabled
	}

	endpoint, err := palette.Webhook.Endpoint()
	if err != nil {
		metrics.RecordImageProcessing("config", 0)
		return nil, &ConfigError{ItemID: req.ItemID, Err: err}
	}

	item, _ := palette.FindItem(req.ItemID)
	payload, err := json.Marshal(buildRequest(req, palette, item))
	if err != nil {
		return nil, fmt.Errorf("webhook marshal: %w", err)
	}

	start := time.Now()
	body, err := c.breaker(endpoint).Execute(func() ([]byte, error) {
		return c.post(ctx, endpoint, payload)
	})
	elapsed := time.Since(start)
	if err != nil {
		err = classify(err)
		metrics.RecordImageProcessing(outcome(err), elapsed)
		slog.Warn("image processing failed",
			"palette", palette.ID, "item", req.ItemID, "mode", palette.Webhook.Mode, "error", err)
		return nil, err
	}

	image, err := Normalize(body)
	if err != nil {
		metrics.RecordImageProcessing("unrecognized", elapsed)
		return nil, &ProcessingError{Cause: err}
	}

	metrics.RecordImageProcessing("success", elapsed)
	slog.Info("image processed", "palette", palette.ID, "item", req.ItemID, "duration", elapsed)
	return &Result{ProcessedImage: image, Success: true}, nil
}

// post performs one webhook call and maps the HTTP status.
func (c *WebhookClient) post(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("webhook read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrEndpointNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w (status %d)", ErrUpstream, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w (status %d)", errClientStatus, resp.StatusCode)
	}
	return body, nil
}

// breaker returns the circuit breaker for the endpoint's host.
func (c *WebhookClient) breaker(endpoint string) *gobreaker.CircuitBreaker[[]byte] {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Host
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[host]; ok {
		return cb
	}

	metrics.CircuitState.WithLabelValues(host).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrEndpointNotFound) ||
				errors.Is(err, errClientStatus) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("webhook circuit state changed", "host", name, "from", from.String(), "to", to.String())
			metrics.CircuitState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	c.breakers[host] = cb
	return cb
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// classify maps transport errors onto the failure taxonomy.
func classify(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, ErrEndpointNotFound), errors.Is(err, ErrUpstream):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return &ProcessingError{Cause: err}
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEndpointNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	default:
		return "error"
	}
}

// Ensure catalog stores satisfy PaletteFinder.
var _ PaletteFinder = (catalog.Store)(nil)
