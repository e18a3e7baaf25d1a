// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package webhook announces palette lifecycle events (created, updated,
// deleted) to the palette's configured webhook endpoint.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"kartela/internal/metrics"
	"kartela/internal/models"
)

// DefaultTimeout bounds one notification call.
const DefaultTimeout = 10 * time.Second

// Action names the lifecycle event.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ErrStatus is returned when the endpoint answers outside 2xx.
var ErrStatus = errors.New("webhook returned non-2xx status")

// Payload is the JSON body of a notification.
type Payload struct {
	Action    Action             `json:"action"`
	Palette   PaletteRef         `json:"palette"`
	Timestamp time.Time          `json:"timestamp"`
	Mode      models.WebhookMode `json:"mode"`
}

// PaletteRef identifies the palette an event is about.
type PaletteRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
}

// Notifier posts lifecycle payloads. Dispatch is fire-and-forget; Wait
// blocks until in-flight dispatches finish.
type Notifier struct {
	client *http.Client
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier with its own http.Client. A zero timeout
// selects DefaultTimeout.
func NewNotifier(timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Notify sends one event synchronously. It returns models.ErrWebhookDisabled
// or *models.WebhookURLMissingError without a network call when the palette
// has no usable endpoint.
func (n *Notifier) Notify(ctx context.Context, action Action, p *models.Palette) error {
	endpoint, err := p.Webhook.Endpoint()
	if err != nil {
		return err
	}

	wh := p.Webhook
	wh.Normalize()
	payload, err := json.Marshal(Payload{
		Action:    action,
		Palette:   PaletteRef{ID: p.ID, Name: p.Name, CategoryID: p.CategoryID},
		Timestamp: n.now().UTC(),
		Mode:      wh.Mode,
	})
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.RecordNotification(string(action), err)
		return fmt.Errorf("webhook http: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		metrics.RecordNotification(string(action), err)
		return err
	}

	metrics.RecordNotification(string(action), nil)
	slog.Info("webhook notified", "action", action, "palette", p.ID, "mode", wh.Mode)
	return nil
}

// Dispatch sends an event in the background. Palettes without a usable
// endpoint are skipped silently and failures are only logged, so the
// triggering write never fails because of a notification.
func (n *Notifier) Dispatch(ctx context.Context, action Action, p models.Palette) {
	if _, err := p.Webhook.Endpoint(); err != nil {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx := context.WithoutCancel(ctx)
		if err := n.Notify(ctx, action, &p); err != nil {
			slog.Warn("webhook notification failed", "action", action, "palette", p.ID, "error", err)
		}
	}()
}

// Wait blocks until every dispatched notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
