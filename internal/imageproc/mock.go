// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imageproc

import (
	"context"
	"time"

	"kartela/internal/imaging"
	"kartela/internal/metrics"
)

// DefaultMockDelay simulates the latency of a real recolouring service.
const DefaultMockDelay = 2 * time.Second

// MockProcessor returns the input photo unchanged after a delay. It is
// selected only by explicit configuration and never calls the network.
type MockProcessor struct {
	Delay time.Duration
}

// NewMockProcessor creates a mock with the given delay. A negative delay
// disables waiting.
func NewMockProcessor(delay time.Duration) *MockProcessor {
	return &MockProcessor{Delay: delay}
}

// Process waits for the configured delay and echoes the photo back as a
// data URI. It fails only on invalid input or a cancelled context.
func (m *MockProcessor) Process(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	img := req.Image
	if !imaging.IsDataURI(img) {
		img = imaging.EncodedDataURI("", img)
	}
	metrics.RecordImageProcessing("mock", 0)
	return &Result{ProcessedImage: img, Success: true, Mock: true}, nil
}
