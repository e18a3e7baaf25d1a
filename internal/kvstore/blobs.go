// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package kvstore implements catalog.Store on top of four JSON documents,
// one per entity kind, held in Valkey or in process memory.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Document keys. Each holds the JSON encoding of one whole collection.
const (
	KeyCategories = "kartela_categories"
	KeyPalettes   = "kartela_palettes"
	KeyBrands     = "kartela_brands"
	KeyWhatsApp   = "kartela_whatsapp_settings"
)

// ErrNoBlob is returned by Blobs.Get when the key has never been written.
var ErrNoBlob = errors.New("blob not found")

// Blobs is a minimal byte-value key store.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ValkeyBlobs stores documents as plain Valkey strings without expiry.
type ValkeyBlobs struct {
	client *redis.Client
	prefix string
}

// NewValkeyBlobs wraps a connected client. prefix is prepended to every key
// and may be empty.
func NewValkeyBlobs(client *redis.Client, prefix string) *ValkeyBlobs {
	return &ValkeyBlobs{client: client, prefix: prefix}
}

// Get returns the stored document or ErrNoBlob.
func (v *ValkeyBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := v.client.Get(ctx, v.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoBlob
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, nil
}

// Set overwrites the stored document.
func (v *ValkeyBlobs) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, v.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// MemoryBlobs keeps documents in process memory. Used for development and tests.
type MemoryBlobs struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBlobs returns an empty in-memory blob store.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{data: make(map[string][]byte)}
}

// Get returns a copy of the stored document or ErrNoBlob.
func (m *MemoryBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNoBlob
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (m *MemoryBlobs) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
