// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"time"
)

// Options selects and configures a cache backend.
type Options struct {
	// RedisURL selects the Redis backend when set; empty means in-memory.
	RedisURL string
	// Prefix namespaces Redis keys.
	Prefix string
	// DefaultTTL applies when Set is called with a zero TTL.
	DefaultTTL time.Duration
}

// New creates a Cache from options: Redis when a URL is configured, in-memory
// otherwise.
func New(ctx context.Context, opts Options) (Cache, error) {
	if opts.RedisURL != "" {
		return NewRedis(ctx, opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}
	return NewMemory(opts.DefaultTTL), nil
}
