// Package usagelog records per-attempt credential usage for offline
// analysis and operational dashboards.
package usagelog

import (
	"context"
	"time"
)

// Record describes one call attempt made with one credential.
type Record struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	KeyLabel    string    `json:"key_label"`
	Attempt     int       `json:"attempt"`
	Success     bool      `json:"success"`
	RateLimited bool      `json:"rate_limited"`
	Err         string    `json:"error,omitempty"`
	At          time.Time `json:"at"`
}

// Sink consumes usage records. Implementations must be safe for concurrent
// use; writes happen off the caller's hot path and their errors are logged,
// never propagated.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) Write(context.Context, Record) error { return nil }
func (NopSink) Close() error                        { return nil }
