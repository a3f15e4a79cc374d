package metrics

import (
	"sync/atomic"
	"time"
)

// Collector provides simple built-in metrics collection with no external dependencies
type Collector struct {
	loader    LoaderMetrics
	startTime time.Time
}

// LoaderMetrics tracks loader-level counters. All fields are manipulated
// atomically; read them through Snapshot.
type LoaderMetrics struct {
	// Session lifecycle
	SessionsStarted       int64 `json:"sessions_started"`
	ActiveSessions        int64 `json:"active_sessions"`
	MaxConcurrentSessions int64 `json:"max_concurrent_sessions"`

	// Attempt dispatch and classification
	Dispatches            int64 `json:"dispatches"`
	Successes             int64 `json:"successes"`
	SignalFailures        int64 `json:"signal_failures"`
	EmptyContentFailures  int64 `json:"empty_content_failures"`
	BlockedIntrospections int64 `json:"blocked_introspections"`

	// Terminal failures and recovery
	Exhaustions   int64 `json:"exhaustions"`
	ManualRetries int64 `json:"manual_retries"`

	// Binding resolution
	BindingNotFound int64 `json:"binding_not_found"`

	// Uptime
	StartTime time.Time     `json:"start_time"`
	Uptime    time.Duration `json:"uptime"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	now := time.Now()
	c := &Collector{startTime: now}
	c.loader.StartTime = now
	return c
}

// SessionStarted records a new session creation
func (c *Collector) SessionStarted() {
	atomic.AddInt64(&c.loader.SessionsStarted, 1)
	active := atomic.AddInt64(&c.loader.ActiveSessions, 1)

	// Update max concurrent if needed
	for {
		max := atomic.LoadInt64(&c.loader.MaxConcurrentSessions)
		if active <= max {
			break
		}
		if atomic.CompareAndSwapInt64(&c.loader.MaxConcurrentSessions, max, active) {
			break
		}
	}
}

// SessionEnded records a session reaching a terminal state or being closed
func (c *Collector) SessionEnded() {
	atomic.AddInt64(&c.loader.ActiveSessions, -1)
}

// DispatchStarted records one load attempt being dispatched
func (c *Collector) DispatchStarted() {
	atomic.AddInt64(&c.loader.Dispatches, 1)
}

// SuccessClassified records an attempt classified as successful
func (c *Collector) SuccessClassified() {
	atomic.AddInt64(&c.loader.Successes, 1)
}

// BlockedIntrospection records a success reached because the embedded
// document could not be inspected
func (c *Collector) BlockedIntrospection() {
	atomic.AddInt64(&c.loader.BlockedIntrospections, 1)
}

// SignalFailure records a raw error signal from an attempt
func (c *Collector) SignalFailure() {
	atomic.AddInt64(&c.loader.SignalFailures, 1)
}

// EmptyContentFailure records a load that rendered no content
func (c *Collector) EmptyContentFailure() {
	atomic.AddInt64(&c.loader.EmptyContentFailures, 1)
}

// RetriesExhausted records a session running out of attempts
func (c *Collector) RetriesExhausted() {
	atomic.AddInt64(&c.loader.Exhaustions, 1)
}

// ManualRetry records a user-triggered restart after exhaustion
func (c *Collector) ManualRetry() {
	atomic.AddInt64(&c.loader.ManualRetries, 1)
}

// BindingNotFound records a start against an unregistered container
func (c *Collector) BindingNotFound() {
	atomic.AddInt64(&c.loader.BindingNotFound, 1)
}

// Snapshot returns a consistent copy of the current metrics
func (c *Collector) Snapshot() LoaderMetrics {
	return LoaderMetrics{
		SessionsStarted:       atomic.LoadInt64(&c.loader.SessionsStarted),
		ActiveSessions:        atomic.LoadInt64(&c.loader.ActiveSessions),
		MaxConcurrentSessions: atomic.LoadInt64(&c.loader.MaxConcurrentSessions),
		Dispatches:            atomic.LoadInt64(&c.loader.Dispatches),
		Successes:             atomic.LoadInt64(&c.loader.Successes),
		SignalFailures:        atomic.LoadInt64(&c.loader.SignalFailures),
		EmptyContentFailures:  atomic.LoadInt64(&c.loader.EmptyContentFailures),
		BlockedIntrospections: atomic.LoadInt64(&c.loader.BlockedIntrospections),
		Exhaustions:           atomic.LoadInt64(&c.loader.Exhaustions),
		ManualRetries:         atomic.LoadInt64(&c.loader.ManualRetries),
		BindingNotFound:       atomic.LoadInt64(&c.loader.BindingNotFound),
		StartTime:             c.startTime,
		Uptime:                time.Since(c.startTime),
	}
}

// Reset zeroes all counters while preserving the start time
func (c *Collector) Reset() {
	atomic.StoreInt64(&c.loader.SessionsStarted, 0)
	atomic.StoreInt64(&c.loader.ActiveSessions, 0)
	atomic.StoreInt64(&c.loader.MaxConcurrentSessions, 0)
	atomic.StoreInt64(&c.loader.Dispatches, 0)
	atomic.StoreInt64(&c.loader.Successes, 0)
	atomic.StoreInt64(&c.loader.SignalFailures, 0)
	atomic.StoreInt64(&c.loader.EmptyContentFailures, 0)
	atomic.StoreInt64(&c.loader.BlockedIntrospections, 0)
	atomic.StoreInt64(&c.loader.Exhaustions, 0)
	atomic.StoreInt64(&c.loader.ManualRetries, 0)
	atomic.StoreInt64(&c.loader.BindingNotFound, 0)
}
