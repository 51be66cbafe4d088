// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/coalesce.go
// Summary: Time-windowed coalescing for invalidation bursts and flush pacing.
//
// Highlight-definition batches arrive in bursts that would otherwise
// full-invalidate the grid many times per frame, and rapid redraw batches
// would otherwise trigger a paint per batch. Both are coalesced with plain
// deadline checks driven by the caller's clock; no timers run here.

package grid

import "time"

// Coalescer debounces repeated requests into one event per quiet window.
// A zero window disables coalescing: every request is immediately due.
type Coalescer struct {
	window   time.Duration
	pending  bool
	deadline time.Time
}

// NewCoalescer builds a coalescer with the given quiet window.
func NewCoalescer(window time.Duration) Coalescer {
	return Coalescer{window: window}
}

// Request records a demand and pushes the deadline out by the window.
func (c *Coalescer) Request(now time.Time) {
	c.pending = true
	c.deadline = now.Add(c.window)
}

// Pending reports whether a demand is waiting.
func (c *Coalescer) Pending() bool {
	return c.pending
}

// Due consumes the pending demand when the quiet window has elapsed.
func (c *Coalescer) Due(now time.Time) bool {
	if !c.pending || now.Before(c.deadline) {
		return false
	}
	c.pending = false
	return true
}

// FlushLimiter rate-limits flush-driven paints to a bounded frequency.
// A zero interval disables limiting, for platforms whose compositor already
// paces redraw.
type FlushLimiter struct {
	interval time.Duration
	last     time.Time
	pending  bool
}

// NewFlushLimiter builds a limiter with the given minimum paint interval.
func NewFlushLimiter(interval time.Duration) FlushLimiter {
	return FlushLimiter{interval: interval}
}

// Request asks for a paint. It returns true when the paint should run now;
// otherwise the request is held for Drain.
func (l *FlushLimiter) Request(now time.Time) bool {
	if l.interval <= 0 || now.Sub(l.last) >= l.interval {
		l.last = now
		l.pending = false
		return true
	}
	l.pending = true
	return false
}

// Drain releases a held paint once the interval has elapsed. Called on the
// renderer's fixed tick.
func (l *FlushLimiter) Drain(now time.Time) bool {
	if !l.pending || now.Sub(l.last) < l.interval {
		return false
	}
	l.last = now
	l.pending = false
	return true
}
