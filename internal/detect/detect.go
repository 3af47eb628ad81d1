// Package detect holds the watcher's per-process detection state and the
// two detectors that run against every processed log line: pool failover
// and sustained high error rate.
package detect

import (
	"time"

	"github.com/samijaber1/poolwatch/internal/logline"
	"github.com/samijaber1/poolwatch/internal/window"
)

// State is the mutable detection state owned by the watch loop. It is only
// ever touched from that one loop, so it carries no locking.
type State struct {
	lastSeenPool      string
	initialized       bool
	lastReleaseByPool map[string]string
}

// NewState returns an uninitialized State: the first observed record sets
// the tracked pool without emitting an event.
func NewState() *State {
	return &State{
		lastReleaseByPool: make(map[string]string),
	}
}

// CurrentPool returns the most recently observed pool, or "" before the
// first record.
func (s *State) CurrentPool() string {
	return s.lastSeenPool
}

// ReleaseFor returns the last release observed serving from pool.
func (s *State) ReleaseFor(pool string) (string, bool) {
	rel, ok := s.lastReleaseByPool[pool]
	return rel, ok
}

// FailoverDetector emits a Failover event whenever the serving pool changes
// relative to the previous observation.
type FailoverDetector struct {
	state *State
}

// NewFailoverDetector creates a detector over the given state.
func NewFailoverDetector(state *State) *FailoverDetector {
	return &FailoverDetector{state: state}
}

// Observe processes one record. It returns a Failover event and true when
// the pool changed; the first record only initializes tracking.
func (d *FailoverDetector) Observe(rec logline.Record, now time.Time) (Failover, bool) {
	s := d.state

	if !s.initialized {
		s.initialized = true
		s.lastSeenPool = rec.Pool
		s.lastReleaseByPool[rec.Pool] = rec.Release
		return Failover{}, false
	}

	if rec.Pool == s.lastSeenPool {
		return Failover{}, false
	}

	ev := Failover{
		FromPool:     s.lastSeenPool,
		ToPool:       rec.Pool,
		Release:      rec.Release,
		UpstreamAddr: rec.UpstreamAddr,
		Timestamp:    now,
	}

	s.lastSeenPool = rec.Pool
	s.lastReleaseByPool[rec.Pool] = rec.Release

	return ev, true
}

// ErrorRateDetector compares the rolling window's error ratio against a
// threshold. It is level-triggered: every line processed while the ratio is
// at or above the threshold produces an event, and repetition is controlled
// entirely by the dispatcher's cooldown.
type ErrorRateDetector struct {
	state     *State
	window    *window.Window
	threshold float64
}

// NewErrorRateDetector creates a detector over the given state and window.
// The threshold is a percentage and the comparison is inclusive.
func NewErrorRateDetector(state *State, w *window.Window, threshold float64) *ErrorRateDetector {
	return &ErrorRateDetector{state: state, window: w, threshold: threshold}
}

// Observe pushes the record's status into the window and checks the ratio.
func (d *ErrorRateDetector) Observe(rec logline.Record, now time.Time) (HighErrorRate, bool) {
	d.window.Push(rec.Status)

	ratio, ok := d.window.ErrorRatio()
	if !ok || ratio < d.threshold {
		return HighErrorRate{}, false
	}

	return HighErrorRate{
		RatePercent: ratio,
		WindowLen:   d.window.Len(),
		CurrentPool: d.state.lastSeenPool,
		Timestamp:   now,
	}, true
}
