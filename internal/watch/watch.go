// Package watch runs the sequential monitoring loop: each log line is
// parsed, fed through the rolling window and both detectors, and any
// resulting events are handed to the alert dispatcher before the next line
// is read. All detection state is owned by this single loop, so none of it
// needs locking.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/samijaber1/poolwatch/internal/alert"
	"github.com/samijaber1/poolwatch/internal/detect"
	"github.com/samijaber1/poolwatch/internal/logline"
	"github.com/samijaber1/poolwatch/internal/metrics"
	"github.com/samijaber1/poolwatch/internal/window"
)

// Watcher consumes lines and drives detection and dispatch.
type Watcher struct {
	state      *detect.State
	window     *window.Window
	failover   *detect.FailoverDetector
	errorRate  *detect.ErrorRateDetector
	dispatcher *alert.Dispatcher
	metrics    *metrics.Metrics
	status     *StatusCache
	log        zerolog.Logger
}

// NewWatcher wires the detection pipeline. metrics may be nil when
// instrumentation is disabled (tests).
func NewWatcher(w *window.Window, threshold float64, dispatcher *alert.Dispatcher, m *metrics.Metrics, log zerolog.Logger) *Watcher {
	state := detect.NewState()
	return &Watcher{
		state:      state,
		window:     w,
		failover:   detect.NewFailoverDetector(state),
		errorRate:  detect.NewErrorRateDetector(state, w, threshold),
		dispatcher: dispatcher,
		metrics:    m,
		status:     NewStatusCache(),
		log:        log,
	}
}

// Status returns the watcher's status snapshot cache.
func (w *Watcher) Status() *StatusCache {
	return w.status
}

// Run consumes lines until the channel closes or ctx is cancelled. A
// problem with any single line is logged and the loop continues; one
// malformed line must never terminate monitoring.
func (w *Watcher) Run(ctx context.Context, lines <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := w.processLine(ctx, line); err != nil {
				w.log.Error().Err(err).Msg("error handling line")
			}
		}
	}
}

// processLine runs one line through extraction, detection and dispatch.
func (w *Watcher) processLine(ctx context.Context, line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing line: %v", r)
		}
	}()

	rec := logline.Parse(line)
	now := time.Now()

	if w.metrics != nil {
		w.metrics.LinesProcessedTotal.Inc()
		if rec.Status == 0 {
			w.metrics.ParseFallbacksTotal.Inc()
		}
	}

	if ev, fired := w.failover.Observe(rec, now); fired {
		w.log.Warn().
			Str("from_pool", ev.FromPool).
			Str("to_pool", ev.ToPool).
			Str("release", ev.Release).
			Msg("pool failover detected")
		if w.metrics != nil {
			w.metrics.FailoversDetectedTotal.Inc()
		}
		w.recordOutcome(detect.KindFailover, w.dispatcher.Dispatch(ctx, ev))
	}

	if ev, fired := w.errorRate.Observe(rec, now); fired {
		w.recordOutcome(detect.KindErrorRate, w.dispatcher.Dispatch(ctx, ev))
	}

	w.publishStatus(now)
	return nil
}

func (w *Watcher) recordOutcome(kind detect.Kind, outcome alert.Outcome) {
	if w.metrics == nil {
		return
	}
	switch {
	case outcome == alert.OutcomeSent:
		w.metrics.AlertsSentTotal.WithLabelValues(string(kind)).Inc()
	case outcome == alert.OutcomeSendFailed:
		w.metrics.AlertSendFailuresTotal.Inc()
	case outcome.Suppressed():
		w.metrics.AlertsSuppressedTotal.WithLabelValues(string(kind), string(outcome)).Inc()
	}
}
