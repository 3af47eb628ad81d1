package watch

import (
	"sync"
	"time"

	"github.com/samijaber1/poolwatch/internal/detect"
)

// Status is a point-in-time snapshot of the watcher for the ops API. The
// loop publishes it after every processed line.
type Status struct {
	CurrentPool       string            `json:"current_pool"`
	WindowLen         int               `json:"window_len"`
	ErrorRatioPercent float64           `json:"error_ratio_percent"`
	ErrorRatioDefined bool              `json:"error_ratio_defined"`
	LinesProcessed    int64             `json:"lines_processed"`
	LastLineAt        time.Time         `json:"last_line_at"`
	LastAlertTimes    map[string]string `json:"last_alert_times"`
}

// StatusCache is a thread-safe holder for the latest Status. The watch loop
// writes it; the API server reads it.
type StatusCache struct {
	mu     sync.RWMutex
	status Status
}

// NewStatusCache creates an empty status cache.
func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

// Get returns the latest snapshot.
func (c *StatusCache) Get() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Set stores a snapshot.
func (c *StatusCache) Set(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

// publishStatus captures the loop's current view and refreshes gauges.
func (w *Watcher) publishStatus(now time.Time) {
	ratio, defined := w.window.ErrorRatio()

	prev := w.status.Get()
	s := Status{
		CurrentPool:       w.state.CurrentPool(),
		WindowLen:         w.window.Len(),
		ErrorRatioPercent: ratio,
		ErrorRatioDefined: defined,
		LinesProcessed:    prev.LinesProcessed + 1,
		LastLineAt:        now,
		LastAlertTimes:    make(map[string]string, 2),
	}

	for _, kind := range []detect.Kind{detect.KindFailover, detect.KindErrorRate} {
		if t := w.dispatcher.LastAlertTime(kind); !t.IsZero() {
			s.LastAlertTimes[string(kind)] = t.UTC().Format(time.RFC3339)
		}
	}

	w.status.Set(s)

	if w.metrics != nil {
		w.metrics.WindowLength.Set(float64(w.window.Len()))
		if defined {
			w.metrics.ErrorRatioPercent.Set(ratio)
		}
	}
}
