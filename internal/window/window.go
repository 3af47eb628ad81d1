// Package window implements the fixed-capacity FIFO status window used for
// live error-rate computation.
package window

// MinSamples is the minimum number of observed statuses before an error
// ratio is considered meaningful. Below this the ratio is undefined, which
// keeps cold starts from producing noisy alerts.
const MinSamples = 10

// Window is a bounded FIFO of the most recent HTTP status codes. A
// capacity of zero or less disables the window entirely: pushes are no-ops
// and the error ratio is never defined.
type Window struct {
	statuses []int
	head     int
	size     int
	capacity int
}

// New creates a window holding at most capacity statuses.
func New(capacity int) *Window {
	w := &Window{capacity: capacity}
	if capacity > 0 {
		w.statuses = make([]int, capacity)
	}
	return w
}

// Push appends one status, evicting the oldest entry once the window is
// full.
func (w *Window) Push(status int) {
	if w.capacity <= 0 {
		return
	}
	if w.size < w.capacity {
		w.statuses[(w.head+w.size)%w.capacity] = status
		w.size++
		return
	}
	// Full: overwrite the oldest slot and advance.
	w.statuses[w.head] = status
	w.head = (w.head + 1) % w.capacity
}

// Len returns the number of statuses currently held.
func (w *Window) Len() int {
	return w.size
}

// ErrorRatio returns the percentage of 5xx statuses in the window. The
// second return value is false while fewer than MinSamples statuses have
// been observed, or when the window is disabled.
func (w *Window) ErrorRatio() (float64, bool) {
	if w.size < MinSamples {
		return 0, false
	}

	errors := 0
	for i := 0; i < w.size; i++ {
		s := w.statuses[(w.head+i)%w.capacity]
		if s >= 500 && s < 600 {
			errors++
		}
	}

	return float64(errors) / float64(w.size) * 100, true
}

// Oldest returns the oldest status in the window, or false when empty.
func (w *Window) Oldest() (int, bool) {
	if w.size == 0 {
		return 0, false
	}
	return w.statuses[w.head], true
}
