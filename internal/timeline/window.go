package timeline

import "github.com/couchcryptid/sensor-map-dashboard/internal/domain"

// Listener observes published windows.
type Listener func(domain.TimeWindow)

// Window owns the shared time window. Every write goes through Set, which
// enforces Start <= End before publishing, so readers never observe an inverted
// range. It is not safe for concurrent use; callers serialize events.
type Window struct {
	current   domain.TimeWindow
	listeners []Listener
}

// NewWindow creates a window holder with a clamped initial value.
func NewWindow(start, end int64) *Window {
	return &Window{current: domain.NewTimeWindow(start, end)}
}

// Get returns the current window.
func (w *Window) Get() domain.TimeWindow { return w.current }

// Set clamps and stores a new window, notifying listeners when it changed.
func (w *Window) Set(start, end int64) domain.TimeWindow {
	next := domain.NewTimeWindow(start, end)
	if next == w.current {
		return next
	}
	w.current = next
	for _, l := range w.listeners {
		l(next)
	}
	return next
}

// OnChange registers a listener called after every change.
func (w *Window) OnChange(l Listener) {
	w.listeners = append(w.listeners, l)
}
