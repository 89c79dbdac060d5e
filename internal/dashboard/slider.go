package dashboard

import (
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
)

// SliderMode returns the slider's interaction mode.
func (s *Session) SliderMode() timeline.Mode { return s.selector.Mode() }

// PointerDown starts a drag on handle h.
func (s *Session) PointerDown(h timeline.Handle) bool { return s.selector.PointerDown(h) }

// PointerMove moves the dragged handle to a track position.
func (s *Session) PointerMove(position float64) domain.TimeWindow {
	return s.selector.PointerMove(position)
}

// PointerUp ends the drag.
func (s *Session) PointerUp() { s.selector.PointerUp() }

// ClickTrack moves the nearer handle to a track position.
func (s *Session) ClickTrack(position float64) domain.TimeWindow {
	return s.selector.Click(position)
}

// SetWindow writes the window directly. Timestamps need not lie on the grid.
func (s *Session) SetWindow(start, end int64) domain.TimeWindow {
	if s.selector.Mode() == timeline.ModeSingle {
		end = start
	}
	return s.window.Set(start, end)
}

// SetSliderMode switches the slider mode.
func (s *Session) SetSliderMode(m timeline.Mode) {
	if m == s.selector.Mode() {
		s.selector.SetMode(m)
		return
	}
	s.selector.SetMode(m)
	s.publish(domain.ChangeEvent{Kind: domain.ChangeSliderMode, Mode: m.String()})
}

// ToggleSliderMode flips the slider mode.
func (s *Session) ToggleSliderMode() timeline.Mode {
	next := timeline.ModeSingle
	if s.selector.Mode() == timeline.ModeSingle {
		next = timeline.ModeRange
	}
	s.SetSliderMode(next)
	return next
}

// Brush applies a chart brush over the current buckets.
func (s *Session) Brush(startIndex, endIndex int) bool {
	return s.selector.Brush(s.Buckets(), startIndex, endIndex)
}

// BrushIndices returns the chart brush extent matching the window.
func (s *Session) BrushIndices() (int, int, bool) {
	return timeline.BrushIndices(s.Buckets(), s.window.Get())
}
