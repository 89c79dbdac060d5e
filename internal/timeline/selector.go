package timeline

import (
	"fmt"
	"math"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
)

// Mode selects between one handle (Start == End) and two handles.
type Mode int

const (
	ModeSingle Mode = iota
	ModeRange
)

func (m Mode) String() string {
	if m == ModeRange {
		return "range"
	}
	return "single"
}

// ParseMode accepts "single" or "range".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "single":
		return ModeSingle, nil
	case "range":
		return ModeRange, nil
	default:
		return ModeSingle, fmt.Errorf("unknown slider mode %q", s)
	}
}

// Handle identifies the slider handle held by the active drag session.
type Handle int

const (
	HandleNone Handle = iota
	HandleStart
	HandleEnd
	HandleSingle
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	case HandleSingle:
		return "single"
	default:
		return "none"
	}
}

// ParseHandle accepts "start", "end", or "single".
func ParseHandle(s string) (Handle, error) {
	switch s {
	case "start":
		return HandleStart, nil
	case "end":
		return HandleEnd, nil
	case "single":
		return HandleSingle, nil
	default:
		return HandleNone, fmt.Errorf("unknown slider handle %q", s)
	}
}

// Selector is the timeline slider. It converts pointer positions to grid
// timestamps and writes the shared window; the chart brush writes the same
// window through Brush.
type Selector struct {
	grid   *Grid
	window *Window
	mode   Mode
	drag   Handle
}

// NewSelector binds a selector to a grid and the shared window. Entering single
// mode collapses the window to its start.
func NewSelector(grid *Grid, window *Window, mode Mode) *Selector {
	s := &Selector{grid: grid, window: window, mode: mode}
	if mode == ModeSingle {
		cur := window.Get()
		window.Set(cur.Start, cur.Start)
	}
	return s
}

// Grid returns the discretization grid.
func (s *Selector) Grid() *Grid { return s.grid }

// Mode returns the current interaction mode.
func (s *Selector) Mode() Mode { return s.mode }

// Dragging returns the handle of the active drag session, or HandleNone.
func (s *Selector) Dragging() Handle { return s.drag }

// Window returns the current shared window.
func (s *Selector) Window() domain.TimeWindow { return s.window.Get() }

// PointerDown starts an exclusive drag session on h. It fails when another
// session is active or h is not shown in the current mode.
func (s *Selector) PointerDown(h Handle) bool {
	if s.drag != HandleNone || !s.accepts(h) {
		return false
	}
	s.drag = h
	return true
}

func (s *Selector) accepts(h Handle) bool {
	if s.mode == ModeSingle {
		return h == HandleSingle
	}
	return h == HandleStart || h == HandleEnd
}

// PointerMove moves the dragged handle to position. It is a no-op without an
// active session.
func (s *Selector) PointerMove(position float64) domain.TimeWindow {
	if s.drag == HandleNone {
		return s.window.Get()
	}
	return s.moveHandle(s.drag, s.grid.PositionToTimestamp(position))
}

// PointerUp ends the drag session.
func (s *Selector) PointerUp() {
	s.drag = HandleNone
}

// Click moves a handle to the clicked track position: the single handle in single
// mode, otherwise whichever handle is nearer on the track (ties go to End).
// Clicks during a drag session are ignored.
func (s *Selector) Click(position float64) domain.TimeWindow {
	if s.drag != HandleNone {
		return s.window.Get()
	}
	if math.IsNaN(position) {
		position = 0
	}
	position = math.Max(0, math.Min(100, position))
	ts := s.grid.PositionToTimestamp(position)

	if s.mode == ModeSingle {
		return s.moveHandle(HandleSingle, ts)
	}
	startPos, endPos := s.Positions()
	if math.Abs(position-startPos) < math.Abs(position-endPos) {
		return s.moveHandle(HandleStart, ts)
	}
	return s.moveHandle(HandleEnd, ts)
}

// moveHandle writes ts through handle h, clamping it against the other handle.
func (s *Selector) moveHandle(h Handle, ts int64) domain.TimeWindow {
	cur := s.window.Get()
	if s.mode == ModeSingle || h == HandleSingle {
		return s.window.Set(ts, ts)
	}
	switch h {
	case HandleStart:
		return s.window.Set(min(ts, cur.End), cur.End)
	case HandleEnd:
		return s.window.Set(cur.Start, max(ts, cur.Start))
	default:
		return cur
	}
}

// SetMode switches modes, cancelling any drag session. Entering single mode keeps
// the start and discards the end.
func (s *Selector) SetMode(m Mode) {
	s.drag = HandleNone
	if m == s.mode {
		return
	}
	s.mode = m
	if m == ModeSingle {
		cur := s.window.Get()
		s.window.Set(cur.Start, cur.Start)
	}
}

// ToggleMode flips between single and range mode and returns the new mode.
func (s *Selector) ToggleMode() Mode {
	if s.mode == ModeSingle {
		s.SetMode(ModeRange)
	} else {
		s.SetMode(ModeSingle)
	}
	return s.mode
}

// Positions returns the track positions of the window's start and end.
func (s *Selector) Positions() (float64, float64) {
	w := s.window.Get()
	return s.grid.TimestampToPosition(w.Start), s.grid.TimestampToPosition(w.End)
}

// SinglePosition returns where the single handle is drawn: the start in single
// mode, the midpoint of the two handles otherwise.
func (s *Selector) SinglePosition() float64 {
	start, end := s.Positions()
	if s.mode == ModeSingle {
		return start
	}
	return (start + end) / 2
}

// Brush writes the window selected by a brush gesture over buckets. In single
// mode the window collapses to the brushed start. Returns false when there are
// no buckets.
func (s *Selector) Brush(buckets []domain.AggregatedBucket, startIndex, endIndex int) bool {
	w, ok := BrushWindow(buckets, startIndex, endIndex)
	if !ok {
		return false
	}
	if s.mode == ModeSingle {
		s.window.Set(w.Start, w.Start)
		return true
	}
	s.window.Set(w.Start, w.End)
	return true
}

// BrushWindow maps brush indices into the bucket sequence to a window. Indices
// outside the sequence are clamped to its ends, and the result obeys
// Start <= End. Returns false for an empty sequence.
func BrushWindow(buckets []domain.AggregatedBucket, startIndex, endIndex int) (domain.TimeWindow, bool) {
	if len(buckets) == 0 {
		return domain.TimeWindow{}, false
	}
	start := buckets[clampIndex(startIndex, len(buckets))].Timestamp
	end := buckets[clampIndex(endIndex, len(buckets))].Timestamp
	return domain.NewTimeWindow(start, end), true
}

// BrushIndices derives the brush extent for w: the first bucket at or after
// w.Start and the first bucket at or after w.End, or the last index when no
// bucket reaches w.End. Returns false for an empty sequence or when every
// bucket precedes w.Start.
func BrushIndices(buckets []domain.AggregatedBucket, w domain.TimeWindow) (int, int, bool) {
	if len(buckets) == 0 || buckets[len(buckets)-1].Timestamp < w.Start {
		return 0, 0, false
	}
	last := len(buckets) - 1
	start, end := last, last
	for i := last; i >= 0; i-- {
		if buckets[i].Timestamp >= w.Start {
			start = i
		}
		if buckets[i].Timestamp >= w.End {
			end = i
		}
	}
	return start, end, true
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}
