// Package timeline implements the timeline slider: an hourly discretization grid
// around a reference instant, the shared time window, and the range selector that
// writes it from handle drags, track clicks, and chart brush gestures.
package timeline

import (
	"math"
	"time"
)

// Step is the grid resolution in seconds.
const Step int64 = int64(time.Hour / time.Second)

// DefaultDays is the span on each side of the reference instant.
const DefaultDays = 15

// Grid is the ordered sequence of hourly Unix timestamps the slider snaps to.
// It spans from local midnight daysBefore days before the reference instant up
// to daysAfter days after it.
type Grid struct {
	reference time.Time
	hours     []int64
}

// NewGrid builds the grid around reference. Negative spans are treated as 0.
func NewGrid(reference time.Time, daysBefore, daysAfter int) *Grid {
	daysBefore = max(daysBefore, 0)
	daysAfter = max(daysAfter, 0)

	first := reference.AddDate(0, 0, -daysBefore)
	first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, reference.Location())
	last := reference.AddDate(0, 0, daysAfter)

	hours := make([]int64, 0, int(last.Sub(first)/time.Hour)+1)
	for cur := first; !cur.After(last); cur = cur.Add(time.Hour) {
		hours = append(hours, cur.Unix())
	}
	return &Grid{reference: reference, hours: hours}
}

// Len returns the number of grid entries.
func (g *Grid) Len() int { return len(g.hours) }

// Min returns the first grid timestamp.
func (g *Grid) Min() int64 { return g.hours[0] }

// Max returns the last grid timestamp.
func (g *Grid) Max() int64 { return g.hours[len(g.hours)-1] }

// At returns the i-th grid timestamp.
func (g *Grid) At(i int) int64 { return g.hours[i] }

// Reference returns the instant the grid was built around.
func (g *Grid) Reference() time.Time { return g.reference }

// Timestamps returns a copy of the grid.
func (g *Grid) Timestamps() []int64 {
	out := make([]int64, len(g.hours))
	copy(out, g.hours)
	return out
}

// Bounds returns the window spanning the whole grid.
func (g *Grid) Bounds() (int64, int64) { return g.Min(), g.Max() }

// PositionToTimestamp maps a track position in [0, 100] to the nearest grid
// timestamp. Out-of-range positions are clamped first.
func (g *Grid) PositionToTimestamp(position float64) int64 {
	if math.IsNaN(position) {
		position = 0
	}
	position = math.Max(0, math.Min(100, position))
	idx := int(math.Round(position / 100 * float64(len(g.hours)-1)))
	return g.hours[idx]
}

// TimestampToPosition maps ts linearly onto [0, 100]. Timestamps outside the
// grid are clamped to the track ends.
func (g *Grid) TimestampToPosition(ts int64) float64 {
	lo, hi := g.Min(), g.Max()
	if hi == lo {
		return 0
	}
	p := float64(ts-lo) / float64(hi-lo) * 100
	return math.Max(0, math.Min(100, p))
}

// Marker is a labelled tick on the slider track.
type Marker struct {
	Timestamp int64   `json:"timestamp"`
	Position  float64 `json:"position"`
	Label     string  `json:"label"`
	Today     bool    `json:"today"`
}

// DayMarkers returns one marker every 24 grid entries (each local midnight),
// flagging the one on the reference date.
func (g *Grid) DayMarkers() []Marker {
	loc := g.reference.Location()
	ry, rm, rd := g.reference.Date()

	markers := make([]Marker, 0, len(g.hours)/24+1)
	for i := 0; i < len(g.hours); i += 24 {
		ts := g.hours[i]
		t := time.Unix(ts, 0).In(loc)
		y, m, d := t.Date()
		markers = append(markers, Marker{
			Timestamp: ts,
			Position:  g.TimestampToPosition(ts),
			Label:     t.Format("Jan 2"),
			Today:     y == ry && m == rm && d == rd,
		})
	}
	return markers
}

// NowPosition returns the track position of the reference instant.
func (g *Grid) NowPosition() float64 {
	return g.TimestampToPosition(g.reference.Unix())
}

// FormatLabel renders ts as a short date and a 24-hour time in the grid's location.
func (g *Grid) FormatLabel(ts int64) (date, clock string) {
	t := time.Unix(ts, 0).In(g.reference.Location())
	return t.Format("Jan 2"), t.Format("15:04")
}
