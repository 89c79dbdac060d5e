package domain

import (
	"fmt"
	"time"
)

// Variable is a named measurable quantity with a display color and a [Min, Max]
// normalization domain.
type Variable struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"name"`
	Color       string  `json:"color"` // "#rrggbb"
	Unit        string  `json:"unit"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// LatLng is a WGS-84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SamplePoint is one geotagged reading. Values is sparse: a point need not carry
// every known variable.
type SamplePoint struct {
	ID        string             `json:"id"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Timestamp int64              `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// Value looks up the reading for variableID.
func (p SamplePoint) Value(variableID string) (float64, bool) {
	v, ok := p.Values[variableID]
	return v, ok
}

// Position returns the point's coordinate.
func (p SamplePoint) Position() LatLng {
	return LatLng{Lat: p.Latitude, Lng: p.Longitude}
}

// TimeWindow is the inclusive [Start, End] range on the shared time axis.
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// NewTimeWindow builds a window, raising End to Start when the pair is inverted.
func NewTimeWindow(start, end int64) TimeWindow {
	if end < start {
		end = start
	}
	return TimeWindow{Start: start, End: end}
}

// Contains reports whether ts lies inside the window, bounds included.
func (w TimeWindow) Contains(ts int64) bool {
	return w.Start <= ts && ts <= w.End
}

// IsSingle reports whether the window collapses to a single instant.
func (w TimeWindow) IsSingle() bool {
	return w.Start == w.End
}

// AggregatedBucket summarizes all values of one variable sharing a timestamp.
type AggregatedBucket struct {
	Timestamp int64   `json:"timestamp"`
	Mean      float64 `json:"mean"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Count     int     `json:"count"`
}

// Polygon styling applied to user-drawn regions.
const (
	MinPolygonVertices    = 3
	DefaultPolygonColor   = "#3b82f6"
	DefaultPolygonOpacity = 0.3
	PolygonTypeUserDrawn  = "user_drawn"
)

// Polygon is a committed region of interest.
type Polygon struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Vertices []LatLng       `json:"vertices"`
	Color    string         `json:"color"`
	Opacity  float64        `json:"opacity"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Type returns the metadata "type" tag, or "" when absent.
func (p Polygon) Type() string {
	s, _ := p.Metadata["type"].(string)
	return s
}

// NewUserPolygon builds a polygon from drawn vertices with default styling and
// metadata tagging it as user-drawn at the current clock time. The vertex slice
// is copied.
func NewUserPolygon(id string, vertices []LatLng) Polygon {
	now := clock.Now()
	vs := make([]LatLng, len(vertices))
	copy(vs, vertices)
	return Polygon{
		ID:       id,
		Name:     fmt.Sprintf("Polygon %d", now.UnixMilli()),
		Vertices: vs,
		Color:    DefaultPolygonColor,
		Opacity:  DefaultPolygonOpacity,
		Metadata: map[string]any{
			"type":    PolygonTypeUserDrawn,
			"created": now.UTC().Format(time.RFC3339Nano),
		},
	}
}

// Dataset is what a data source supplies at startup.
type Dataset struct {
	Variables []Variable
	Points    []SamplePoint
	Polygons  []Polygon
}

// Variable finds a variable by id.
func (d Dataset) Variable(id string) (Variable, bool) {
	for _, v := range d.Variables {
		if v.ID == id {
			return v, true
		}
	}
	return Variable{}, false
}
