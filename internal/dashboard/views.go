package dashboard

import (
	"fmt"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
)

// PopupLine is one "name: value" row.
type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MarkerPopup is the detail card shown for a sample point.
type MarkerPopup struct {
	Title    string      `json:"title"`
	Selected PopupLine   `json:"selected"`
	Location string      `json:"location"`
	Time     string      `json:"time"`
	Others   []PopupLine `json:"others"`
}

// Marker is a styled circle on the map. Color already carries the value's
// alpha; the stroke and fill opacities are fixed.
type Marker struct {
	ID            string        `json:"id"`
	Position      domain.LatLng `json:"position"`
	Radius        float64       `json:"radius"`
	Color         string        `json:"color"`
	StrokeOpacity float64       `json:"stroke_opacity"`
	FillOpacity   float64       `json:"fill_opacity"`
	Popup         MarkerPopup   `json:"popup"`
}

// OverlayPopup is the detail card shown for a region.
type OverlayPopup struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Threshold *float64 `json:"threshold,omitempty"`
	Vertices  int      `json:"vertices"`
}

// Overlay is a styled polygon on the map.
type Overlay struct {
	ID       string          `json:"id"`
	Vertices []domain.LatLng `json:"vertices"`
	Color    string          `json:"color"`
	Opacity  float64         `json:"opacity"`
	Popup    OverlayPopup    `json:"popup"`
}

const (
	markerStrokeOpacity = 0.8
	markerFillOpacity   = 0.6
)

// Markers styles every filtered point with the selected variable's mapping.
func (s *Session) Markers() []Marker {
	v := s.SelectedVariable()
	points := s.FilteredPoints()
	out := make([]Marker, 0, len(points))
	for _, p := range points {
		value, _ := p.Value(s.selected)
		c := domain.ColorFor(value, v)
		out = append(out, Marker{
			ID:            p.ID,
			Position:      p.Position(),
			Radius:        domain.RadiusFor(value, v),
			Color:         c.String(),
			StrokeOpacity: markerStrokeOpacity,
			FillOpacity:   markerFillOpacity,
			Popup:         s.markerPopup(p, v, value),
		})
	}
	return out
}

func (s *Session) markerPopup(p domain.SamplePoint, v *domain.Variable, value float64) MarkerPopup {
	name, unit := s.selected, ""
	if v != nil {
		name, unit = v.DisplayName, v.Unit
	}
	date, clock := s.grid.FormatLabel(p.Timestamp)
	popup := MarkerPopup{
		Title:    "Data Point",
		Selected: PopupLine{Label: name, Value: formatValue(value, 2, unit)},
		Location: fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude),
		Time:     date + " " + clock,
		Others:   []PopupLine{},
	}
	for _, other := range s.variables {
		if other.ID == s.selected {
			continue
		}
		if val, ok := p.Value(other.ID); ok {
			popup.Others = append(popup.Others, PopupLine{Label: other.DisplayName, Value: formatValue(val, 1, other.Unit)})
		}
	}
	return popup
}

func formatValue(v float64, decimals int, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%.*f", decimals, v)
	}
	return fmt.Sprintf("%.*f %s", decimals, v, unit)
}

// Overlays styles every stored region.
func (s *Session) Overlays() []Overlay {
	regions := s.regions.List()
	out := make([]Overlay, 0, len(regions))
	for _, p := range regions {
		popup := OverlayPopup{Name: p.Name, Type: p.Type(), Vertices: len(p.Vertices)}
		if popup.Type == "" {
			popup.Type = "Custom"
		}
		if th, ok := p.Metadata["threshold"].(float64); ok {
			popup.Threshold = &th
		}
		out = append(out, Overlay{
			ID:       p.ID,
			Vertices: p.Vertices,
			Color:    p.Color,
			Opacity:  p.Opacity,
			Popup:    popup,
		})
	}
	return out
}

// MapView is everything the map collaborator draws.
type MapView struct {
	Center   domain.LatLng `json:"center"`
	Markers  []Marker      `json:"markers"`
	Overlays []Overlay     `json:"overlays"`
}

// Map builds the map view.
func (s *Session) Map() MapView {
	return MapView{Center: s.Center(), Markers: s.Markers(), Overlays: s.Overlays()}
}

// SliderView is everything the timeline slider draws.
type SliderView struct {
	Mode           string            `json:"mode"`
	Window         domain.TimeWindow `json:"window"`
	Min            int64             `json:"min"`
	Max            int64             `json:"max"`
	Steps          int               `json:"steps"`
	StartPosition  float64           `json:"start_position"`
	EndPosition    float64           `json:"end_position"`
	SinglePosition float64           `json:"single_position"`
	NowPosition    float64           `json:"now_position"`
	Dragging       string            `json:"dragging"`
	StartLabel     string            `json:"start_label"`
	EndLabel       string            `json:"end_label"`
	DayMarkers     []timeline.Marker `json:"day_markers"`
}

// Slider builds the slider view.
func (s *Session) Slider() SliderView {
	w := s.window.Get()
	start, end := s.selector.Positions()
	sd, sc := s.grid.FormatLabel(w.Start)
	ed, ec := s.grid.FormatLabel(w.End)
	return SliderView{
		Mode:           s.selector.Mode().String(),
		Window:         w,
		Min:            s.grid.Min(),
		Max:            s.grid.Max(),
		Steps:          s.grid.Len(),
		StartPosition:  start,
		EndPosition:    end,
		SinglePosition: s.selector.SinglePosition(),
		NowPosition:    s.grid.NowPosition(),
		Dragging:       s.selector.Dragging().String(),
		StartLabel:     sd + " " + sc,
		EndLabel:       ed + " " + ec,
		DayMarkers:     s.grid.DayMarkers(),
	}
}

// ChartView is everything the timeline chart draws.
type ChartView struct {
	Variable   *domain.Variable          `json:"variable"`
	Buckets    []domain.AggregatedBucket `json:"buckets"`
	Active     int                       `json:"active"`
	RangeStats domain.ValueStats         `json:"range_stats"`
	BrushStart *int                      `json:"brush_start,omitempty"`
	BrushEnd   *int                      `json:"brush_end,omitempty"`
}

// Chart builds the chart view.
func (s *Session) Chart() ChartView {
	buckets := s.Buckets()
	w := s.window.Get()
	view := ChartView{
		Variable:   s.SelectedVariable(),
		Buckets:    buckets,
		RangeStats: domain.BucketStats(buckets, w),
	}
	view.Active = view.RangeStats.Count
	if si, ei, ok := timeline.BrushIndices(buckets, w); ok {
		view.BrushStart, view.BrushEnd = &si, &ei
	}
	return view
}

// Snapshot is the full dashboard state.
type Snapshot struct {
	SelectedVariable string            `json:"selected_variable"`
	Window           domain.TimeWindow `json:"window"`
	Drawing          bool              `json:"drawing"`
	Stats            domain.ValueStats `json:"stats"`
	Map              MapView           `json:"map"`
	Slider           SliderView        `json:"slider"`
	Chart            ChartView         `json:"chart"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// Snapshot builds every view at once.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SelectedVariable: s.selected,
		Window:           s.window.Get(),
		Drawing:          s.drawing.IsDrawing(),
		Stats:            s.Stats(),
		Map:              s.Map(),
		Slider:           s.Slider(),
		Chart:            s.Chart(),
		GeneratedAt:      domain.Now().UTC(),
	}
}
