package dashboard

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/draw"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2025, time.August, 4, 12, 30, 0, 0, time.UTC)

// Grid entries for reference with one day either side.
func hour(i int) int64 {
	return time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour).Unix()
}

type recorder struct {
	events []domain.ChangeEvent
}

func (r *recorder) Notify(ev domain.ChangeEvent) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []domain.ChangeKind {
	out := make([]domain.ChangeKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func testDataset() domain.Dataset {
	return domain.Dataset{
		Variables: []domain.Variable{
			{ID: "temperature", DisplayName: "Temperature", Color: "#ef4444", Unit: "°C", Min: -10, Max: 40},
			{ID: "humidity", DisplayName: "Humidity", Color: "#3b82f6", Unit: "%", Min: 0, Max: 100},
		},
		Points: []domain.SamplePoint{
			{ID: "p1", Latitude: 40.71, Longitude: -74.01, Timestamp: hour(10), Values: map[string]float64{"temperature": 20, "humidity": 55}},
			{ID: "p2", Latitude: 40.73, Longitude: -73.99, Timestamp: hour(10), Values: map[string]float64{"temperature": 30}},
			{ID: "p3", Latitude: 40.80, Longitude: -74.00, Timestamp: hour(20), Values: map[string]float64{"temperature": 40}},
			{ID: "p4", Latitude: 40.72, Longitude: -74.00, Timestamp: hour(40), Values: map[string]float64{"humidity": 80}},
		},
		Polygons: []domain.Polygon{{
			ID:       "zone-1",
			Name:     "High Temperature Zone",
			Vertices: []domain.LatLng{{Lat: 40.70, Lng: -74.02}, {Lat: 40.70, Lng: -73.98}, {Lat: 40.74, Lng: -73.98}, {Lat: 40.74, Lng: -74.02}},
			Color:    "#ef4444",
			Opacity:  0.3,
			Metadata: map[string]any{"type": "temperature_zone", "threshold": 30.0},
		}},
	}
}

func newTestSession(t *testing.T) (*Session, *recorder, *observability.Metrics) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(reference))
	t.Cleanup(func() { domain.SetClock(nil) })

	n := 0
	rec := &recorder{}
	metrics := observability.NewMetricsForTesting()
	s := New(testDataset(), Options{
		Reference:       reference,
		DaysBefore:      1,
		DaysAfter:       1,
		DefaultVariable: "temperature",
		Mode:            timeline.ModeRange,
		IDFunc: func() draw.IDFunc {
			return func() string { n++; return fmt.Sprintf("polygon-%d", n) }
		}(),
	}, rec, slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	return s, rec, metrics
}

func TestNew_InitialState(t *testing.T) {
	s, rec, metrics := newTestSession(t)

	assert.Equal(t, domain.TimeWindow{Start: hour(0), End: hour(60)}, s.Window())
	assert.Equal(t, timeline.ModeRange, s.SliderMode())
	assert.False(t, s.Drawing())
	assert.Len(t, s.Regions(), 1)
	assert.Len(t, s.FilteredPoints(), 3)
	assert.Empty(t, rec.events)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.FilteredPoints), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Regions), 1e-9)
	require.NoError(t, s.CheckReadiness(t.Context()))
}

func TestSession_CheckReadinessWithoutVariables(t *testing.T) {
	s := New(domain.Dataset{}, Options{Reference: reference}, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	assert.Error(t, s.CheckReadiness(t.Context()))
}

func TestSession_SelectVariable(t *testing.T) {
	s, rec, _ := newTestSession(t)

	s.SelectVariable("humidity")
	assert.Equal(t, "Humidity", s.SelectedVariable().DisplayName)
	assert.Equal(t, []string{"p1", "p4"}, pointIDs(s.FilteredPoints()))

	s.SelectVariable("humidity")
	require.Len(t, rec.events, 1, "reselecting is not a change")
	assert.Equal(t, domain.ChangeVariable, rec.events[0].Kind)
	assert.Equal(t, "humidity", rec.events[0].VariableID)
	assert.Equal(t, reference, rec.events[0].OccurredAt)

	s.SelectVariable("unknown")
	assert.Nil(t, s.SelectedVariable())
	assert.Empty(t, s.FilteredPoints())
	assert.Empty(t, s.Buckets())
}

func pointIDs(ps []domain.SamplePoint) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSession_WindowDrivesFilterAndStats(t *testing.T) {
	s, rec, metrics := newTestSession(t)

	require.True(t, s.PointerDown(timeline.HandleEnd))
	// 15/60 of the track lands on hour 15.
	w := s.PointerMove(25)
	s.PointerUp()
	assert.Equal(t, domain.TimeWindow{Start: hour(0), End: hour(15)}, w)

	assert.Equal(t, []string{"p1", "p2"}, pointIDs(s.FilteredPoints()))
	assert.Equal(t, domain.ValueStats{Count: 2, Mean: 25, Min: 20, Max: 30}, s.Stats())
	assert.InDelta(t, 40.72, s.Center().Lat, 1e-9)

	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.ChangeWindow, rec.events[0].Kind)
	assert.Equal(t, w, *rec.events[0].Window)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.WindowUpdates), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FilteredPoints), 1e-9)
}

func TestSession_ChartAndBrush(t *testing.T) {
	s, _, _ := newTestSession(t)

	want := []domain.AggregatedBucket{
		{Timestamp: hour(10), Mean: 25, Min: 20, Max: 30, Count: 2},
		{Timestamp: hour(20), Mean: 40, Min: 40, Max: 40, Count: 1},
	}
	if diff := cmp.Diff(want, s.Buckets()); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}

	require.True(t, s.Brush(1, 1))
	assert.Equal(t, domain.TimeWindow{Start: hour(20), End: hour(20)}, s.Window())

	// The chart now only holds the bucket inside the brushed window.
	chart := s.Chart()
	if diff := cmp.Diff(want[1:], chart.Buckets); diff != "" {
		t.Errorf("chart buckets mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, chart.Active)
	assert.Equal(t, domain.ValueStats{Count: 1, Mean: 40, Min: 40, Max: 40}, chart.RangeStats)
	require.NotNil(t, chart.BrushStart)
	assert.Equal(t, 0, *chart.BrushStart)
	assert.Equal(t, 0, *chart.BrushEnd)

	si, ei, ok := s.BrushIndices()
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, []int{si, ei})
}

func TestSession_ChartFollowsWindow(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.SetWindow(hour(10), hour(10))
	assert.Equal(t, domain.Aggregate(s.FilteredPoints(), "temperature"), s.Chart().Buckets)
	assert.Equal(t, []domain.AggregatedBucket{
		{Timestamp: hour(10), Mean: 25, Min: 20, Max: 30, Count: 2},
	}, s.Chart().Buckets)

	// No temperature readings between hours 30 and 60.
	s.SetWindow(hour(30), hour(60))
	chart := s.Chart()
	assert.Empty(t, chart.Buckets)
	assert.Zero(t, chart.Active)
	assert.Nil(t, chart.BrushStart)
	assert.Nil(t, chart.BrushEnd)

	assert.False(t, s.Brush(0, 0))
	assert.Equal(t, domain.TimeWindow{Start: hour(30), End: hour(60)}, s.Window())
}

func TestSession_SliderMode(t *testing.T) {
	s, rec, _ := newTestSession(t)
	s.ClickTrack(10)

	assert.Equal(t, timeline.ModeSingle, s.ToggleSliderMode())
	w := s.Window()
	assert.Equal(t, w.Start, w.End)

	s.SetSliderMode(timeline.ModeSingle)
	// The collapse publishes its window before the mode change.
	assert.Equal(t, []domain.ChangeKind{domain.ChangeWindow, domain.ChangeWindow, domain.ChangeSliderMode}, rec.kinds())
	assert.Equal(t, "single", rec.events[2].Mode)

	// In single mode a direct write collapses to start.
	assert.Equal(t, domain.TimeWindow{Start: hour(5), End: hour(5)}, s.SetWindow(hour(5), hour(9)))
}

func TestSession_DrawRegion(t *testing.T) {
	s, rec, metrics := newTestSession(t)

	s.EnterDrawing()
	require.True(t, s.Drawing())
	square := []domain.LatLng{{Lat: 40.70, Lng: -74.00}, {Lat: 40.70, Lng: -73.95}, {Lat: 40.75, Lng: -73.95}, {Lat: 40.75, Lng: -74.00}}

	s.MapClick(square[0])
	s.MapClick(square[1])
	_, ok, err := s.MapDoubleClick()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, s.Drawing())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PolygonRejected), 1e-9)

	s.MapClick(square[2])
	s.MapClick(square[3])
	assert.NotNil(t, s.DrawPreview().Closing)

	p, ok, err := s.MapDoubleClick()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "polygon-1", p.ID)
	assert.Equal(t, square, p.Vertices)
	assert.Equal(t, "Polygon 1754310600000", p.Name)
	assert.False(t, s.Drawing())
	assert.Empty(t, s.DrawPreview().Vertices)
	assert.Equal(t, []string{"zone-1", "polygon-1"}, regionIDs(s.Regions()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.PolygonCommits), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.Regions), 1e-9)

	assert.Equal(t, []domain.ChangeKind{
		domain.ChangeDrawingMode,
		domain.ChangeRegionCreated,
		domain.ChangeDrawingMode,
	}, rec.kinds())
	assert.True(t, *rec.events[0].Drawing)
	assert.Equal(t, "polygon-1", rec.events[1].Region.ID)
	assert.False(t, *rec.events[2].Drawing)
}

func regionIDs(ps []domain.Polygon) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestSession_ExitDrawingDiscards(t *testing.T) {
	s, rec, _ := newTestSession(t)
	s.EnterDrawing()
	s.MapClick(domain.LatLng{Lat: 1, Lng: 1})
	s.ExitDrawing()
	s.ExitDrawing()

	assert.False(t, s.Drawing())
	assert.Len(t, s.Regions(), 1)
	assert.Len(t, rec.events, 2)
	assert.False(t, s.MapClick(domain.LatLng{Lat: 2, Lng: 2}))
}

func TestSession_DeleteAndUndo(t *testing.T) {
	s, rec, metrics := newTestSession(t)

	assert.False(t, s.DeleteRegion("missing"))
	assert.Empty(t, rec.events)

	p, ok := s.UndoLastRegion()
	require.True(t, ok)
	assert.Equal(t, "zone-1", p.ID)
	_, ok = s.UndoLastRegion()
	assert.False(t, ok)

	require.Len(t, rec.events, 1)
	assert.Equal(t, domain.ChangeRegionDeleted, rec.events[0].Kind)
	assert.Equal(t, "zone-1", rec.events[0].RegionID)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.Regions), 1e-9)
}

func TestSession_RegionSummary(t *testing.T) {
	s, _, _ := newTestSession(t)

	sum, ok := s.RegionSummary("zone-1")
	require.True(t, ok)
	// p1 and p2 are inside; p3 is north of the zone.
	assert.Equal(t, domain.ValueStats{Count: 2, Mean: 25, Min: 20, Max: 30}, sum.Stats)
	assert.Greater(t, sum.AreaM2, 0.0)

	_, ok = s.RegionSummary("missing")
	assert.False(t, ok)

	b, err := s.RegionsGeoJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":"zone-1"`)
}
