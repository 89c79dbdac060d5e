package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/api"
	"github.com/couchcryptid/sensor-map-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/sensor-map-dashboard/internal/dashboard"
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2025, time.August, 4, 12, 30, 0, 0, time.UTC)

func hour(i int) int64 {
	return time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour).Unix()
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	domain.SetClock(clockwork.NewFakeClockAt(reference))
	t.Cleanup(func() { domain.SetClock(nil) })

	ds := domain.Dataset{
		Variables: []domain.Variable{
			{ID: "temperature", DisplayName: "Temperature", Color: "#ef4444", Unit: "°C", Min: -10, Max: 40},
			{ID: "humidity", DisplayName: "Humidity", Color: "#3b82f6", Unit: "%", Min: 0, Max: 100},
		},
		Points: []domain.SamplePoint{
			{ID: "p1", Latitude: 40.71, Longitude: -74.01, Timestamp: hour(10), Values: map[string]float64{"temperature": 20, "humidity": 55}},
			{ID: "p2", Latitude: 40.73, Longitude: -73.99, Timestamp: hour(30), Values: map[string]float64{"temperature": 30}},
			{ID: "p3", Latitude: 40.80, Longitude: -74.00, Timestamp: hour(50), Values: map[string]float64{"temperature": 40}},
		},
	}

	n := 0
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	session := dashboard.New(ds, dashboard.Options{
		Reference:       reference,
		DaysBefore:      1,
		DaysAfter:       1,
		DefaultVariable: "temperature",
		Mode:            timeline.ModeRange,
		IDFunc:          func() string { n++; return fmt.Sprintf("polygon-%d", n) },
	}, nil, logger, metrics)

	return api.NewRouter(api.NewHandler(session, chart.NewRenderer(metrics, time.UTC), logger))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Equal(t, 0, env.Code, env.Message)
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type windowBody struct {
	Window domain.TimeWindow `json:"window"`
	Mode   string            `json:"mode"`
}

func TestSnapshot(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/v1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := decode[dashboard.Snapshot](t, rec)
	assert.Equal(t, "temperature", snap.SelectedVariable)
	assert.Equal(t, domain.TimeWindow{Start: hour(0), End: hour(60)}, snap.Window)
	assert.Len(t, snap.Map.Markers, 3)
	assert.Equal(t, 3, snap.Stats.Count)
}

func TestSelectVariable(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/v1/variables/selected", map[string]string{"id": "humidity"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/points", nil)
	points := decode[[]domain.SamplePoint](t, rec)
	require.Len(t, points, 1)
	assert.Equal(t, "p1", points[0].ID)

	rec = do(t, h, http.MethodPut, "/api/v1/variables/selected", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetWindowFiltersPoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/v1/timeline/window", map[string]int64{"start": hour(20), "end": hour(40)})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[windowBody](t, rec)
	assert.Equal(t, domain.TimeWindow{Start: hour(20), End: hour(40)}, body.Window)

	points := decode[[]domain.SamplePoint](t, do(t, h, http.MethodGet, "/api/v1/points", nil))
	require.Len(t, points, 1)
	assert.Equal(t, "p2", points[0].ID)
}

func TestPointerDrag(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/timeline/pointer/down", map[string]string{"handle": "start"})
	assert.True(t, decode[struct{ Accepted bool }](t, rec).Accepted)

	rec = do(t, h, http.MethodPost, "/api/v1/timeline/pointer/move", map[string]float64{"position": 50})
	assert.Equal(t, domain.TimeWindow{Start: hour(30), End: hour(60)}, decode[windowBody](t, rec).Window)

	do(t, h, http.MethodPost, "/api/v1/timeline/pointer/up", nil)

	// A zero position is a valid value, not a missing one.
	rec = do(t, h, http.MethodPost, "/api/v1/timeline/click", map[string]float64{"position": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TimeWindow{Start: hour(0), End: hour(60)}, decode[windowBody](t, rec).Window)

	rec = do(t, h, http.MethodPost, "/api/v1/timeline/pointer/down", map[string]string{"handle": "middle"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/timeline/pointer/move", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSliderMode(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/v1/timeline/mode", map[string]string{"mode": "single"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[windowBody](t, rec)
	assert.Equal(t, "single", body.Mode)
	assert.Equal(t, body.Window.Start, body.Window.End)

	rec = do(t, h, http.MethodPost, "/api/v1/timeline/mode/toggle", nil)
	assert.Equal(t, "range", decode[windowBody](t, rec).Mode)

	rec = do(t, h, http.MethodPut, "/api/v1/timeline/mode", map[string]string{"mode": "both"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartBrush(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/chart/brush", map[string]int{"start_index": 1, "end_index": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TimeWindow{Start: hour(30), End: hour(50)}, decode[windowBody](t, rec).Window)

	view := decode[dashboard.ChartView](t, do(t, h, http.MethodGet, "/api/v1/chart", nil))
	require.Len(t, view.Buckets, 2)
	assert.Equal(t, hour(30), view.Buckets[0].Timestamp)
	assert.Equal(t, 2, view.Active)
	require.NotNil(t, view.BrushStart)
	assert.Equal(t, 0, *view.BrushStart)
	assert.Equal(t, 1, *view.BrushEnd)
}

func TestChartImage(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/chart/image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, h, http.MethodGet, "/api/v1/chart/image?format=svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(t, h, http.MethodGet, "/api/v1/chart/image?format=gif", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	do(t, h, http.MethodPut, "/api/v1/variables/selected", map[string]string{"id": "pressure"})
	rec = do(t, h, http.MethodGet, "/api/v1/chart/image", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDrawAndManageRegions(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/draw/enter", nil)
	assert.Equal(t, map[string]bool{"drawing": true}, decode[map[string]bool](t, rec))

	for _, v := range [][2]float64{{40.70, -74.02}, {40.70, -73.98}, {40.74, -73.98}} {
		rec = do(t, h, http.MethodPost, "/api/v1/draw/click", map[string]float64{"lat": v[0], "lng": v[1]})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/v1/draw/click", map[string]float64{"lat": 120, "lng": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/draw/dblclick", nil)
	created := decode[struct {
		Created bool           `json:"created"`
		Region  domain.Polygon `json:"region"`
	}](t, rec)
	require.True(t, created.Created)
	assert.Equal(t, "polygon-1", created.Region.ID)
	assert.Len(t, created.Region.Vertices, 3)

	regions := decode[[]domain.Polygon](t, do(t, h, http.MethodGet, "/api/v1/regions", nil))
	require.Len(t, regions, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/regions/polygon-1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[struct {
		RegionID string            `json:"region_id"`
		Stats    domain.ValueStats `json:"stats"`
	}](t, rec)
	assert.Equal(t, "polygon-1", summary.RegionID)

	rec = do(t, h, http.MethodGet, "/api/v1/regions/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"polygon-1"`)

	rec = do(t, h, http.MethodDelete, "/api/v1/regions/polygon-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/regions/polygon-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/regions/undo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/regions/missing/summary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDoubleClickBelowThreshold(t *testing.T) {
	h := newTestRouter(t)

	do(t, h, http.MethodPost, "/api/v1/draw/toggle", nil)
	do(t, h, http.MethodPost, "/api/v1/draw/click", map[string]float64{"lat": 40.70, "lng": -74.02})

	rec := do(t, h, http.MethodPost, "/api/v1/draw/dblclick", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Created bool `json:"created"`
	}](t, rec)
	assert.False(t, body.Created)

	preview := decode[struct {
		Drawing  bool            `json:"drawing"`
		Vertices []domain.LatLng `json:"vertices"`
	}](t, do(t, h, http.MethodGet, "/api/v1/draw", nil))
	assert.True(t, preview.Drawing)
	assert.Len(t, preview.Vertices, 1)
}
