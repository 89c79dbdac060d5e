// Package dashboard wires the map, the timeline slider, the chart brush, and
// the region tools around one shared state. A Session owns every piece of
// mutable state explicitly; display adapters read views from it and feed input
// events into it.
//
// A Session is not safe for concurrent use. Callers serialize input events,
// which makes each event handler atomic to any observer.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/draw"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-map-dashboard/internal/region"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
)

// Notifier receives state changes. Implementations must not block.
type Notifier interface {
	Notify(event domain.ChangeEvent)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Notify(domain.ChangeEvent) {}

// Options configures a Session.
type Options struct {
	Reference       time.Time
	DaysBefore      int
	DaysAfter       int
	DefaultVariable string
	Mode            timeline.Mode
	// IDFunc overrides polygon identity generation.
	IDFunc draw.IDFunc
}

// Session is the dashboard state.
type Session struct {
	variables []domain.Variable
	points    []domain.SamplePoint
	selected  string

	grid     *timeline.Grid
	window   *timeline.Window
	selector *timeline.Selector
	regions  *region.Store
	drawing  *draw.Machine

	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New builds a session over ds. The window starts as the whole grid; seed
// regions that fail validation are logged and skipped.
func New(ds domain.Dataset, opts Options, notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Session {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	grid := timeline.NewGrid(opts.Reference, opts.DaysBefore, opts.DaysAfter)
	window := timeline.NewWindow(grid.Bounds())

	regions, errs := region.NewStore(ds.Polygons...)
	for _, err := range errs {
		logger.Warn("skipping seed region", "error", err)
	}

	var drawOpts []draw.Option
	if opts.IDFunc != nil {
		drawOpts = append(drawOpts, draw.WithIDFunc(opts.IDFunc))
	}

	s := &Session{
		variables: ds.Variables,
		points:    ds.Points,
		selected:  opts.DefaultVariable,
		grid:      grid,
		window:    window,
		regions:   regions,
		drawing:   draw.NewMachine(regions, drawOpts...),
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
	}
	s.selector = timeline.NewSelector(grid, window, opts.Mode)
	window.OnChange(s.windowChanged)

	metrics.Regions.Set(float64(regions.Len()))
	metrics.FilteredPoints.Set(float64(len(s.FilteredPoints())))
	logger.Info("dashboard session ready",
		"variables", len(ds.Variables),
		"points", len(ds.Points),
		"regions", regions.Len(),
		"grid_start", time.Unix(grid.Min(), 0).UTC(),
		"grid_end", time.Unix(grid.Max(), 0).UTC(),
	)
	return s
}

// CheckReadiness reports whether the session has data to show.
func (s *Session) CheckReadiness(_ context.Context) error {
	if len(s.variables) == 0 {
		return errors.New("dataset has no variables")
	}
	return nil
}

func (s *Session) publish(ev domain.ChangeEvent) {
	ev.OccurredAt = domain.Now().UTC()
	s.metrics.EventsHandled.WithLabelValues(string(ev.Kind)).Inc()
	s.notifier.Notify(ev)
}

func (s *Session) windowChanged(w domain.TimeWindow) {
	s.metrics.WindowUpdates.Inc()
	s.refreshFiltered()
	s.publish(domain.ChangeEvent{Kind: domain.ChangeWindow, Window: &w})
}

func (s *Session) refreshFiltered() {
	s.metrics.FilteredPoints.Set(float64(len(s.FilteredPoints())))
}

// Variables returns the known variables.
func (s *Session) Variables() []domain.Variable { return s.variables }

// SelectedVariableID returns the selected id, which need not be known.
func (s *Session) SelectedVariableID() string { return s.selected }

// SelectedVariable looks up the selected variable.
func (s *Session) SelectedVariable() *domain.Variable {
	for i := range s.variables {
		if s.variables[i].ID == s.selected {
			return &s.variables[i]
		}
	}
	return nil
}

// SelectVariable changes the selected variable. Unknown ids are accepted and
// produce empty views.
func (s *Session) SelectVariable(id string) {
	if id == s.selected {
		return
	}
	s.selected = id
	s.refreshFiltered()
	s.publish(domain.ChangeEvent{Kind: domain.ChangeVariable, VariableID: id})
}

// Window returns the shared time window.
func (s *Session) Window() domain.TimeWindow { return s.window.Get() }

// Grid returns the timeline grid.
func (s *Session) Grid() *timeline.Grid { return s.grid }

// FilteredPoints returns the points in the window that carry the selected variable.
func (s *Session) FilteredPoints() []domain.SamplePoint {
	return domain.FilterPoints(s.points, s.selected, s.window.Get())
}

// Buckets aggregates the filtered points for the timeline chart.
func (s *Session) Buckets() []domain.AggregatedBucket {
	return domain.Aggregate(s.FilteredPoints(), s.selected)
}

// Stats summarizes the selected variable over the filtered points.
func (s *Session) Stats() domain.ValueStats {
	return domain.PointStats(s.FilteredPoints(), s.selected)
}

// RangeStats summarizes the bucket means inside the window.
func (s *Session) RangeStats() domain.ValueStats {
	return domain.BucketStats(s.Buckets(), s.window.Get())
}

// Center is where the map is centered.
func (s *Session) Center() domain.LatLng {
	return domain.Center(s.FilteredPoints())
}
