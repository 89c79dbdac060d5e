// Package chart renders the timeline chart (bucket means with min/max bands)
// as PNG or SVG for clients that cannot draw it themselves.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/observability"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there are no buckets to plot.
var ErrNoData = errors.New("no buckets to chart")

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" (default when empty) or "svg".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

const (
	defaultWidth  = 960
	defaultHeight = 320
	neutralHex    = "94a3b8"
)

// Renderer draws bucket series.
type Renderer struct {
	metrics *observability.Metrics
	loc     *time.Location
	width   int
	height  int
}

// NewRenderer creates a renderer labelling times in loc.
func NewRenderer(metrics *observability.Metrics, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{metrics: metrics, loc: loc, width: defaultWidth, height: defaultHeight}
}

// Render writes the chart for buckets of variable v. A nil v is drawn in the
// neutral color without a unit. A non-nil window is marked by its two edges.
func (r *Renderer) Render(w io.Writer, f Format, v *domain.Variable, buckets []domain.AggregatedBucket, window *domain.TimeWindow) error {
	if len(buckets) == 0 {
		return ErrNoData
	}
	start := time.Now()
	defer func() {
		r.metrics.ChartRenderDuration.WithLabelValues(string(f)).Observe(time.Since(start).Seconds())
	}()

	title, unit, hex := "Timeline", "", neutralHex
	if v != nil {
		title = "Timeline - " + v.DisplayName
		unit = v.Unit
		hex = strings.TrimPrefix(v.Color, "#")
	}
	color := drawing.ColorFromHex(hex)

	times := make([]time.Time, 0, len(buckets)+1)
	means := make([]float64, 0, len(buckets)+1)
	mins := make([]float64, 0, len(buckets)+1)
	maxs := make([]float64, 0, len(buckets)+1)
	for _, b := range buckets {
		times = append(times, time.Unix(b.Timestamp, 0).In(r.loc))
		means = append(means, b.Mean)
		mins = append(mins, b.Min)
		maxs = append(maxs, b.Max)
	}
	// go-chart needs a non-zero x range.
	if len(times) == 1 {
		times = append(times, times[0].Add(time.Hour))
		means = append(means, means[0])
		mins = append(mins, mins[0])
		maxs = append(maxs, maxs[0])
	}

	lo, hi := valueRange(mins, maxs)
	var yRange gochart.Range
	if lo == hi {
		yRange = &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	band := gochart.Style{StrokeColor: color.WithAlpha(90), StrokeWidth: 1, StrokeDashArray: []float64{4, 3}}
	series := []gochart.Series{
		gochart.TimeSeries{Name: "min", XValues: times, YValues: mins, Style: band},
		gochart.TimeSeries{Name: "max", XValues: times, YValues: maxs, Style: band},
		gochart.TimeSeries{
			Name:    "mean",
			XValues: times,
			YValues: means,
			Style:   gochart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3},
		},
	}
	if window != nil {
		series = append(series, r.windowSeries(*window, lo, hi, color)...)
	}

	ch := gochart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 2 15:04")},
		YAxis: gochart.YAxis{
			Name:  unit,
			Range: yRange,
			ValueFormatter: func(v any) string {
				if val, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f", val)
				}
				return ""
			},
		},
		Series: series,
	}

	provider := gochart.PNG
	if f == SVG {
		provider = gochart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("render %s chart: %w", f, err)
	}
	return nil
}

func valueRange(mins, maxs []float64) (float64, float64) {
	lo, hi := mins[0], maxs[0]
	for i := range mins {
		lo = min(lo, mins[i])
		hi = max(hi, maxs[i])
	}
	return lo, hi
}

// windowSeries draws the window bounds as vertical lines spanning the data range.
func (r *Renderer) windowSeries(w domain.TimeWindow, lo, hi float64, color drawing.Color) []gochart.Series {
	style := gochart.Style{StrokeColor: color.WithAlpha(160), StrokeWidth: 1}
	edge := func(name string, ts int64) gochart.Series {
		t := time.Unix(ts, 0).In(r.loc)
		return gochart.TimeSeries{Name: name, XValues: []time.Time{t, t}, YValues: []float64{lo, hi}, Style: style}
	}
	return []gochart.Series{edge("window start", w.Start), edge("window end", w.End)}
}
