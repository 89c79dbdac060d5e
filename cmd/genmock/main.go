// Command genmock builds a SQLite dataset for DATA_SOURCE=sqlite. Points come
// from the seeded mock generator, or from a CSV of readings when -csv is set.
// A fixed reference time keeps the output reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -out data/sensors.db -points 1000 -seed 7
//	go run ./cmd/genmock -out data/sensors.db -csv readings.csv
//
// CSV files carry a header of id,lat,lng,timestamp followed by one column per
// variable id. Timestamps are RFC3339; empty cells mean no reading.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/region"
	"github.com/couchcryptid/sensor-map-dashboard/internal/source"
	"github.com/couchcryptid/sensor-map-dashboard/internal/timeline"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2025, time.August, 4, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the SQLite database")
	csvPath := flag.String("csv", "", "optional CSV of readings to import instead of generating points")
	points := flag.Int("points", 500, "number of generated points")
	seed := flag.Int64("seed", 1, "generator seed")
	days := flag.Int("days", 15, "grid days either side of the reference")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock so the grid, and therefore every point timestamp, is stable.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate))
	defer domain.SetClock(nil)

	ctx := context.Background()
	var ds domain.Dataset
	if *csvPath != "" {
		pts, err := readCSV(*csvPath)
		if err != nil {
			return fmt.Errorf("processing %s: %w", *csvPath, err)
		}
		ds = domain.Dataset{Variables: source.Variables(), Points: pts, Polygons: source.SeedZones()}
	} else {
		grid := timeline.NewGrid(domain.Now(), *days, *days)
		loader := &source.Mock{Points: *points, Seed: *seed, Timestamps: grid.Timestamps()}
		var err error
		if ds, err = loader.Load(ctx); err != nil {
			return fmt.Errorf("generating points: %w", err)
		}
	}
	log.Printf("dataset: %d variables, %d points, %d regions", len(ds.Variables), len(ds.Points), len(ds.Polygons))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := source.Save(ctx, *out, ds); err != nil {
		return fmt.Errorf("writing database: %w", err)
	}
	log.Printf("wrote database: %s", *out)

	printStats(ds)
	return nil
}

func readCSV(path string) ([]domain.SamplePoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"id", "lat", "lng", "timestamp"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	pts := make([]domain.SamplePoint, 0, len(rows)-1)
	for line, row := range rows[1:] {
		p, err := parseRow(row, header, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func parseRow(row, header []string, colIdx map[string]int) (domain.SamplePoint, error) {
	lat, err := strconv.ParseFloat(get(row, colIdx, "lat"), 64)
	if err != nil {
		return domain.SamplePoint{}, fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(get(row, colIdx, "lng"), 64)
	if err != nil {
		return domain.SamplePoint{}, fmt.Errorf("lng: %w", err)
	}
	ts, err := time.Parse(time.RFC3339, get(row, colIdx, "timestamp"))
	if err != nil {
		return domain.SamplePoint{}, fmt.Errorf("timestamp: %w", err)
	}

	p := domain.SamplePoint{
		ID:        get(row, colIdx, "id"),
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts.Unix(),
		Values:    map[string]float64{},
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "id" || h == "lat" || h == "lng" || h == "timestamp" || i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return domain.SamplePoint{}, fmt.Errorf("%s: %w", h, err)
		}
		p.Values[h] = v
	}
	return p, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func printStats(ds domain.Dataset) {
	fmt.Println("\n=== Dataset stats ===")
	fmt.Printf("Points: %d\n", len(ds.Points))

	all := domain.TimeWindow{Start: minTimestamp(ds.Points), End: maxTimestamp(ds.Points)}
	fmt.Printf("Time range: %s .. %s\n",
		time.Unix(all.Start, 0).UTC().Format(time.RFC3339), time.Unix(all.End, 0).UTC().Format(time.RFC3339))

	ids := make([]string, 0, len(ds.Variables))
	for _, v := range ds.Variables {
		ids = append(ids, v.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := domain.PointStats(ds.Points, id)
		fmt.Printf("  %-12s count=%d mean=%.2f min=%.2f max=%.2f\n", id, s.Count, s.Mean, s.Min, s.Max)
	}

	fmt.Println("\nRegions:")
	for _, p := range ds.Polygons {
		sum := region.Summarize(p, ds.Points, "temperature")
		fmt.Printf("  %-8s %-24s points=%d area=%.1fkm² mean temperature=%.2f\n",
			p.ID, p.Name, sum.Stats.Count, sum.AreaM2/1e6, sum.Stats.Mean)
	}
}

func minTimestamp(pts []domain.SamplePoint) int64 {
	if len(pts) == 0 {
		return 0
	}
	m := pts[0].Timestamp
	for _, p := range pts[1:] {
		m = min(m, p.Timestamp)
	}
	return m
}

func maxTimestamp(pts []domain.SamplePoint) int64 {
	if len(pts) == 0 {
		return 0
	}
	m := pts[0].Timestamp
	for _, p := range pts[1:] {
		m = max(m, p.Timestamp)
	}
	return m
}
