// Command validate performs integrity checks on a SQLite dataset before it is
// served with DATA_SOURCE=sqlite. It verifies variable definitions, point
// coordinates and readings, region geometry, and cross-references between them.
//
// Usage:
//
//	go run ./cmd/validate -db data/sensors.db
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"regexp"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-map-dashboard/internal/region"
	"github.com/couchcryptid/sensor-map-dashboard/internal/source"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "", "path to the SQLite dataset")
	flag.Parse()

	if *dbPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(*dbPath))
}

func run(dbPath string) int {
	loader := &source.SQLite{Path: dbPath}
	ds, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", dbPath, err)
		return 1
	}
	fmt.Printf("loaded %d variables, %d points, %d regions\n", len(ds.Variables), len(ds.Points), len(ds.Polygons))

	phases := []*phase{
		validateVariables(ds.Variables),
		validatePoints(ds.Points, ds.Variables),
		validateRegions(ds.Polygons),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s (%d errors)\n", p.name, len(p.errors))
		for _, e := range p.errors[:min(20, len(p.errors))] {
			fmt.Printf("      %s\n", e)
		}
		if len(p.errors) > 20 {
			fmt.Printf("      ... and %d more\n", len(p.errors)-20)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func validateVariables(vars []domain.Variable) *phase {
	p := &phase{name: "variables"}
	if len(vars) == 0 {
		p.errorf("no variables defined")
	}
	seen := map[string]bool{}
	for _, v := range vars {
		if v.ID == "" {
			p.errorf("variable with empty id")
			continue
		}
		if seen[v.ID] {
			p.errorf("%s: duplicate id", v.ID)
		}
		seen[v.ID] = true
		if !hexColor.MatchString(v.Color) {
			p.errorf("%s: color %q is not #rrggbb", v.ID, v.Color)
		}
		if v.Min > v.Max {
			p.errorf("%s: min %g exceeds max %g", v.ID, v.Min, v.Max)
		}
	}
	return p
}

func validatePoints(points []domain.SamplePoint, vars []domain.Variable) *phase {
	p := &phase{name: "points"}
	known := map[string]bool{}
	for _, v := range vars {
		known[v.ID] = true
	}
	ids := map[string]bool{}
	for _, pt := range points {
		if ids[pt.ID] {
			p.errorf("%s: duplicate id", pt.ID)
		}
		ids[pt.ID] = true
		checkCoordinates(p, pt)
		if len(pt.Values) == 0 {
			p.errorf("%s: no readings", pt.ID)
		}
		for id, v := range pt.Values {
			if !known[id] {
				p.errorf("%s: reading for unknown variable %q", pt.ID, id)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("%s: %s is not finite", pt.ID, id)
			}
		}
	}
	return p
}

func checkCoordinates(p *phase, pt domain.SamplePoint) {
	if pt.Latitude < -90 || pt.Latitude > 90 {
		p.errorf("%s: latitude %g out of range", pt.ID, pt.Latitude)
	}
	if pt.Longitude < -180 || pt.Longitude > 180 {
		p.errorf("%s: longitude %g out of range", pt.ID, pt.Longitude)
	}
	if pt.Timestamp <= 0 {
		p.errorf("%s: timestamp %d is not positive", pt.ID, pt.Timestamp)
	}
}

func validateRegions(polygons []domain.Polygon) *phase {
	p := &phase{name: "regions"}
	store, _ := region.NewStore()
	for _, poly := range polygons {
		if err := store.Add(poly); err != nil {
			p.errorf("%s: %v", poly.ID, err)
		}
		if poly.Opacity < 0 || poly.Opacity > 1 {
			p.errorf("%s: opacity %g outside [0, 1]", poly.ID, poly.Opacity)
		}
		if len(poly.Vertices) >= domain.MinPolygonVertices && region.NewShape(poly).AreaSquareMeters() == 0 {
			p.errorf("%s: zero area", poly.ID)
		}
	}
	return p
}
