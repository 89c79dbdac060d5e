package region

import (
	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for area conversion.
const EarthRadiusMeters = 6371000.0

// Shape is a polygon projected onto the unit sphere. Its interior is the
// smaller of the two regions bounded by the ring, whatever the drawing
// direction.
type Shape struct {
	loop     *s2.Loop
	vertices []domain.LatLng
}

// NewShape builds the spherical loop for p. Callers must pass a polygon with
// at least domain.MinPolygonVertices vertices.
func NewShape(p domain.Polygon) *Shape {
	pts := make([]s2.Point, 0, len(p.Vertices))
	for _, v := range p.Vertices {
		pts = append(pts, toPoint(v))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return &Shape{loop: loop, vertices: p.Vertices}
}

func toPoint(v domain.LatLng) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(v.Lat, v.Lng))
}

// Contains reports whether ll lies inside the shape.
func (s *Shape) Contains(ll domain.LatLng) bool {
	return s.loop.ContainsPoint(toPoint(ll))
}

// AreaSquareMeters returns the enclosed surface area.
func (s *Shape) AreaSquareMeters() float64 {
	return s.loop.Area() * EarthRadiusMeters * EarthRadiusMeters
}

// Centroid returns the area-weighted centroid. Degenerate rings fall back to
// the vertex mean.
func (s *Shape) Centroid() domain.LatLng {
	c := s.loop.Centroid()
	if c.Norm() == 0 {
		var lat, lng float64
		for _, v := range s.vertices {
			lat += v.Lat
			lng += v.Lng
		}
		n := float64(len(s.vertices))
		return domain.LatLng{Lat: lat / n, Lng: lng / n}
	}
	ll := s2.LatLngFromPoint(s2.Point{Vector: c.Normalize()})
	return domain.LatLng{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}

// PointsWithin returns, in input order, the points inside the shape.
func (s *Shape) PointsWithin(points []domain.SamplePoint) []domain.SamplePoint {
	out := make([]domain.SamplePoint, 0)
	for _, pt := range points {
		if s.Contains(pt.Position()) {
			out = append(out, pt)
		}
	}
	return out
}

// Summary describes the selected variable inside one region.
type Summary struct {
	RegionID   string            `json:"region_id"`
	Name       string            `json:"name"`
	VariableID string            `json:"variable_id"`
	Stats      domain.ValueStats `json:"stats"`
	AreaM2     float64           `json:"area_m2"`
	Centroid   domain.LatLng     `json:"centroid"`
}

// Summarize computes value statistics of variableID over the points inside p.
func Summarize(p domain.Polygon, points []domain.SamplePoint, variableID string) Summary {
	shape := NewShape(p)
	return Summary{
		RegionID:   p.ID,
		Name:       p.Name,
		VariableID: variableID,
		Stats:      domain.PointStats(shape.PointsWithin(points), variableID),
		AreaM2:     shape.AreaSquareMeters(),
		Centroid:   shape.Centroid(),
	}
}
