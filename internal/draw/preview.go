package draw

import "github.com/couchcryptid/sensor-map-dashboard/internal/domain"

// Segment is a straight edge between two vertices.
type Segment struct {
	From domain.LatLng `json:"from"`
	To   domain.LatLng `json:"to"`
}

// Preview is what the map draws for an in-progress session.
type Preview struct {
	Drawing  bool            `json:"drawing"`
	Vertices []domain.LatLng `json:"vertices"`
	Segments []Segment       `json:"segments"`
	// Closing joins the last vertex back to the first once the ring is valid.
	Closing *Segment `json:"closing,omitempty"`
}

// Preview returns the vertices, the edges between consecutive vertices, and
// the closing edge when there are enough vertices to commit.
func (m *Machine) Preview() Preview {
	pv := Preview{
		Drawing:  m.state == Drawing,
		Vertices: m.Vertices(),
		Segments: []Segment{},
	}
	for i := 1; i < len(m.vertices); i++ {
		pv.Segments = append(pv.Segments, Segment{From: m.vertices[i-1], To: m.vertices[i]})
	}
	if len(m.vertices) >= domain.MinPolygonVertices {
		pv.Closing = &Segment{From: m.vertices[len(m.vertices)-1], To: m.vertices[0]}
	}
	return pv
}
