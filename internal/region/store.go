// Package region holds the user's regions of interest: an insertion-ordered
// store, spherical geometry over stored polygons, and GeoJSON export.
package region

import (
	"errors"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
)

var (
	// ErrDuplicateID is returned when a polygon id is already stored.
	ErrDuplicateID = errors.New("duplicate region id")
	// ErrTooFewVertices is returned for polygons that cannot close a ring.
	ErrTooFewVertices = errors.New("region needs at least 3 vertices")
)

// Store is an insertion-ordered list of polygons with unique ids.
// It is not safe for concurrent use.
type Store struct {
	polygons []domain.Polygon
}

// NewStore creates a store seeded with polygons. Seeds that fail validation
// are skipped and returned alongside.
func NewStore(seed ...domain.Polygon) (*Store, []error) {
	s := &Store{}
	var errs []error
	for _, p := range seed {
		if err := s.Add(p); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errs
}

// Add appends p.
func (s *Store) Add(p domain.Polygon) error {
	if len(p.Vertices) < domain.MinPolygonVertices {
		return ErrTooFewVertices
	}
	if s.index(p.ID) >= 0 {
		return ErrDuplicateID
	}
	s.polygons = append(s.polygons, p)
	return nil
}

// Remove deletes the polygon with id. It reports whether one was found.
func (s *Store) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.polygons = append(s.polygons[:i], s.polygons[i+1:]...)
	return true
}

// RemoveLast deletes the most recently added polygon.
func (s *Store) RemoveLast() (domain.Polygon, bool) {
	if len(s.polygons) == 0 {
		return domain.Polygon{}, false
	}
	last := s.polygons[len(s.polygons)-1]
	s.polygons = s.polygons[:len(s.polygons)-1]
	return last, true
}

// Get finds a polygon by id.
func (s *Store) Get(id string) (domain.Polygon, bool) {
	if i := s.index(id); i >= 0 {
		return s.polygons[i], true
	}
	return domain.Polygon{}, false
}

// List returns the polygons in insertion order.
func (s *Store) List() []domain.Polygon {
	out := make([]domain.Polygon, len(s.polygons))
	copy(out, s.polygons)
	return out
}

// Len returns the number of stored polygons.
func (s *Store) Len() int { return len(s.polygons) }

func (s *Store) index(id string) int {
	for i, p := range s.polygons {
		if p.ID == id {
			return i
		}
	}
	return -1
}
