// Package draw implements the polygon drawing state machine: clicks on the map
// accumulate vertices while drawing, and a double-click closes the ring into a
// stored region.
package draw

import (
	"fmt"

	"github.com/couchcryptid/sensor-map-dashboard/internal/domain"
	"github.com/google/uuid"
)

// State is the machine state.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Store receives committed polygons.
type Store interface {
	Add(p domain.Polygon) error
}

// IDFunc generates polygon identities.
type IDFunc func() string

// NewID returns a random "polygon-<uuid>" identity.
func NewID() string {
	return "polygon-" + uuid.NewString()
}

// Machine accumulates vertices while Drawing and commits them to a Store.
// It is not safe for concurrent use.
type Machine struct {
	state    State
	vertices []domain.LatLng
	store    Store
	newID    IDFunc
}

// Option configures a Machine.
type Option func(*Machine)

// WithIDFunc overrides the identity generator.
func WithIDFunc(f IDFunc) Option {
	return func(m *Machine) { m.newID = f }
}

// NewMachine creates an idle machine committing into store.
func NewMachine(store Store, opts ...Option) *Machine {
	m := &Machine{store: store, newID: NewID}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// IsDrawing reports whether the machine is in Drawing.
func (m *Machine) IsDrawing() bool { return m.state == Drawing }

// Vertices returns a copy of the accumulated vertices.
func (m *Machine) Vertices() []domain.LatLng {
	out := make([]domain.LatLng, len(m.vertices))
	copy(out, m.vertices)
	return out
}

// Enter starts a drawing session with no vertices. Entering while already
// drawing keeps the current session.
func (m *Machine) Enter() bool {
	if m.state == Drawing {
		return false
	}
	m.state = Drawing
	m.vertices = m.vertices[:0]
	return true
}

// Exit cancels the session and discards its vertices.
func (m *Machine) Exit() bool {
	if m.state == Idle {
		return false
	}
	m.state = Idle
	m.vertices = nil
	return true
}

// Toggle enters or exits drawing mode and returns the new state.
func (m *Machine) Toggle() State {
	if m.state == Drawing {
		m.Exit()
	} else {
		m.Enter()
	}
	return m.state
}

// Click appends a vertex. Clicks while Idle are ignored.
func (m *Machine) Click(p domain.LatLng) bool {
	if m.state != Drawing {
		return false
	}
	m.vertices = append(m.vertices, p)
	return true
}

// Commit closes the ring. With fewer than domain.MinPolygonVertices vertices,
// or while Idle, it does nothing and returns false. On success the polygon is
// added to the store and the machine returns to Idle.
func (m *Machine) Commit() (domain.Polygon, bool, error) {
	if m.state != Drawing || len(m.vertices) < domain.MinPolygonVertices {
		return domain.Polygon{}, false, nil
	}
	p := domain.NewUserPolygon(m.newID(), m.vertices)
	if err := m.store.Add(p); err != nil {
		return domain.Polygon{}, false, fmt.Errorf("store polygon %s: %w", p.ID, err)
	}
	m.state = Idle
	m.vertices = nil
	return p, true, nil
}

// DoubleClick is the map gesture for Commit.
func (m *Machine) DoubleClick() (domain.Polygon, bool, error) {
	return m.Commit()
}
