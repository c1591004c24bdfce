// Package capture holds the per-editor drawing session: a small state
// machine that turns map clicks into a single committed geometry.
package capture

import (
	"fmt"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/domain/geo"
)

// State is the session lifecycle phase.
type State string

// Session states.
const (
	StateIdle      State = "idle"
	StateDrawing   State = "drawing"
	StateCommitted State = "committed"
)

// Kind is the geometry kind being drawn.
type Kind string

// Draw kinds.
const (
	KindPoint      Kind = Kind(domain.TypePoint)
	KindLineString Kind = Kind(domain.TypeLineString)
	KindPolygon    Kind = Kind(domain.TypePolygon)
)

// IsValid checks if the draw kind is supported.
func (k Kind) IsValid() bool {
	return k == KindPoint || k == KindLineString || k == KindPolygon
}

// Observer receives the current captured geometry after every state
// transition, nil when nothing is captured. Called synchronously.
type Observer func(*domain.Geometry)

// Session is the drawing state machine. It is owned by exactly one editor
// instance and holds at most one committed geometry; starting a new
// drawing always replaces, never accumulates.
type Session struct {
	state    State
	kind     Kind
	vertices []domain.LonLat
	captured *domain.Geometry
	observer Observer
}

// NewSession creates an idle session. observer may be nil.
func NewSession(observer Observer) *Session {
	return &Session{state: StateIdle, observer: observer}
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// DrawKind returns the active draw kind while drawing.
func (s *Session) DrawKind() Kind { return s.kind }

// Captured returns the committed geometry, nil when none is held.
func (s *Session) Captured() *domain.Geometry { return s.captured }

// Start enters drawing mode for the given kind. A drawing already in
// progress is cancelled first and any committed geometry is discarded.
func (s *Session) Start(kind Kind) error {
	if !kind.IsValid() {
		return domain.NewValidation("draw", fmt.Sprintf("unsupported draw kind %q", kind))
	}
	s.state = StateDrawing
	s.kind = kind
	s.vertices = nil
	s.captured = nil
	s.notify()
	return nil
}

// AddVertex records a click at the given coordinate. A point kind commits
// immediately on the first vertex.
func (s *Session) AddVertex(c domain.LonLat) error {
	if s.state != StateDrawing {
		return domain.NewValidation("draw", "no drawing in progress")
	}
	if !c.Valid() {
		return domain.NewValidation("draw", fmt.Sprintf("coordinate out of range: lon=%v lat=%v", c.Lon, c.Lat))
	}
	if s.kind == KindPoint {
		g, err := domain.NewPoint(c)
		if err != nil {
			return err
		}
		s.commit(g)
		return nil
	}
	s.vertices = append(s.vertices, c)
	return nil
}

// Finish closes the shape (double-click or explicit finish). It reports
// whether a geometry was committed; an under-specified shape (line with
// fewer than 2 vertices, polygon with fewer than 3 distinct vertices)
// leaves the session drawing and commits nothing.
func (s *Session) Finish() bool {
	if s.state != StateDrawing {
		return false
	}
	var (
		g   domain.Geometry
		err error
	)
	switch s.kind {
	case KindLineString:
		g, err = domain.NewLineString(s.vertices)
	case KindPolygon:
		g, err = domain.NewPolygon([][]domain.LonLat{s.vertices})
	default:
		return false
	}
	if err != nil {
		return false
	}
	s.commit(g)
	return true
}

// PathMeters returns the great-circle length of the vertex chain drawn
// so far, for a live measurement readout. Zero outside drawing mode or
// with fewer than two vertices; for polygons this is the open path, not
// the perimeter.
func (s *Session) PathMeters() float64 {
	if s.state != StateDrawing || len(s.vertices) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(s.vertices); i++ {
		a, b := s.vertices[i-1], s.vertices[i]
		total += geo.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return total
}

// Cancel discards an in-progress drawing and returns to idle.
func (s *Session) Cancel() {
	if s.state != StateDrawing {
		return
	}
	s.toIdle()
}

// Clear drops any captured geometry and returns to idle.
func (s *Session) Clear() {
	if s.state == StateIdle {
		return
	}
	s.toIdle()
}

func (s *Session) commit(g domain.Geometry) {
	s.state = StateCommitted
	s.vertices = nil
	s.captured = &g
	s.notify()
}

func (s *Session) toIdle() {
	s.state = StateIdle
	s.kind = ""
	s.vertices = nil
	s.captured = nil
	s.notify()
}

func (s *Session) notify() {
	if s.observer != nil {
		s.observer(s.captured)
	}
}
