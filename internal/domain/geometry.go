package domain

import (
	"fmt"
	"math"

	"github.com/meridian-cloud/meridian/internal/domain/geo"
)

// GeometryType tags the geometry union.
type GeometryType string

// Geometry type constants.
const (
	TypePoint      GeometryType = "Point"
	TypeLineString GeometryType = "LineString"
	TypePolygon    GeometryType = "Polygon"
	TypeCircle     GeometryType = "Circle"
	TypeBounds     GeometryType = "Bounds"
)

// LonLat is a geographic coordinate pair, longitude first (WGS84).
type LonLat struct {
	Lon float64
	Lat float64
}

// Valid checks coordinate ranges: lat in [-90,90], lon in [-180,180].
func (c LonLat) Valid() bool {
	return geo.ValidateCoordinates(c.Lat, c.Lon)
}

// Geometry is the tagged union over point, line string, polygon, circle
// and bounds (immutable value object). Coordinates are stored (lon, lat);
// the wire grammar swaps to (lat, lon) at emission time only.
type Geometry struct {
	typ GeometryType

	point  LonLat
	line   []LonLat
	rings  [][]LonLat
	center LonLat
	radius float64 // meters
	sw, ne LonLat
}

func validCoord(c LonLat, field string) error {
	if !c.Valid() {
		return NewValidation(field, fmt.Sprintf("coordinate out of range: lon=%v lat=%v", c.Lon, c.Lat))
	}
	return nil
}

// NewPoint validates and creates a point geometry.
func NewPoint(c LonLat) (Geometry, error) {
	if err := validCoord(c, "point"); err != nil {
		return Geometry{}, err
	}
	return Geometry{typ: TypePoint, point: c}, nil
}

// NewLineString validates and creates a line string with at least two vertices.
func NewLineString(coords []LonLat) (Geometry, error) {
	if len(coords) < 2 {
		return Geometry{}, NewValidation("linestring", "at least 2 coordinates required")
	}
	for _, c := range coords {
		if err := validCoord(c, "linestring"); err != nil {
			return Geometry{}, err
		}
	}
	line := make([]LonLat, len(coords))
	copy(line, coords)
	return Geometry{typ: TypeLineString, line: line}, nil
}

// NewPolygon validates and creates a polygon. The first ring is the
// exterior boundary. Each ring needs at least 3 distinct vertices; open
// rings are closed by appending the first vertex.
func NewPolygon(rings [][]LonLat) (Geometry, error) {
	if len(rings) == 0 {
		return Geometry{}, NewValidation("polygon", "at least one ring required")
	}
	closed := make([][]LonLat, len(rings))
	for i, ring := range rings {
		if distinctVertices(ring) < 3 {
			return Geometry{}, NewValidation("polygon", "ring requires at least 3 distinct vertices")
		}
		for _, c := range ring {
			if err := validCoord(c, "polygon"); err != nil {
				return Geometry{}, err
			}
		}
		closed[i] = CloseRing(ring)
	}
	return Geometry{typ: TypePolygon, rings: closed}, nil
}

// NewCircle validates and creates a circle with a radius in meters.
func NewCircle(center LonLat, radiusMeters float64) (Geometry, error) {
	if err := validCoord(center, "circle"); err != nil {
		return Geometry{}, err
	}
	if !finitePositive(radiusMeters) {
		return Geometry{}, NewValidation("circle", "radius must be a positive finite number of meters")
	}
	return Geometry{typ: TypeCircle, center: center, radius: radiusMeters}, nil
}

// NewBounds validates and creates a bounding box from its south-west and
// north-east corners. Inverted bounds are rejected, never swapped.
func NewBounds(sw, ne LonLat) (Geometry, error) {
	if err := validCoord(sw, "bounds"); err != nil {
		return Geometry{}, err
	}
	if err := validCoord(ne, "bounds"); err != nil {
		return Geometry{}, err
	}
	if sw.Lat > ne.Lat {
		return Geometry{}, NewValidation("bounds", "min latitude exceeds max latitude")
	}
	if sw.Lon > ne.Lon {
		return Geometry{}, NewValidation("bounds", "min longitude exceeds max longitude")
	}
	return Geometry{typ: TypeBounds, sw: sw, ne: ne}, nil
}

// Type returns the geometry tag. The zero Geometry has an empty tag.
func (g Geometry) Type() GeometryType { return g.typ }

// IsZero reports whether the geometry is unset.
func (g Geometry) IsZero() bool { return g.typ == "" }

// Point returns the coordinate of a point geometry.
func (g Geometry) Point() LonLat { return g.point }

// Line returns the vertices of a line string.
func (g Geometry) Line() []LonLat { return g.line }

// Rings returns the rings of a polygon, exterior first.
func (g Geometry) Rings() [][]LonLat { return g.rings }

// Center returns the center of a circle geometry.
func (g Geometry) Center() LonLat { return g.center }

// RadiusMeters returns the circle radius in meters.
func (g Geometry) RadiusMeters() float64 { return g.radius }

// SW returns the south-west corner of a bounds geometry.
func (g Geometry) SW() LonLat { return g.sw }

// NE returns the north-east corner of a bounds geometry.
func (g Geometry) NE() LonLat { return g.ne }

// Extent returns the enclosing (sw, ne) box of any geometry.
func (g Geometry) Extent() (sw, ne LonLat) {
	switch g.typ {
	case TypePoint:
		return g.point, g.point
	case TypeLineString:
		return coordExtent(g.line)
	case TypePolygon:
		return coordExtent(g.rings[0])
	case TypeCircle:
		// Degenerate extent at the center; radius is angular-unit free.
		return g.center, g.center
	case TypeBounds:
		return g.sw, g.ne
	}
	return LonLat{}, LonLat{}
}

// Equal reports structural equality within tol degrees per coordinate.
func (g Geometry) Equal(other Geometry, tol float64) bool {
	if g.typ != other.typ {
		return false
	}
	switch g.typ {
	case TypePoint:
		return coordEqual(g.point, other.point, tol)
	case TypeLineString:
		return lineEqual(g.line, other.line, tol)
	case TypePolygon:
		if len(g.rings) != len(other.rings) {
			return false
		}
		for i := range g.rings {
			if !lineEqual(g.rings[i], other.rings[i], tol) {
				return false
			}
		}
		return true
	case TypeCircle:
		return coordEqual(g.center, other.center, tol) && math.Abs(g.radius-other.radius) <= tol
	case TypeBounds:
		return coordEqual(g.sw, other.sw, tol) && coordEqual(g.ne, other.ne, tol)
	}
	return g.IsZero() && other.IsZero()
}

// CloseRing returns ring with the first vertex appended when the ring is
// not already closed. The input slice is never mutated.
func CloseRing(ring []LonLat) []LonLat {
	out := make([]LonLat, len(ring))
	copy(out, ring)
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}

func distinctVertices(ring []LonLat) int {
	seen := make(map[LonLat]struct{}, len(ring))
	for _, c := range ring {
		seen[c] = struct{}{}
	}
	return len(seen)
}

func coordExtent(coords []LonLat) (sw, ne LonLat) {
	sw = coords[0]
	ne = coords[0]
	for _, c := range coords[1:] {
		sw.Lon = math.Min(sw.Lon, c.Lon)
		sw.Lat = math.Min(sw.Lat, c.Lat)
		ne.Lon = math.Max(ne.Lon, c.Lon)
		ne.Lat = math.Max(ne.Lat, c.Lat)
	}
	return sw, ne
}

func coordEqual(a, b LonLat, tol float64) bool {
	return math.Abs(a.Lon-b.Lon) <= tol && math.Abs(a.Lat-b.Lat) <= tol
}

func lineEqual(a, b []LonLat, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !coordEqual(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
