// Package geojson converts between the domain geometry union and the
// interchange geometry JSON embedded in OBJECT clauses and echoed back by
// the geodb.
package geojson

import (
	"fmt"
	"math"

	geom "github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/domain/geo"
)

// circleSegments is the vertex count used when a circle is exported as a
// polygon (the interchange format has no circle type).
const circleSegments = 64

// Encode renders a geometry as interchange JSON with (lon, lat) coordinate
// order. Bounds become their closed rectangle polygon and circles a
// polygon approximation, since the interchange format carries only
// Point, LineString and Polygon.
func Encode(g domain.Geometry) ([]byte, error) {
	t, err := toGeom(g)
	if err != nil {
		return nil, err
	}
	data, err := geomjson.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", g.Type(), err)
	}
	return data, nil
}

// Decode parses interchange JSON into a domain geometry. Unknown type
// tags are reported as errors, not panics; callers decoding object lists
// must isolate failures per object.
func Decode(data []byte) (domain.Geometry, error) {
	var t geom.T
	if err := geomjson.Unmarshal(data, &t); err != nil {
		return domain.Geometry{}, fmt.Errorf("unmarshal geometry: %w", err)
	}
	return fromGeom(t)
}

// DecodeObject decodes a stored object's geometry, wrapping any failure
// in a ParseError that names the offending object id.
func DecodeObject(id string, data []byte) (domain.Geometry, error) {
	g, err := Decode(data)
	if err != nil {
		return domain.Geometry{}, domain.NewParse(id, err)
	}
	return g, nil
}

func toGeom(g domain.Geometry) (geom.T, error) {
	switch g.Type() {
	case domain.TypePoint:
		c := g.Point()
		return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}), nil
	case domain.TypeLineString:
		return geom.NewLineStringFlat(geom.XY, flatten(g.Line())), nil
	case domain.TypePolygon:
		flat, ends := flattenRings(g.Rings())
		return geom.NewPolygonFlat(geom.XY, flat, ends), nil
	case domain.TypeBounds:
		ring := boundsRing(g.SW(), g.NE())
		flat, ends := flattenRings([][]domain.LonLat{ring})
		return geom.NewPolygonFlat(geom.XY, flat, ends), nil
	case domain.TypeCircle:
		ring := circleRing(g.Center(), g.RadiusMeters())
		flat, ends := flattenRings([][]domain.LonLat{ring})
		return geom.NewPolygonFlat(geom.XY, flat, ends), nil
	default:
		return nil, domain.NewValidation("geometry", "no geometry to encode")
	}
}

func fromGeom(t geom.T) (domain.Geometry, error) {
	switch t := t.(type) {
	case *geom.Point:
		return domain.NewPoint(lonLat(t.Coords()))
	case *geom.LineString:
		return domain.NewLineString(lonLats(t.Coords()))
	case *geom.Polygon:
		rings := make([][]domain.LonLat, len(t.Coords()))
		for i, ring := range t.Coords() {
			rings[i] = lonLats(ring)
		}
		return domain.NewPolygon(rings)
	default:
		return domain.Geometry{}, fmt.Errorf("unsupported geometry type %T", t)
	}
}

func lonLat(c geom.Coord) domain.LonLat {
	return domain.LonLat{Lon: c.X(), Lat: c.Y()}
}

func lonLats(coords []geom.Coord) []domain.LonLat {
	out := make([]domain.LonLat, len(coords))
	for i, c := range coords {
		out[i] = lonLat(c)
	}
	return out
}

func flatten(coords []domain.LonLat) []float64 {
	flat := make([]float64, 0, len(coords)*2)
	for _, c := range coords {
		flat = append(flat, c.Lon, c.Lat)
	}
	return flat
}

func flattenRings(rings [][]domain.LonLat) (flat []float64, ends []int) {
	for _, ring := range rings {
		flat = append(flat, flatten(ring)...)
		ends = append(ends, len(flat))
	}
	return flat, ends
}

func boundsRing(sw, ne domain.LonLat) []domain.LonLat {
	return []domain.LonLat{
		{Lon: sw.Lon, Lat: sw.Lat},
		{Lon: ne.Lon, Lat: sw.Lat},
		{Lon: ne.Lon, Lat: ne.Lat},
		{Lon: sw.Lon, Lat: ne.Lat},
		{Lon: sw.Lon, Lat: sw.Lat},
	}
}

// circleRing approximates a circle as a closed ring of circleSegments
// vertices on the sphere.
func circleRing(center domain.LonLat, radiusMeters float64) []domain.LonLat {
	angular := radiusMeters / geo.EarthRadiusMeters
	latR := center.Lat * math.Pi / 180

	ring := make([]domain.LonLat, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		dLat := angular * math.Cos(theta)
		dLon := angular * math.Sin(theta) / math.Cos(latR)
		ring = append(ring, domain.LonLat{
			Lon: center.Lon + dLon*180/math.Pi,
			Lat: center.Lat + dLat*180/math.Pi,
		})
	}
	return append(ring, ring[0])
}
