// Package export renders collection contents into interchange documents
// for external mapping tools.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/twpayne/go-kml/v2"
	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/geojson"
	"github.com/meridian-cloud/meridian/internal/reply"
)

// WriteKML writes a KML document holding one placemark per object.
// Objects whose geometry cannot be decoded are logged and skipped so a
// single malformed record does not abort the export.
func WriteKML(w io.Writer, collection string, objects []reply.Object, logger *zap.Logger) error {
	elems := []kml.Element{kml.Name(collection)}
	for _, obj := range objects {
		g, err := geojson.DecodeObject(obj.ID, obj.Geometry)
		if err != nil {
			logger.Warn("skipping object with undecodable geometry",
				zap.String("collection", collection), zap.String("id", obj.ID), zap.Error(err))
			continue
		}
		pm, err := placemark(obj, g)
		if err != nil {
			logger.Warn("skipping unexportable object",
				zap.String("collection", collection), zap.String("id", obj.ID), zap.Error(err))
			continue
		}
		elems = append(elems, pm)
	}

	doc := kml.KML(kml.Document(elems...))
	return doc.WriteIndent(w, "", "  ")
}

func placemark(obj reply.Object, g domain.Geometry) (kml.Element, error) {
	geomEl, err := kmlGeometry(g)
	if err != nil {
		return nil, err
	}

	elems := []kml.Element{kml.Name(obj.ID)}
	if desc := fieldDescription(obj.Fields); desc != "" {
		elems = append(elems, kml.Description(desc))
	}
	elems = append(elems, geomEl)
	return kml.Placemark(elems...), nil
}

func kmlGeometry(g domain.Geometry) (kml.Element, error) {
	switch g.Type() {
	case domain.TypePoint:
		return kml.Point(kml.Coordinates(coord(g.Point()))), nil
	case domain.TypeLineString:
		return kml.LineString(kml.Coordinates(coords(g.Line())...)), nil
	case domain.TypePolygon:
		rings := g.Rings()
		elems := []kml.Element{
			kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(coords(rings[0])...))),
		}
		for _, hole := range rings[1:] {
			elems = append(elems, kml.InnerBoundaryIs(kml.LinearRing(kml.Coordinates(coords(hole)...))))
		}
		return kml.Polygon(elems...), nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type())
	}
}

func coord(c domain.LonLat) kml.Coordinate {
	return kml.Coordinate{Lon: c.Lon, Lat: c.Lat}
}

func coords(cs []domain.LonLat) []kml.Coordinate {
	out := make([]kml.Coordinate, len(cs))
	for i, c := range cs {
		out[i] = coord(c)
	}
	return out
}

func fieldDescription(fields []domain.Field) string {
	var s string
	for i, f := range fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + "=" + strconv.FormatFloat(f.Value, 'f', -1, 64)
	}
	return s
}
