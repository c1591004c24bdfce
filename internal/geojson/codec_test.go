package geojson

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/meridian-cloud/meridian/internal/domain"
)

func mustGeometry(t *testing.T) func(domain.Geometry, error) domain.Geometry {
	return func(g domain.Geometry, err error) domain.Geometry {
		t.Helper()
		if err != nil {
			t.Fatalf("build geometry: %v", err)
		}
		return g
	}
}

func TestEncode_PointKeepsLonLatOrder(t *testing.T) {
	g := mustGeometry(t)(domain.NewPoint(domain.LonLat{Lon: -46.6333, Lat: -23.5505}))

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var parsed struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Type != "Point" {
		t.Errorf("type = %q", parsed.Type)
	}
	// Interchange order is (lon, lat), unlike the command grammar.
	if parsed.Coordinates[0] != -46.6333 || parsed.Coordinates[1] != -23.5505 {
		t.Errorf("coordinates = %v, want [lon lat]", parsed.Coordinates)
	}
}

func TestRoundTrip(t *testing.T) {
	geoms := []domain.Geometry{
		mustGeometry(t)(domain.NewPoint(domain.LonLat{Lon: 10, Lat: 20})),
		mustGeometry(t)(domain.NewLineString([]domain.LonLat{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 2}, {Lon: 3, Lat: 1},
		})),
		mustGeometry(t)(domain.NewPolygon([][]domain.LonLat{{
			{Lon: 0, Lat: 0}, {Lon: 4, Lat: 0}, {Lon: 4, Lat: 4}, {Lon: 0, Lat: 4},
		}})),
	}
	for _, g := range geoms {
		data, err := Encode(g)
		if err != nil {
			t.Fatalf("Encode(%s): %v", g.Type(), err)
		}
		back, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(%s): %v", g.Type(), err)
		}
		if !g.Equal(back, 1e-9) {
			t.Errorf("%s round trip mismatch", g.Type())
		}
	}
}

func TestEncode_BoundsBecomesRectanglePolygon(t *testing.T) {
	g := mustGeometry(t)(domain.NewBounds(
		domain.LonLat{Lon: -10, Lat: -5}, domain.LonLat{Lon: 10, Lat: 5}))

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Type() != domain.TypePolygon {
		t.Fatalf("type = %q, want Polygon", back.Type())
	}
	ring := back.Rings()[0]
	if len(ring) != 5 {
		t.Fatalf("ring length = %d, want 5", len(ring))
	}
	sw, ne := back.Extent()
	if sw != (domain.LonLat{Lon: -10, Lat: -5}) || ne != (domain.LonLat{Lon: 10, Lat: 5}) {
		t.Errorf("extent = %+v, %+v", sw, ne)
	}
}

func TestEncode_CircleBecomesPolygonApproximation(t *testing.T) {
	g := mustGeometry(t)(domain.NewCircle(domain.LonLat{Lon: -112.268, Lat: 33.462}, 6000))

	data, err := Encode(g)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Type() != domain.TypePolygon {
		t.Fatalf("type = %q, want Polygon", back.Type())
	}
	ring := back.Rings()[0]
	if len(ring) != circleSegments+1 {
		t.Errorf("ring length = %d, want %d", len(ring), circleSegments+1)
	}
	if ring[0] != ring[len(ring)-1] {
		t.Error("circle ring is not closed")
	}
}

func TestEncode_ZeroGeometry(t *testing.T) {
	if _, err := Encode(domain.Geometry{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Teapot","coordinates":[1,2]}`))
	if err == nil {
		t.Fatal("expected error for unknown type tag")
	}
}

func TestDecodeObject_WrapsParseError(t *testing.T) {
	_, err := DecodeObject("truck9", []byte(`{"type":`))
	if !errors.Is(err, domain.ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected *domain.ParseError")
	}
	if pe.ID != "truck9" {
		t.Errorf("ID = %q, want truck9", pe.ID)
	}
	if !strings.Contains(err.Error(), "truck9") {
		t.Errorf("Error() = %q", err.Error())
	}
}
