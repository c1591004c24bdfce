package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/reply"
)

func TestWriteKML_Point(t *testing.T) {
	objs := []reply.Object{
		{
			ID:       "truck1",
			Geometry: json.RawMessage(`{"type":"Point","coordinates":[-46.6333,-23.5505]}`),
			Fields:   []domain.Field{{Name: "speed", Value: 70}},
		},
	}

	var buf bytes.Buffer
	if err := WriteKML(&buf, "fleet", objs, zap.NewNop()); err != nil {
		t.Fatalf("WriteKML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<kml",
		"<Document>",
		"<name>fleet</name>",
		"<Placemark>",
		"<name>truck1</name>",
		"<description>speed=70</description>",
		"-46.6333,-23.5505",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteKML_SkipsUndecodable(t *testing.T) {
	objs := []reply.Object{
		{ID: "bad", Geometry: json.RawMessage(`{"type":"Teapot"}`)},
		{ID: "good", Geometry: json.RawMessage(`{"type":"Point","coordinates":[1,2]}`)},
	}

	var buf bytes.Buffer
	if err := WriteKML(&buf, "fleet", objs, zap.NewNop()); err != nil {
		t.Fatalf("WriteKML: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "bad") {
		t.Error("undecodable object was exported")
	}
	if !strings.Contains(out, "good") {
		t.Error("decodable object missing from export")
	}
}

func TestWriteKML_PolygonWithHole(t *testing.T) {
	objs := []reply.Object{
		{
			ID: "zone1",
			Geometry: json.RawMessage(`{"type":"Polygon","coordinates":[
				[[0,0],[10,0],[10,10],[0,10],[0,0]],
				[[2,2],[4,2],[4,4],[2,4],[2,2]]
			]}`),
		},
	}

	var buf bytes.Buffer
	if err := WriteKML(&buf, "zones", objs, zap.NewNop()); err != nil {
		t.Fatalf("WriteKML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<Polygon>", "<outerBoundaryIs>", "<innerBoundaryIs>", "2,2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteKML_LineString(t *testing.T) {
	objs := []reply.Object{
		{
			ID:       "route1",
			Geometry: json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1],[2,0]]}`),
		},
	}

	var buf bytes.Buffer
	if err := WriteKML(&buf, "routes", objs, zap.NewNop()); err != nil {
		t.Fatalf("WriteKML: %v", err)
	}
	if !strings.Contains(buf.String(), "<LineString>") {
		t.Errorf("output missing LineString:\n%s", buf.String())
	}
}

func TestWriteKML_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteKML(&buf, "fleet", nil, zap.NewNop()); err != nil {
		t.Fatalf("WriteKML: %v", err)
	}
	if !strings.Contains(buf.String(), "<name>fleet</name>") {
		t.Errorf("empty export missing document name:\n%s", buf.String())
	}
}
