package command

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/meridian-cloud/meridian/internal/domain"
)

func point(t *testing.T, lon, lat float64) domain.Geometry {
	t.Helper()
	g, err := domain.NewPoint(domain.LonLat{Lon: lon, Lat: lat})
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	return g
}

func bounds(t *testing.T, minLon, minLat, maxLon, maxLat float64) domain.Geometry {
	t.Helper()
	g, err := domain.NewBounds(
		domain.LonLat{Lon: minLon, Lat: minLat},
		domain.LonLat{Lon: maxLon, Lat: maxLat},
	)
	if err != nil {
		t.Fatalf("NewBounds: %v", err)
	}
	return g
}

func TestSet_PointInvertsToLatLon(t *testing.T) {
	// Internal model is (lon, lat); the POINT clause is (lat, lon).
	g := point(t, -46.6333, -23.5505)
	cmd, err := Set("fleet", "truck1", nil, g, SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SET fleet truck1 POINT -23.5505 -46.6333"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSet_BoundsClauseOrder(t *testing.T) {
	g := bounds(t, -10.5, -5.25, 10.5, 5.25)
	cmd, err := Set("zones", "box1", nil, g, SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SET zones box1 BOUNDS -5.25 -10.5 5.25 10.5"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSet_ObjectClauseKeepsLonLat(t *testing.T) {
	g, err := domain.NewLineString([]domain.LonLat{
		{Lon: -46.6333, Lat: -23.5505}, {Lon: -46.6, Lat: -23.5},
	})
	if err != nil {
		t.Fatalf("NewLineString: %v", err)
	}
	cmd, err := Set("fleet", "route1", nil, g, SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	s := cmd.String()
	if !strings.Contains(s, "OBJECT ") {
		t.Fatalf("String() = %q, want an OBJECT clause", s)
	}
	// Interchange payload stays (lon, lat).
	if !strings.Contains(s, "[-46.6333,-23.5505]") {
		t.Errorf("String() = %q, want lon-first payload", s)
	}
}

func TestSet_FieldsNormalized(t *testing.T) {
	fields := []domain.Field{
		{Name: "", Value: 5},
		{Name: "x", Value: math.NaN()},
		{Name: "x", Value: 3},
	}
	cmd, err := Set("fleet", "truck1", fields, point(t, 0, 0), SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SET fleet truck1 FIELD x 3 POINT 0 0"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSet_FieldOrderPreserved(t *testing.T) {
	fields := []domain.Field{
		{Name: "speed", Value: 90},
		{Name: "fuel", Value: 0.5},
	}
	cmd, err := Set("fleet", "truck1", fields, point(t, 1, 2), SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SET fleet truck1 FIELD speed 90 FIELD fuel 0.5 POINT 2 1"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSet_Modifiers(t *testing.T) {
	cmd, err := Set("fleet", "truck1", nil, point(t, 0, 0), SetOptions{ExpireSeconds: 30, NX: true})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := "SET fleet truck1 EX 30 NX POINT 0 0"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSet_NXAndXXExclusive(t *testing.T) {
	_, err := Set("fleet", "truck1", nil, point(t, 0, 0), SetOptions{NX: true, XX: true})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestSet_Idempotent(t *testing.T) {
	g := point(t, -46.6333, -23.5505)
	fields := []domain.Field{{Name: "speed", Value: 12.5}}
	a, err := Set("fleet", "truck1", fields, g, SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	b, err := Set("fleet", "truck1", fields, g, SetOptions{})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if a.String() != b.String() {
		t.Errorf("identical intent produced %q and %q", a.String(), b.String())
	}
	if !a.Equal(b) {
		t.Error("Equal should hold for identical intent")
	}
}

func TestSet_TokenValidation(t *testing.T) {
	g := point(t, 0, 0)
	cases := []struct{ collection, id string }{
		{"", "truck1"},
		{"fleet", ""},
		{"my fleet", "truck1"},
		{"fleet", "truck\t1"},
	}
	for _, c := range cases {
		if _, err := Set(c.collection, c.id, nil, g, SetOptions{}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Set(%q, %q) error = %v, want ErrValidation", c.collection, c.id, err)
		}
	}
}

func TestSet_ZeroGeometry(t *testing.T) {
	_, err := Set("fleet", "truck1", nil, domain.Geometry{}, SetOptions{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestSetRawObject_CompactsPayload(t *testing.T) {
	raw := `{
	  "type": "Point",
	  "coordinates": [1, 2]
	}`
	cmd, err := SetRawObject("fleet", "p1", nil, raw, SetOptions{})
	if err != nil {
		t.Fatalf("SetRawObject: %v", err)
	}
	want := `SET fleet p1 OBJECT {"type":"Point","coordinates":[1,2]}`
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetRawObject_PreservesSpacesInStrings(t *testing.T) {
	// Whitespace inside JSON strings must survive compaction; a split
	// there would corrupt the token stream.
	raw := `{"type":"Point","coordinates":[1,2],"note":"two words"}`
	cmd, err := SetRawObject("fleet", "p1", nil, raw, SetOptions{})
	if err != nil {
		t.Fatalf("SetRawObject: %v", err)
	}
	if !strings.Contains(cmd.String(), `"two words"`) {
		t.Errorf("String() = %q", cmd.String())
	}
}

func TestSetRawObject_RejectsInvalidJSON(t *testing.T) {
	for _, raw := range []string{"", "   ", `{"type":"Teapot"}`, `{"type":`} {
		if _, err := SetRawObject("fleet", "p1", nil, raw, SetOptions{}); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("SetRawObject(%q) error = %v, want ErrValidation", raw, err)
		}
	}
}

func TestSetHook_InlineCircle(t *testing.T) {
	source, err := domain.NewInlineCircleSource(domain.LonLat{Lon: -112.268, Lat: 33.462}, 6000)
	if err != nil {
		t.Fatalf("NewInlineCircleSource: %v", err)
	}
	cmd, err := SetHook("warehouse", "http://10.0.20.78:9000/endpoint",
		domain.FenceNearby, "fleet", []string{"enter", "exit"}, source)
	if err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	want := "SETHOOK warehouse http://10.0.20.78:9000/endpoint NEARBY fleet FENCE DETECT enter,exit POINT 33.462 -112.268 6000"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetHook_ExistingObjectOmitsEmptyDetect(t *testing.T) {
	source, err := domain.NewExistingObjectSource("zones", "downtown")
	if err != nil {
		t.Fatalf("NewExistingObjectSource: %v", err)
	}
	cmd, err := SetHook("dt", "http://hooks/dt", domain.FenceWithin, "fleet", nil, source)
	if err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	want := "SETHOOK dt http://hooks/dt WITHIN fleet FENCE GET zones downtown"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetHook_BoundsArea(t *testing.T) {
	source, err := domain.NewBoundsSource(
		domain.LonLat{Lon: -10, Lat: -5}, domain.LonLat{Lon: 10, Lat: 5})
	if err != nil {
		t.Fatalf("NewBoundsSource: %v", err)
	}
	cmd, err := SetHook("box", "http://hooks/box", domain.FenceIntersects, "fleet", []string{"cross"}, source)
	if err != nil {
		t.Fatalf("SetHook: %v", err)
	}
	want := "SETHOOK box http://hooks/box INTERSECTS fleet FENCE DETECT cross BOUNDS -5 -10 5 10"
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetHook_NearbyRequiresCircle(t *testing.T) {
	object, _ := domain.NewExistingObjectSource("zones", "downtown")
	circle, _ := domain.NewInlineCircleSource(domain.LonLat{Lon: 0, Lat: 0}, 100)

	if _, err := SetHook("h", "http://x", domain.FenceNearby, "fleet", nil, object); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("NEARBY with object area error = %v, want ErrValidation", err)
	}
	if _, err := SetHook("h", "http://x", domain.FenceWithin, "fleet", nil, circle); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("WITHIN with circle area error = %v, want ErrValidation", err)
	}
}

func TestSetHook_RejectsBlankDetectEvent(t *testing.T) {
	circle, _ := domain.NewInlineCircleSource(domain.LonLat{Lon: 0, Lat: 0}, 100)
	_, err := SetHook("h", "http://x", domain.FenceNearby, "fleet", []string{"enter", " "}, circle)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestSimpleVerbs(t *testing.T) {
	cases := []struct {
		build func() (Command, error)
		want  string
	}{
		{func() (Command, error) { return Get("fleet", "truck1") }, "GET fleet truck1"},
		{func() (Command, error) { return Del("fleet", "truck1") }, "DEL fleet truck1"},
		{func() (Command, error) { return Drop("fleet") }, "DROP fleet"},
		{func() (Command, error) { return Stats("fleet") }, "STATS fleet"},
		{func() (Command, error) { return Keys("*") }, "KEYS *"},
		{func() (Command, error) { return Hooks("*") }, "HOOKS *"},
		{func() (Command, error) { return DelHook("warehouse") }, "DELHOOK warehouse"},
	}
	for _, c := range cases {
		cmd, err := c.build()
		if err != nil {
			t.Errorf("%s: %v", c.want, err)
			continue
		}
		if got := cmd.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestFormatNum_ShortestForm(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-23.5505, "-23.5505"},
		{90, "90"},
		{0.5, "0.5"},
	}
	for _, c := range cases {
		if got := formatNum(c.in); got != c.want {
			t.Errorf("formatNum(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
