package meridian

import (
	"encoding/json"

	"github.com/meridian-cloud/meridian/internal/domain"
)

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Bounds is an axis-aligned rectangle in degrees.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Object is a stored object: its id, interchange-format geometry and
// named numeric fields.
type Object struct {
	ID       string
	Geometry json.RawMessage
	Fields   map[string]float64
}

// CollectionInfo summarizes one collection.
type CollectionInfo struct {
	Key          string
	NumObjects   int
	InMemorySize int
}

// HookInfo describes a registered geofence webhook. Fence, Detect and
// Area are reconstructed from the echoed command tokens; Command keeps
// the raw token array.
type HookInfo struct {
	Name       string
	Collection string
	Endpoints  []string
	Command    []string
	Fence      FenceType
	Detect     []DetectEvent
	Area       string
}

// FenceType selects the geofence matching verb.
type FenceType string

// Fence type constants.
const (
	FenceWithin     = FenceType(domain.FenceWithin)
	FenceIntersects = FenceType(domain.FenceIntersects)
	FenceNearby     = FenceType(domain.FenceNearby)
)

// DetectEvent is a geofence transition a hook subscribes to.
type DetectEvent string

// Detect event constants.
const (
	DetectEnter   DetectEvent = "enter"
	DetectExit    DetectEvent = "exit"
	DetectInside  DetectEvent = "inside"
	DetectOutside DetectEvent = "outside"
	DetectCross   DetectEvent = "cross"
)

// HookArea is the region a geofence watches. Build one with AreaObject,
// AreaBounds or AreaCircle.
type HookArea struct {
	build func() (domain.GeofenceSource, error)
}

// AreaObject anchors the fence to an already stored object.
func AreaObject(collection, id string) HookArea {
	return HookArea{build: func() (domain.GeofenceSource, error) {
		return domain.NewExistingObjectSource(collection, id)
	}}
}

// AreaBounds anchors the fence to a rectangle. Pairs with FenceWithin
// and FenceIntersects.
func AreaBounds(b Bounds) HookArea {
	return HookArea{build: func() (domain.GeofenceSource, error) {
		return domain.NewBoundsSource(
			domain.LonLat{Lon: b.MinLon, Lat: b.MinLat},
			domain.LonLat{Lon: b.MaxLon, Lat: b.MaxLat},
		)
	}}
}

// AreaCircle anchors the fence to a center point and radius in meters.
// Required for FenceNearby.
func AreaCircle(center Point, radiusMeters float64) HookArea {
	return HookArea{build: func() (domain.GeofenceSource, error) {
		return domain.NewInlineCircleSource(
			domain.LonLat{Lon: center.Lon, Lat: center.Lat}, radiusMeters)
	}}
}

// HookSpec declares a geofence webhook.
type HookSpec struct {
	Name       string
	Endpoint   string
	Collection string
	Fence      FenceType
	Detect     []DetectEvent
	Area       HookArea
}

func toLonLat(p Point) domain.LonLat {
	return domain.LonLat{Lon: p.Lon, Lat: p.Lat}
}

func toLonLats(pts []Point) []domain.LonLat {
	out := make([]domain.LonLat, len(pts))
	for i, p := range pts {
		out[i] = toLonLat(p)
	}
	return out
}

func toFields(fields []fieldArg) []domain.Field {
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		out[i] = domain.Field{Name: f.name, Value: f.value}
	}
	return out
}

func fromReplyFields(fields []domain.Field) map[string]float64 {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}
