package domain

import "strings"

// FenceType is the spatial relation a geofence hook monitors.
type FenceType string

// Fence type constants.
const (
	FenceWithin     FenceType = "WITHIN"
	FenceIntersects FenceType = "INTERSECTS"
	FenceNearby     FenceType = "NEARBY"
)

// IsValid checks if the fence type is supported.
func (t FenceType) IsValid() bool {
	return t == FenceWithin || t == FenceIntersects || t == FenceNearby
}

// GeofenceSourceKind tags the GeofenceSource union.
type GeofenceSourceKind string

// Geofence source kinds.
const (
	SourceExistingObject GeofenceSourceKind = "existing"
	SourceBounds         GeofenceSourceKind = "bounds"
	SourceInlineCircle   GeofenceSourceKind = "circle"
)

// GeofenceSource describes how a hook's monitored area is specified.
// Exactly one variant is active (immutable value object).
type GeofenceSource struct {
	kind GeofenceSourceKind

	collection string
	id         string
	sw, ne     LonLat
	center     LonLat
	radius     float64
}

// NewExistingObjectSource references a stored geometry as the fence area.
func NewExistingObjectSource(collection, id string) (GeofenceSource, error) {
	collection = strings.TrimSpace(collection)
	id = strings.TrimSpace(id)
	if collection == "" {
		return GeofenceSource{}, NewValidation("geofence", "source collection is required")
	}
	if id == "" {
		return GeofenceSource{}, NewValidation("geofence", "source object id is required")
	}
	return GeofenceSource{kind: SourceExistingObject, collection: collection, id: id}, nil
}

// NewBoundsSource uses a rectangle as the fence area.
func NewBoundsSource(sw, ne LonLat) (GeofenceSource, error) {
	b, err := NewBounds(sw, ne)
	if err != nil {
		return GeofenceSource{}, err
	}
	return GeofenceSource{kind: SourceBounds, sw: b.SW(), ne: b.NE()}, nil
}

// NewInlineCircleSource uses a center point and radius (meters) as the
// fence area, for NEARBY fences.
func NewInlineCircleSource(center LonLat, radiusMeters float64) (GeofenceSource, error) {
	c, err := NewCircle(center, radiusMeters)
	if err != nil {
		return GeofenceSource{}, err
	}
	return GeofenceSource{kind: SourceInlineCircle, center: c.Center(), radius: c.RadiusMeters()}, nil
}

// Kind returns the active variant. The zero GeofenceSource has an empty kind.
func (s GeofenceSource) Kind() GeofenceSourceKind { return s.kind }

// IsZero reports whether no variant is set.
func (s GeofenceSource) IsZero() bool { return s.kind == "" }

// Object returns the referenced (collection, id) for an existing-object source.
func (s GeofenceSource) Object() (collection, id string) { return s.collection, s.id }

// Bounds returns the corners of a bounds source.
func (s GeofenceSource) Bounds() (sw, ne LonLat) { return s.sw, s.ne }

// Circle returns the center and radius (meters) of an inline-circle source.
func (s GeofenceSource) Circle() (center LonLat, radiusMeters float64) {
	return s.center, s.radius
}
