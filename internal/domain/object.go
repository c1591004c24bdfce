package domain

// GeoObject is the unit stored in a named collection. Identity is
// (collection, id); uniqueness is enforced by the geodb, not locally.
type GeoObject struct {
	ID       string
	Geometry Geometry
	Fields   []Field
}
