package command

import (
	"strconv"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/geojson"
)

// Where filters search results by a field value.
type Where struct {
	Field string
	Value string
}

// SearchOptions are the shared modifiers of SCAN and the spatial search
// verbs.
type SearchOptions struct {
	Where []Where
	Limit int
	Count bool
}

// Scan synthesizes SCAN <collection> [WHERE ...] [LIMIT n] [COUNT].
func Scan(collection string, opts SearchOptions) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	args, err := appendSearchOptions([]string{collection}, opts)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: "SCAN", Args: args}, nil
}

// Within synthesizes WITHIN with a BOUNDS or OBJECT area from the given
// geometry.
func Within(collection string, opts SearchOptions, area domain.Geometry) (Command, error) {
	return spatialSearch("WITHIN", collection, opts, area, false)
}

// WithinObject synthesizes WITHIN with a GET area referencing a stored
// geometry.
func WithinObject(collection string, opts SearchOptions, srcCollection, srcID string) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	srcCollection, err = token("source collection", srcCollection)
	if err != nil {
		return Command{}, err
	}
	srcID, err = token("source id", srcID)
	if err != nil {
		return Command{}, err
	}
	args, err := appendSearchOptions([]string{collection}, opts)
	if err != nil {
		return Command{}, err
	}
	args = append(args, "GET", srcCollection, srcID)
	return Command{Verb: "WITHIN", Args: args}, nil
}

// Intersects synthesizes INTERSECTS with a POINT or OBJECT area. A point
// geometry emits POINT lat lon, which is how a single coordinate is
// probed against a collection's areas.
func Intersects(collection string, opts SearchOptions, area domain.Geometry) (Command, error) {
	return spatialSearch("INTERSECTS", collection, opts, area, true)
}

// Nearby synthesizes NEARBY <collection> [WHERE ...] POINT lat lon meters.
func Nearby(collection string, opts SearchOptions, center domain.LonLat, meters float64) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	c, err := domain.NewCircle(center, meters)
	if err != nil {
		return Command{}, err
	}
	args, err := appendSearchOptions([]string{collection}, opts)
	if err != nil {
		return Command{}, err
	}
	center = c.Center()
	args = append(args, "POINT", formatNum(center.Lat), formatNum(center.Lon), formatNum(c.RadiusMeters()))
	return Command{Verb: "NEARBY", Args: args}, nil
}

func spatialSearch(verb, collection string, opts SearchOptions, area domain.Geometry, pointAsClause bool) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	if area.IsZero() {
		return Command{}, domain.NewValidation("area", "search area is required")
	}
	args, err := appendSearchOptions([]string{collection}, opts)
	if err != nil {
		return Command{}, err
	}

	switch {
	case area.Type() == domain.TypeBounds:
		args = appendBounds(args, area.SW(), area.NE())
	case pointAsClause && area.Type() == domain.TypePoint:
		p := area.Point()
		args = append(args, "POINT", formatNum(p.Lat), formatNum(p.Lon))
	default:
		payload, err := geojson.Encode(area)
		if err != nil {
			return Command{}, err
		}
		args = append(args, "OBJECT", string(payload))
	}
	return Command{Verb: verb, Args: args}, nil
}

func appendSearchOptions(args []string, opts SearchOptions) ([]string, error) {
	for _, w := range opts.Where {
		field, err := token("where field", w.Field)
		if err != nil {
			return nil, err
		}
		value, err := token("where value", w.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, "WHERE", field, value)
	}
	if opts.Limit < 0 {
		return nil, domain.NewValidation("limit", "must be non-negative")
	}
	if opts.Limit > 0 {
		args = append(args, "LIMIT", strconv.Itoa(opts.Limit))
	}
	if opts.Count {
		args = append(args, "COUNT")
	}
	return args, nil
}
