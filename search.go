package meridian

import (
	"context"
	"strconv"
	"time"

	"github.com/meridian-cloud/meridian/internal/command"
	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/reply"
)

// SearchService runs spatial queries against one collection.
type SearchService struct {
	store      db.Store
	obs        *observer
	collection string
}

// Within returns objects fully contained in the rectangle.
func (s *SearchService) Within(ctx context.Context, area Bounds, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.within", start, err) }()

	g, err := boundsGeometry(area)
	if err != nil {
		return nil, err
	}
	cmd, err := command.Within(s.collection, toSearchOptions(opts), g)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// WithinPolygon returns objects fully contained in the polygon.
func (s *SearchService) WithinPolygon(ctx context.Context, ring []Point, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.within", start, err) }()

	g, err := domain.NewPolygon([][]domain.LonLat{toLonLats(ring)})
	if err != nil {
		return nil, err
	}
	cmd, err := command.Within(s.collection, toSearchOptions(opts), g)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// WithinObject returns objects fully contained in an already stored
// geometry.
func (s *SearchService) WithinObject(ctx context.Context, srcCollection, srcID string, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.within_object", start, err) }()

	cmd, err := command.WithinObject(s.collection, toSearchOptions(opts), srcCollection, srcID)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// Intersects returns objects overlapping the rectangle.
func (s *SearchService) Intersects(ctx context.Context, area Bounds, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.intersects", start, err) }()

	g, err := boundsGeometry(area)
	if err != nil {
		return nil, err
	}
	cmd, err := command.Intersects(s.collection, toSearchOptions(opts), g)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// Nearby returns objects within radiusMeters of the center point.
func (s *SearchService) Nearby(ctx context.Context, center Point, radiusMeters float64, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.nearby", start, err) }()

	cmd, err := command.Nearby(s.collection, toSearchOptions(opts), toLonLat(center), radiusMeters)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// TestPoint returns the stored areas containing the given coordinate.
func (s *SearchService) TestPoint(ctx context.Context, p Point, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.test_point", start, err) }()

	g, err := domain.NewPoint(toLonLat(p))
	if err != nil {
		return nil, err
	}
	cmd, err := command.Intersects(s.collection, toSearchOptions(opts), g)
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

func boundsGeometry(b Bounds) (domain.Geometry, error) {
	return domain.NewBounds(
		domain.LonLat{Lon: b.MinLon, Lat: b.MinLat},
		domain.LonLat{Lon: b.MaxLon, Lat: b.MaxLat},
	)
}

func toSearchOptions(opts []SearchOption) command.SearchOptions {
	cfg := &searchConfig{}
	for _, o := range opts {
		o.applySearch(cfg)
	}
	out := command.SearchOptions{Limit: cfg.limit, Count: cfg.count}
	for _, w := range cfg.wheres {
		out.Where = append(out.Where, command.Where{
			Field: w.field,
			Value: strconv.FormatFloat(w.value, 'f', -1, 64),
		})
	}
	return out
}

func runSearch(ctx context.Context, store db.Store, cmd command.Command) ([]Object, error) {
	raw, err := store.Execute(ctx, cmd.String())
	if err != nil {
		return nil, err
	}
	parsed, err := reply.Objects(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, len(parsed))
	for _, o := range parsed {
		out = append(out, Object{ID: o.ID, Geometry: o.Geometry, Fields: fromReplyFields(o.Fields)})
	}
	return out, nil
}
