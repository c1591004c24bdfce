package meridian

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/meridian-cloud/meridian/internal/command"
	"github.com/meridian-cloud/meridian/internal/db"
	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/reply"
)

// ObjectService stores and retrieves objects in one collection.
type ObjectService struct {
	store      db.Store
	obs        *observer
	collection string
}

type fieldArg struct {
	name  string
	value float64
}

// SetBuilder assembles one SET command. Exactly one geometry method must
// be called before Do.
type SetBuilder struct {
	svc    *ObjectService
	id     string
	fields []fieldArg
	geom   func() (domain.Geometry, error)
	raw    string
	opts   command.SetOptions
}

// Set starts a SET for the given object id.
func (s *ObjectService) Set(id string) *SetBuilder {
	return &SetBuilder{svc: s, id: id}
}

// Point stores the object as a single coordinate.
func (b *SetBuilder) Point(p Point) *SetBuilder {
	b.geom = func() (domain.Geometry, error) { return domain.NewPoint(toLonLat(p)) }
	return b
}

// Line stores the object as a line string.
func (b *SetBuilder) Line(pts ...Point) *SetBuilder {
	b.geom = func() (domain.Geometry, error) { return domain.NewLineString(toLonLats(pts)) }
	return b
}

// Polygon stores the object as a polygon. The first ring is the outer
// boundary, the rest are holes; open rings are closed automatically.
func (b *SetBuilder) Polygon(rings ...[]Point) *SetBuilder {
	b.geom = func() (domain.Geometry, error) {
		converted := make([][]domain.LonLat, len(rings))
		for i, ring := range rings {
			converted[i] = toLonLats(ring)
		}
		return domain.NewPolygon(converted)
	}
	return b
}

// Rect stores the object as an axis-aligned rectangle.
func (b *SetBuilder) Rect(r Bounds) *SetBuilder {
	b.geom = func() (domain.Geometry, error) {
		return domain.NewBounds(
			domain.LonLat{Lon: r.MinLon, Lat: r.MinLat},
			domain.LonLat{Lon: r.MaxLon, Lat: r.MaxLat},
		)
	}
	return b
}

// GeoJSON stores the object from a caller-supplied interchange payload.
// The payload is decode-checked before it is embedded in the command.
func (b *SetBuilder) GeoJSON(raw []byte) *SetBuilder {
	b.geom = nil
	b.raw = string(raw)
	return b
}

// Field attaches a named numeric field. Call order is preserved.
func (b *SetBuilder) Field(name string, value float64) *SetBuilder {
	b.fields = append(b.fields, fieldArg{name: name, value: value})
	return b
}

// Expire sets a time-to-live. Sub-second durations round down.
func (b *SetBuilder) Expire(d time.Duration) *SetBuilder {
	b.opts.ExpireSeconds = int(d / time.Second)
	return b
}

// IfNotExists makes the SET a no-op when the id already exists.
func (b *SetBuilder) IfNotExists() *SetBuilder {
	b.opts.NX = true
	return b
}

// IfExists makes the SET a no-op when the id does not exist.
func (b *SetBuilder) IfExists() *SetBuilder {
	b.opts.XX = true
	return b
}

// Do synthesizes the command and executes it.
func (b *SetBuilder) Do(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { b.svc.obs.observe("object.set", start, err) }()

	var cmd command.Command
	switch {
	case b.raw != "":
		cmd, err = command.SetRawObject(b.svc.collection, b.id, toFields(b.fields), b.raw, b.opts)
	case b.geom != nil:
		var g domain.Geometry
		g, err = b.geom()
		if err != nil {
			return err
		}
		cmd, err = command.Set(b.svc.collection, b.id, toFields(b.fields), g, b.opts)
	default:
		return domain.NewValidation("geometry", "a geometry is required")
	}
	if err != nil {
		return err
	}

	_, err = b.svc.store.Execute(ctx, cmd.String())
	return err
}

// Get fetches one object by id.
func (s *ObjectService) Get(ctx context.Context, id string) (_ Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("object.get", start, err) }()

	cmd, err := command.Get(s.collection, id)
	if err != nil {
		return Object{}, err
	}
	raw, err := s.store.Execute(ctx, cmd.String())
	if err != nil {
		return Object{}, mapNotFound(err)
	}
	obj, err := reply.GetObject(id, raw)
	if err != nil {
		return Object{}, err
	}
	return Object{ID: obj.ID, Geometry: obj.Geometry, Fields: fromReplyFields(obj.Fields)}, nil
}

// Delete removes one object by id.
func (s *ObjectService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("object.delete", start, err) }()

	cmd, err := command.Del(s.collection, id)
	if err != nil {
		return err
	}
	_, err = s.store.Execute(ctx, cmd.String())
	return err
}

// Scan lists the collection's objects in id order.
func (s *ObjectService) Scan(ctx context.Context, opts ...SearchOption) (_ []Object, err error) {
	start := time.Now()
	defer func() { s.obs.observe("object.scan", start, err) }()

	cmd, err := command.Scan(s.collection, toSearchOptions(opts))
	if err != nil {
		return nil, err
	}
	return runSearch(ctx, s.store, cmd)
}

// mapNotFound rewrites the geodb's "not found" rejections into
// ErrNotFound so callers can errors.Is them.
func mapNotFound(err error) error {
	var pe *domain.ProtocolError
	if errors.As(err, &pe) && strings.Contains(pe.Message, "not found") {
		return domain.ErrNotFound
	}
	return err
}
