package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meridian-cloud/meridian/internal/domain"
	"github.com/meridian-cloud/meridian/internal/geojson"
)

// SetOptions are the optional modifiers of a SET command. ExpireSeconds
// emits EX; NX and XX are mutually exclusive.
type SetOptions struct {
	ExpireSeconds int
	NX            bool
	XX            bool
}

// Set synthesizes a SET command: collection id, FIELD tokens in the given
// order, optional EX/NX/XX, then the geometry clause. Points emit
// POINT lat lon, bounds emit BOUNDS minlat minlon maxlat maxlon, every
// other geometry is embedded as interchange JSON via OBJECT. The
// (lat, lon) inversion for POINT/BOUNDS against the internal (lon, lat)
// model is the wire contract; OBJECT payloads stay (lon, lat).
func Set(collection, id string, fields []domain.Field, g domain.Geometry, opts SetOptions) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	id, err = token("id", id)
	if err != nil {
		return Command{}, err
	}
	if g.IsZero() {
		return Command{}, domain.NewValidation("geometry", "geometry is required")
	}

	args := []string{collection, id}
	args = appendFields(args, fields)
	args, err = appendSetOptions(args, opts)
	if err != nil {
		return Command{}, err
	}
	args, err = appendGeometryClause(args, g)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: "SET", Args: args}, nil
}

// SetRawObject synthesizes a SET with operator-provided interchange JSON.
// The payload is decode-checked, not pattern-matched, before embedding.
func SetRawObject(collection, id string, fields []domain.Field, geometryJSON string, opts SetOptions) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	id, err = token("id", id)
	if err != nil {
		return Command{}, err
	}
	geometryJSON = strings.TrimSpace(geometryJSON)
	if geometryJSON == "" {
		return Command{}, domain.NewValidation("geometry", "geometry JSON is required")
	}
	if _, err := geojson.Decode([]byte(geometryJSON)); err != nil {
		return Command{}, domain.NewValidation("geometry", fmt.Sprintf("invalid geometry JSON: %v", err))
	}

	args := []string{collection, id}
	args = appendFields(args, fields)
	args, err = appendSetOptions(args, opts)
	if err != nil {
		return Command{}, err
	}
	args = append(args, "OBJECT", compactJSON(geometryJSON))
	return Command{Verb: "SET", Args: args}, nil
}

// SetHook synthesizes a SETHOOK command:
// name url fenceType collection FENCE DETECT e1,e2,... <area-clause>.
// Detect events are comma-joined with order preserved and no
// deduplication; the DETECT token pair is omitted when the list is empty.
func SetHook(
	name, endpoint string,
	fence domain.FenceType,
	collection string,
	detect []string,
	source domain.GeofenceSource,
) (Command, error) {
	name, err := token("name", name)
	if err != nil {
		return Command{}, err
	}
	endpoint, err = token("url", endpoint)
	if err != nil {
		return Command{}, err
	}
	collection, err = token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	if !fence.IsValid() {
		return Command{}, domain.NewValidation("fence", fmt.Sprintf("unsupported fence type %q", fence))
	}
	if source.IsZero() {
		return Command{}, domain.NewValidation("geofence", "geofence source is required")
	}
	if (fence == domain.FenceNearby) != (source.Kind() == domain.SourceInlineCircle) {
		return Command{}, domain.NewValidation("geofence",
			"NEARBY fences take an inline circle; WITHIN and INTERSECTS take bounds or a stored object")
	}

	args := []string{name, endpoint, string(fence), collection, "FENCE"}
	if len(detect) > 0 {
		for _, e := range detect {
			if strings.TrimSpace(e) == "" {
				return Command{}, domain.NewValidation("detect", "detect event must be non-empty")
			}
		}
		args = append(args, "DETECT", strings.Join(detect, ","))
	}

	switch source.Kind() {
	case domain.SourceExistingObject:
		srcColl, srcID := source.Object()
		args = append(args, "GET", srcColl, srcID)
	case domain.SourceBounds:
		sw, ne := source.Bounds()
		args = appendBounds(args, sw, ne)
	case domain.SourceInlineCircle:
		center, radius := source.Circle()
		args = append(args, "POINT", formatNum(center.Lat), formatNum(center.Lon), formatNum(radius))
	}
	return Command{Verb: "SETHOOK", Args: args}, nil
}

// Get synthesizes GET <collection> <id>.
func Get(collection, id string) (Command, error) {
	return twoTokenCommand("GET", collection, id)
}

// Del synthesizes DEL <collection> <id>.
func Del(collection, id string) (Command, error) {
	return twoTokenCommand("DEL", collection, id)
}

// Drop synthesizes DROP <collection>.
func Drop(collection string) (Command, error) {
	return oneTokenCommand("DROP", "collection", collection)
}

// Stats synthesizes STATS <collection>.
func Stats(collection string) (Command, error) {
	return oneTokenCommand("STATS", "collection", collection)
}

// Keys synthesizes KEYS <pattern>.
func Keys(pattern string) (Command, error) {
	return oneTokenCommand("KEYS", "pattern", pattern)
}

// Hooks synthesizes HOOKS <pattern>.
func Hooks(pattern string) (Command, error) {
	return oneTokenCommand("HOOKS", "pattern", pattern)
}

// DelHook synthesizes DELHOOK <name>.
func DelHook(name string) (Command, error) {
	return oneTokenCommand("DELHOOK", "name", name)
}

func oneTokenCommand(verb, field, value string) (Command, error) {
	value, err := token(field, value)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: verb, Args: []string{value}}, nil
}

func twoTokenCommand(verb, collection, id string) (Command, error) {
	collection, err := token("collection", collection)
	if err != nil {
		return Command{}, err
	}
	id, err = token("id", id)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: verb, Args: []string{collection, id}}, nil
}

// token trims and validates a grammar token: non-empty and free of
// whitespace, which would corrupt the space-delimited wire form.
func token(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.NewValidation(field, "must be non-empty")
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return "", domain.NewValidation(field, "must not contain whitespace")
	}
	return value, nil
}

func appendFields(args []string, fields []domain.Field) []string {
	for _, f := range domain.NormalizeFields(fields) {
		args = append(args, "FIELD", f.Name, formatNum(f.Value))
	}
	return args
}

func appendSetOptions(args []string, opts SetOptions) ([]string, error) {
	if opts.NX && opts.XX {
		return nil, domain.NewValidation("options", "NX and XX are mutually exclusive")
	}
	if opts.ExpireSeconds < 0 {
		return nil, domain.NewValidation("options", "expiration must be non-negative")
	}
	if opts.ExpireSeconds > 0 {
		args = append(args, "EX", strconv.Itoa(opts.ExpireSeconds))
	}
	if opts.NX {
		args = append(args, "NX")
	}
	if opts.XX {
		args = append(args, "XX")
	}
	return args, nil
}

func appendGeometryClause(args []string, g domain.Geometry) ([]string, error) {
	switch g.Type() {
	case domain.TypePoint:
		p := g.Point()
		return append(args, "POINT", formatNum(p.Lat), formatNum(p.Lon)), nil
	case domain.TypeBounds:
		return appendBounds(args, g.SW(), g.NE()), nil
	default:
		payload, err := geojson.Encode(g)
		if err != nil {
			return nil, err
		}
		return append(args, "OBJECT", string(payload)), nil
	}
}

func appendBounds(args []string, sw, ne domain.LonLat) []string {
	return append(args, "BOUNDS",
		formatNum(sw.Lat), formatNum(sw.Lon),
		formatNum(ne.Lat), formatNum(ne.Lon),
	)
}

// compactJSON strips insignificant whitespace so embedded payloads never
// carry spaces that would split into separate tokens.
func compactJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			b.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}
