package command

import (
	"strings"

	"github.com/meridian-cloud/meridian/internal/domain"
)

// Summary is a best-effort structured view of a stored command's tokens,
// as echoed by the geodb for an existing hook. It is for read-only
// display: tokens that are not understood end up in Extra verbatim
// instead of being dropped.
type Summary struct {
	Verb       string
	Name       string
	Endpoint   string
	Collection string
	ObjectID   string
	Fence      domain.FenceType
	Detect     []string
	Area       string
	Extra      []string
}

// Summarize reconstructs a display summary from a command token array.
// It never fails: unrecognized verbs or malformed tails degrade to the
// verb plus the remaining tokens in Extra.
func Summarize(tokens []string) Summary {
	if len(tokens) == 0 {
		return Summary{}
	}
	s := Summary{Verb: strings.ToUpper(tokens[0])}
	rest := tokens[1:]

	switch s.Verb {
	case "SETHOOK":
		s.summarizeSetHook(rest)
		return s
	case "DELHOOK":
		if len(rest) > 0 {
			s.Name = rest[0]
			s.Extra = rest[1:]
		}
		return s
	case "SET", "GET", "DEL":
		if len(rest) > 0 {
			s.Collection = rest[0]
		}
		if len(rest) > 1 {
			s.ObjectID = rest[1]
		}
		if len(rest) > 2 {
			s.Extra = rest[2:]
		}
		return s
	case "WITHIN", "NEARBY", "INTERSECTS":
		// Hooks echo their command with the search verb first; the
		// verb doubles as the fence type.
		s.Fence = domain.FenceType(s.Verb)
		if len(rest) > 0 {
			s.Collection = rest[0]
			s.summarizeFenceTail(rest[1:])
		}
		return s
	case "SCAN", "STATS", "DROP":
		if len(rest) > 0 {
			s.Collection = rest[0]
			s.Extra = rest[1:]
		}
		return s
	default:
		s.Extra = rest
		return s
	}
}

// summarizeSetHook walks name, url, fence type, collection, then the
// FENCE/DETECT/area tail.
func (s *Summary) summarizeSetHook(rest []string) {
	fields := []*string{&s.Name, &s.Endpoint}
	i := 0
	for _, f := range fields {
		if i >= len(rest) {
			return
		}
		*f = rest[i]
		i++
	}

	if i < len(rest) {
		ft := domain.FenceType(strings.ToUpper(rest[i]))
		if ft.IsValid() {
			s.Fence = ft
			i++
		}
	}
	if i < len(rest) {
		s.Collection = rest[i]
		i++
	}
	s.summarizeFenceTail(rest[i:])
}

// summarizeFenceTail walks the FENCE/DETECT/area tokens that follow the
// collection in both SETHOOK commands and their echoed search form.
func (s *Summary) summarizeFenceTail(rest []string) {
	i := 0
	if i < len(rest) && strings.EqualFold(rest[i], "FENCE") {
		i++
	}
	if i+1 < len(rest) && strings.EqualFold(rest[i], "DETECT") {
		s.Detect = strings.Split(rest[i+1], ",")
		i += 2
	}

	if i < len(rest) {
		switch strings.ToUpper(rest[i]) {
		case "GET":
			s.Area = consume(rest, &i, 3)
		case "BOUNDS":
			s.Area = consume(rest, &i, 5)
		case "POINT":
			s.Area = consume(rest, &i, 4)
		}
	}
	s.Extra = rest[i:]
}

// consume joins up to n tokens starting at *i, advancing *i past them. A
// truncated tail keeps whatever tokens are present.
func consume(tokens []string, i *int, n int) string {
	end := *i + n
	if end > len(tokens) {
		end = len(tokens)
	}
	out := strings.Join(tokens[*i:end], " ")
	*i = end
	return out
}
