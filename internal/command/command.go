// Package command assembles and parses the geodb's textual command
// grammar. Builders are pure: identical intent yields byte-identical
// command strings, and invalid intent is rejected before anything is
// emitted.
package command

import (
	"strconv"
	"strings"
)

// Command is a fully assembled protocol invocation (immutable once built).
type Command struct {
	Verb string
	Args []string
}

// String renders the space-delimited wire form transmitted verbatim.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Verb
	}
	return c.Verb + " " + strings.Join(c.Args, " ")
}

// Equal reports structural equality.
func (c Command) Equal(other Command) bool {
	if c.Verb != other.Verb || len(c.Args) != len(other.Args) {
		return false
	}
	for i := range c.Args {
		if c.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// formatNum renders a float in its shortest exact form. The output is
// deterministic, so built commands are reproducible byte for byte.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
