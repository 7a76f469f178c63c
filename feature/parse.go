package feature

import (
	"strings"
)

// UnknownError is returned by [Parse] for a name not naming a capability.
type UnknownError string

func (e UnknownError) Error() string   { return "unknown capability " + string(e) }
func (e UnknownError) Message() string { return "capability " + string(e) + " is not supported" }

// Parse returns the [Set] named by names. Each name may hold a comma-separated list.
// Surrounding whitespace and empty elements are ignored.
func Parse(names ...string) (Set, error) {
	var s Set
	for _, name := range names {
		for _, n := range strings.Split(name, ",") {
			if n = strings.TrimSpace(n); n == "" {
				continue
			}

			c, ok := lookup(n)
			if !ok {
				return 0, UnknownError(n)
			}
			s |= c
		}
	}
	return s, nil
}

func lookup(name string) (Set, bool) {
	for i, n := range capNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}
