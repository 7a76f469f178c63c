// Package feature implements the capability matrix of a generated bootstrap.
package feature

import (
	"strconv"
	"strings"
)

// Set is a bit field of capabilities requested for a build.
type Set uint32

const (
	// RewriteArguments replaces the argument vector seen by the interpreter.
	RewriteArguments Set = 1 << iota
	// RedirectIdentity replaces the program name seen by the interpreter.
	RedirectIdentity
	// EmbedScript runs a script appended to the host binary.
	EmbedScript
	// EmbedArchive mounts an archive appended to the host binary as a module search root.
	EmbedArchive
	// ArchiveScript runs a script stored as an entry of the embedded archive.
	ArchiveScript
	// Preprocess is the interpreter's source preprocessing mode.
	// It is never compatible with an embedded payload.
	Preprocess

	capMax

	// CapAll is [Set] with all currently defined bits set.
	CapAll = capMax - 1
)

var capNames = [...]string{
	"rewrite-arguments",
	"redirect-interpreter-identity",
	"embed-script",
	"embed-archive",
	"archive-contains-script",
	"preprocessing",
}

// Has returns whether all bits of c are set.
func (s Set) Has(c Set) bool { return s&c == c }

// Any returns whether any bit of c is set.
func (s Set) Any(c Set) bool { return s&c != 0 }

func (s Set) String() string {
	if s == 0 {
		return "none"
	}
	return joinBits(uint32(s), uint32(capMax), capNames[:])
}

var capGoNames = [...]string{
	"RewriteArguments",
	"RedirectIdentity",
	"EmbedScript",
	"EmbedArchive",
	"ArchiveScript",
	"Preprocess",
}

// GoString returns a Go expression evaluating to s.
func (s Set) GoString() string { return goBits(uint32(s), uint32(capMax), capGoNames[:], "Set") }

// Mechanisms is a bit field of mechanisms compiled into a bootstrap.
type Mechanisms uint32

const (
	// MBootHook wraps the interpreter's boot entry point.
	MBootHook Mechanisms = 1 << iota
	// MTrustGate taints embedded input and rejects preprocessing.
	MTrustGate
	// MPayloadChannel exposes the payload as a readable stream.
	MPayloadChannel
	// MPreamble schedules startup code ahead of the user's script.
	MPreamble
	// MSearchPath prepends the embedded archive to the module search path.
	MSearchPath

	mechMax

	// MechAll is [Mechanisms] with all currently defined bits set.
	MechAll = mechMax - 1
)

var mechNames = [...]string{
	"boot-hook",
	"trust-gate",
	"payload-channel",
	"preamble",
	"search-path",
}

// Has returns whether all bits of m are set.
func (ms Mechanisms) Has(m Mechanisms) bool { return ms&m == m }

func (ms Mechanisms) String() string {
	if ms == 0 {
		return "none"
	}
	return joinBits(uint32(ms), uint32(mechMax), mechNames[:])
}

var mechGoNames = [...]string{
	"MBootHook",
	"MTrustGate",
	"MPayloadChannel",
	"MPreamble",
	"MSearchPath",
}

// GoString returns a Go expression evaluating to ms.
func (ms Mechanisms) GoString() string {
	return goBits(uint32(ms), uint32(mechMax), mechGoNames[:], "Mechanisms")
}

func goBits(v, max uint32, names []string, typ string) string {
	if v == 0 {
		return "0"
	}
	s := make([]string, 0, len(names)+1)
	for i, f := 0, uint32(1); f < max; i, f = i+1, f<<1 {
		if v&f != 0 {
			s = append(s, "feature."+names[i])
		}
	}
	if rem := v &^ (max - 1); rem != 0 {
		s = append(s, "feature."+typ+"("+strconv.FormatUint(uint64(rem), 10)+")")
	}
	return strings.Join(s, " | ")
}

func joinBits(v, max uint32, names []string) string {
	s := make([]string, 0, len(names)+1)
	for i, f := 0, uint32(1); f < max; i, f = i+1, f<<1 {
		if v&f != 0 {
			s = append(s, names[i])
		}
	}
	if rem := v &^ (max - 1); rem != 0 {
		s = append(s, "0x"+strconv.FormatUint(uint64(rem), 16))
	}
	return strings.Join(s, ",")
}

// Config is the resolved build configuration of a bootstrap.
type Config struct {
	// Capabilities requested for this build.
	Capabilities Set
	// Mechanisms derived from Capabilities by [Resolve].
	Mechanisms Mechanisms
}

// Flag reports whether the named capability or mechanism is present in [Config],
// and whether the name is known at all.
func (c Config) Flag(name string) (present, known bool) {
	for i, n := range capNames {
		if n == name {
			return c.Capabilities.Has(1 << i), true
		}
	}
	for i, n := range mechNames {
		if n == name {
			return c.Mechanisms.Has(1 << i), true
		}
	}
	return false, false
}

func (c Config) String() string { return c.Capabilities.String() + ": " + c.Mechanisms.String() }
