package feature

import (
	"strings"
)

// ConfigError is returned by [Resolve] for a capability set that cannot be built.
type ConfigError struct {
	// Conflict holds the offending capabilities.
	Conflict Set
	// Reason describes the conflict.
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid capabilities " + e.Conflict.String() + ": " + e.Reason
}

func (e *ConfigError) Message() string {
	return "cannot build with " + strings.ReplaceAll(e.Conflict.String(), ",", " and ") + ": " + e.Reason
}

type conflict struct {
	// rejected when all of these are present
	all Set
	// and none of these
	none Set
	// or when any two of these are present
	exclusive Set

	reason string
}

var conflicts = [...]conflict{
	{all: RedirectIdentity, none: RewriteArguments,
		reason: "program identity can only be redirected by rewriting arguments"},
	{all: ArchiveScript, none: EmbedArchive,
		reason: "script entry requires an embedded archive"},
	{exclusive: EmbedScript | EmbedArchive,
		reason: "a host binary carries a single payload"},
}

// payloads are the capabilities placing external input ahead of the interpreter.
const payloads = EmbedScript | EmbedArchive | ArchiveScript

type implication struct {
	// applies when any of these capabilities is present
	caps Set
	// or any of these mechanisms
	mechs Mechanisms

	adds Mechanisms
}

var implications = [...]implication{
	{caps: EmbedArchive, adds: MBootHook | MTrustGate | MSearchPath},
	{caps: ArchiveScript, adds: MBootHook | MPayloadChannel},
	{caps: EmbedScript, adds: MBootHook | MTrustGate | MPayloadChannel},
	{caps: EmbedScript | ArchiveScript, adds: MPreamble},
	// the preamble is scheduled from within the boot hook
	{mechs: MPreamble, adds: MBootHook},
}

// Resolve validates s and derives the [Mechanisms] required to implement it.
// The result only depends on the bits set in s.
func Resolve(s Set) (Config, error) {
	if s&^CapAll != 0 {
		return Config{}, &ConfigError{s &^ CapAll, "undefined capability bits"}
	}

	if s.Has(Preprocess) && s.Any(payloads) {
		return Config{}, &ConfigError{Preprocess | s&payloads,
			"source preprocessing cannot see an embedded payload"}
	}
	for _, c := range conflicts {
		if c.exclusive != 0 {
			if s&c.exclusive == c.exclusive {
				return Config{}, &ConfigError{c.exclusive, c.reason}
			}
			continue
		}
		if s.Has(c.all) && !s.Any(c.none) {
			return Config{}, &ConfigError{c.all | c.none, c.reason}
		}
	}

	var m Mechanisms
	for {
		prev := m
		for _, i := range implications {
			if s.Any(i.caps) || m&i.mechs != 0 {
				m |= i.adds
			}
		}
		if m == prev {
			break
		}
	}
	return Config{Capabilities: s, Mechanisms: m}, nil
}
