// Package boot implements the startup protocol of an interpreter carrying an appended payload.
package boot

import (
	"strconv"
	"strings"

	"shimpack.app/feature"
)

const (
	// NativeName is the name of the native function the preamble invokes.
	NativeName = "shimpack_boot"
	// DefaultPreamble is the preamble used when [Config.PreambleCode] is empty.
	DefaultPreamble = NativeName + "()"
)

// Kind is the kind of payload appended to the host binary.
type Kind uint8

const (
	// KindScript is script source read through the payload channel as-is.
	KindScript Kind = iota
	// KindArchive is a zip archive mounted as a module search root.
	KindArchive
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindArchive:
		return "archive"
	default:
		return "invalid"
	}
}

func (k Kind) GoString() string {
	switch k {
	case KindScript:
		return "boot.KindScript"
	case KindArchive:
		return "boot.KindArchive"
	default:
		return "boot.Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Payload describes placement of the payload within the host binary.
type Payload struct {
	// OffsetFromEnd is the distance in bytes from the end of the host binary to the start of the payload.
	OffsetFromEnd int64
	// Kind of payload.
	Kind Kind
	// Entry names the archive entry read through the payload channel, if any.
	Entry string
}

// TaintPolicy determines when the taint flag of embedded input is cleared.
type TaintPolicy uint8

const (
	// TaintClearOnObserve clears the flag as soon as the interpreter observes it.
	TaintClearOnObserve TaintPolicy = iota
	// TaintClearAfterParse clears the flag once the interpreter finishes parsing the payload.
	TaintClearAfterParse
)

func (p TaintPolicy) String() string {
	switch p {
	case TaintClearOnObserve:
		return "observe"
	case TaintClearAfterParse:
		return "parse"
	default:
		return "invalid"
	}
}

func (p TaintPolicy) GoString() string {
	switch p {
	case TaintClearOnObserve:
		return "boot.TaintClearOnObserve"
	case TaintClearAfterParse:
		return "boot.TaintClearAfterParse"
	default:
		return "boot.TaintPolicy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseTaintPolicy returns the [TaintPolicy] named by s.
func ParseTaintPolicy(s string) (TaintPolicy, bool) {
	switch s {
	case "", "observe":
		return TaintClearOnObserve, true
	case "parse":
		return TaintClearAfterParse, true
	default:
		return 0xff, false
	}
}

// Config is the bootstrap configuration baked into the host binary.
type Config struct {
	// Features holds the resolved build configuration.
	Features feature.Config
	// Args holds the synthetic arguments, only used with [feature.RewriteArguments].
	Args ArgBuffer
	// Payload describes the payload appended to the host binary.
	Payload Payload
	// PreambleCode is the line of startup code scheduled ahead of the payload.
	PreambleCode string
	// Taint is the policy for clearing the taint flag.
	Taint TaintPolicy
}

// Preamble returns the preamble line scheduled by the boot hook.
func (c *Config) Preamble() string {
	if c.PreambleCode == "" {
		return DefaultPreamble
	}
	return c.PreambleCode
}

// ConfigError is returned by [Config.Validate].
type ConfigError string

func (e ConfigError) Error() string   { return "invalid bootstrap configuration: " + string(e) }
func (e ConfigError) Message() string { return string(e) }

// Validate checks the integrity of a [Config], which is expected to be generated.
func (c *Config) Validate() error {
	if c == nil {
		return ConfigError("configuration is nil")
	}

	if want, err := feature.Resolve(c.Features.Capabilities); err != nil {
		return err
	} else if want != c.Features {
		return ConfigError("mechanisms " + c.Features.Mechanisms.String() +
			" do not match capabilities " + c.Features.Capabilities.String())
	}
	caps := c.Features.Capabilities

	if caps.Has(feature.RewriteArguments) {
		if !c.Args.Valid() {
			return ConfigError("malformed argument buffer")
		}
		if c.Args.Len() == 0 {
			return ConfigError("argument buffer has no identity slot")
		}
	}

	if caps.Any(feature.EmbedScript | feature.EmbedArchive) {
		if c.Payload.OffsetFromEnd <= 0 {
			return ConfigError("payload offset out of range")
		}
		if (c.Payload.Kind == KindArchive) != caps.Has(feature.EmbedArchive) {
			return ConfigError("payload kind " + c.Payload.Kind.String() + " does not match capabilities " + caps.String())
		}
		if (c.Payload.Entry != "") != caps.Has(feature.ArchiveScript) {
			return ConfigError("archive entry does not match capabilities " + caps.String())
		}
	}

	if c.Features.Mechanisms.Has(feature.MPreamble) {
		code := c.Preamble()
		if strings.ContainsAny(code, "\r\n") || !strings.Contains(code, NativeName) {
			return ConfigError("preamble must be a single line invoking " + NativeName)
		}
	}

	if c.Taint > TaintClearAfterParse {
		return ConfigError("invalid taint policy")
	}
	return nil
}
