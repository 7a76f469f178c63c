package shimgen

import (
	_ "embed"
	"errors"
	"go/format"
	"strconv"
	"strings"

	"shimpack.app/boot"
	"shimpack.app/feature"
)

//go:embed bootstrap.go.tmpl
var bootstrapSource string

// bootstrap is the default bootstrap template.
var bootstrap = MustParse(bootstrapSource)

// DefaultTemplate returns the source of the default bootstrap template.
func DefaultTemplate() string { return bootstrapSource }

// Options are generation parameters not described by the capability set.
type Options struct {
	// Package is the package clause of the generated file, "main" if empty.
	Package string
	// Identity is the program identity presented with [feature.RedirectIdentity].
	Identity string
	// Args are the synthetic arguments following the program identity.
	Args []string
	// Preamble overrides [boot.DefaultPreamble].
	Preamble string
	// Taint is the taint clearing policy.
	Taint boot.TaintPolicy
	// Template overrides the default bootstrap template.
	Template string
}

var (
	// ErrIdentity is returned redirecting the program identity to an empty string.
	ErrIdentity = errors.New("redirected program identity is empty")
	// ErrArgumentNUL is returned for a synthetic argument containing a NUL byte.
	ErrArgumentNUL = errors.New("synthetic argument contains NUL")
)

// SourceError is returned when the rendered template is not valid Go source.
type SourceError struct {
	// Source is the unformatted output.
	Source []byte
	// Err is returned by [format.Source].
	Err error
}

func (e *SourceError) Unwrap() error { return e.Err }
func (e *SourceError) Error() string { return "generated source: " + e.Err.Error() }
func (e *SourceError) Message() string {
	return "template produced invalid Go source: " + e.Err.Error()
}

// NewConfig resolves s and returns the [boot.Config] baked into the bootstrap.
// The payload kind is derived from s, and naming an entry requests [feature.ArchiveScript].
func NewConfig(s feature.Set, p boot.Payload, o *Options) (*boot.Config, error) {
	if p.Entry != "" {
		s |= feature.ArchiveScript
	}
	fc, err := feature.Resolve(s)
	if err != nil {
		return nil, err
	}

	cfg := &boot.Config{Features: fc, Taint: o.Taint}
	if s.Has(feature.RewriteArguments) {
		if s.Has(feature.RedirectIdentity) && o.Identity == "" {
			return nil, ErrIdentity
		}
		for _, arg := range append([]string{o.Identity}, o.Args...) {
			if strings.IndexByte(arg, 0) >= 0 {
				return nil, ErrArgumentNUL
			}
		}
		cfg.Args = boot.NewArgBuffer(append([]string{o.Identity}, o.Args...)...)
	}

	if s.Any(feature.EmbedScript | feature.EmbedArchive) {
		cfg.Payload = p
		cfg.Payload.Kind = boot.KindScript
		if s.Has(feature.EmbedArchive) {
			cfg.Payload.Kind = boot.KindArchive
		}
	}
	if fc.Mechanisms.Has(feature.MPreamble) {
		cfg.PreambleCode = o.Preamble
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BootstrapBindings returns the binding table of the default bootstrap template for cfg.
func BootstrapBindings(cfg *boot.Config, pkg string) Bindings {
	if pkg == "" {
		pkg = "main"
	}

	arguments := make(List, cfg.Args.Len())
	for i := range arguments {
		arguments[i] = Bindings{
			{"offset", Literal(strconv.FormatUint(uint64(cfg.Args.Offsets[i]), 10))},
			{"value", Literal(strconv.Quote(cfg.Args.Index(i)))},
		}
	}

	caps := cfg.Features.Capabilities
	return Bindings{
		{"package", Literal(pkg)},
		{"capability-names", Literal(caps.String())},
		{"capabilities", Literal(caps.GoString())},
		{"mechanisms", Literal(cfg.Features.Mechanisms.GoString())},

		{"argument-data", Literal(strconv.Quote(cfg.Args.Data))},
		{"arguments", arguments},

		{"embed-payload", Cond(caps.Any(feature.EmbedScript | feature.EmbedArchive))},
		{"offset-from-end", Literal(strconv.FormatInt(cfg.Payload.OffsetFromEnd, 10))},
		{"payload-kind", Literal(cfg.Payload.Kind.GoString())},
		{"entry", Literal(strconv.Quote(cfg.Payload.Entry))},

		{"preamble", Literal(strconv.Quote(cfg.Preamble()))},
		{"taint-policy", Literal(cfg.Taint.GoString())},
	}
}

// Generate returns the formatted source of a bootstrap implementing s.
// Output only depends on the arguments.
func Generate(s feature.Set, p boot.Payload, o Options) ([]byte, error) {
	cfg, err := NewConfig(s, p, &o)
	if err != nil {
		return nil, err
	}

	t := bootstrap
	if o.Template != "" {
		if t, err = Parse(o.Template); err != nil {
			return nil, err
		}
	}

	out, err := t.Render(cfg.Features, BootstrapBindings(cfg, o.Package))
	if err != nil {
		return nil, err
	}
	src, err := format.Source(out)
	if err != nil {
		return nil, &SourceError{out, err}
	}
	return src, nil
}
