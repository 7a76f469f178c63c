package boot

import (
	"archive/zip"
	"io"

	"shimpack.app/feature"
	"shimpack.app/message"
)

// Context holds all state of a single startup sequence.
// The zero value is not safe for use. Callers should use the [New] function instead.
type Context struct {
	// Argv is the argument vector seen by the interpreter, populated by Splice.
	Argv []string
	// Origin is the real program name, populated by Splice.
	Origin string
	// Filename is the name the payload is reported under, populated by Native.
	Filename string
	// Input is the payload channel, populated by Native.
	Input io.Reader
	// SearchPath holds module search roots in lookup order.
	SearchPath []SearchRoot

	// pending preamble lines
	preamble []string
	// options reported by the interpreter
	options Options

	// whether embedded input is currently tainted
	tainted bool
	// number of times the taint flag was set and cleared
	taintSet, taintCleared int

	// boot hook nesting
	hookDepth int
	// modules currently being loaded
	loading map[string]struct{}

	// host binary, opened on demand
	image *image
	// payload range within image
	payload *SubRange
	// embedded archive within payload
	archive *zip.Reader

	state  State
	config *Config
	msg    message.Msg
	k      syscallDispatcher
}

// New returns the address of a new [Context] for a generated [Config].
// If msg is nil, a new [message.Msg] is initialised in its place.
// An invalid configuration is a fatal startup error.
func New(cfg *Config, msg message.Msg) *Context {
	if msg == nil {
		msg = message.New(nil)
	}
	return newContext(direct{}, msg, cfg)
}

func newContext(k syscallDispatcher, msg message.Msg, cfg *Config) *Context {
	c := &Context{k: k, msg: msg, config: cfg, loading: make(map[string]struct{})}
	if err := cfg.Validate(); err != nil {
		c.fatal(err)
		return c
	}
	msg.Verbosef("capabilities %s, mechanisms %s",
		cfg.Features.Capabilities, cfg.Features.Mechanisms)
	return c
}

// State returns the current [State].
func (c *Context) State() State { return c.state }

// Config returns the address of the [Config] c is started with.
func (c *Context) Config() *Config { return c.config }

// has returns whether mechanism m is active.
func (c *Context) has(m feature.Mechanisms) bool { return c.config.Features.Mechanisms.Has(m) }

// fatal prints the user-facing message of err and exits.
func (c *Context) fatal(err error) {
	if m, ok := message.GetMessage(err); ok {
		c.k.fatal(c.msg, m)
	} else {
		c.k.fatal(c.msg, err)
	}
}

// advance enters next, which must follow the current state.
func (c *Context) advance(next State) bool {
	if next <= c.state {
		c.fatal(&StartupError{"advance startup", &StateError{c.state, next}})
		return false
	}
	c.msg.Verbosef("entered state %s", next)
	c.state = next
	return true
}

// Splice builds the argument vector seen by the interpreter from the real argv.
// Splice must be called exactly once.
func (c *Context) Splice(argv []string) []string {
	if c.state >= StateArgsSpliced {
		c.fatal(&StartupError{"splice arguments", ErrReentrant})
		return c.Argv
	}
	if len(argv) == 0 {
		c.fatal(&StartupError{"splice arguments", ErrEmptyArgv})
		return nil
	}

	c.Origin = argv[0]
	if c.config.Features.Capabilities.Has(feature.RewriteArguments) {
		c.Argv = splice(argv, c.config.Args,
			c.config.Features.Capabilities.Has(feature.RedirectIdentity))
		c.msg.Verbosef("spliced %d synthetic arguments", c.config.Args.Len()-1)
	} else {
		c.Argv = argv
	}
	c.advance(StateArgsSpliced)
	return c.Argv
}

// openPayload opens the host binary and locates the payload, if not already open.
func (c *Context) openPayload() error {
	if c.payload != nil {
		return nil
	}

	if c.image == nil {
		i, err := openImage(c.k)
		if err != nil {
			return err
		}
		c.image = i
	}

	r, err := c.image.payload(c.config.Payload.OffsetFromEnd)
	if err != nil {
		return err
	}
	c.msg.Verbosef("payload of %s at [%d, %d)", c.image.name, r.Start(), r.Start()+r.Size())
	c.payload = r
	return nil
}

// openArchive opens the embedded archive, if not already open.
func (c *Context) openArchive() error {
	if c.archive != nil {
		return nil
	}
	if err := c.openPayload(); err != nil {
		return err
	}
	z, err := openArchive(c.payload)
	if err != nil {
		return err
	}
	c.archive = z
	return nil
}

// OpenChannel returns a reader over the configured payload.
// For an archive payload, this is the configured entry.
func (c *Context) OpenChannel() (r io.Reader, name string, err error) {
	if err = c.openPayload(); err != nil {
		return
	}

	switch c.config.Payload.Kind {
	case KindScript:
		return NewSubRange(c.payload, 0, c.payload.Size()), c.image.name, nil

	case KindArchive:
		if err = c.openArchive(); err != nil {
			return
		}
		name = c.config.Payload.Entry
		r, err = archiveEntry(c.archive, c.payload, c.image.name, name)
		return

	default:
		return nil, "", &StartupError{"open payload channel", ConfigError("invalid payload kind")}
	}
}

// Close releases the host binary and resumes withheld log output.
func (c *Context) Close() error {
	c.msg.Resume()
	if c.image == nil {
		return nil
	}
	err := c.image.close()
	c.image, c.payload, c.archive = nil, nil, nil
	return err
}
