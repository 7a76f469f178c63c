package boot

import (
	"io"

	"shimpack.app/feature"
)

// Options are interpreter options relevant to startup.
type Options struct {
	// Preprocess is whether the interpreter was asked to preprocess its source.
	Preprocess bool
}

// Interpreter is the host interpreter driven by [Context.Run].
type Interpreter interface {
	// ParseArgs parses the spliced argument vector.
	ParseArgs(c *Context, argv []string) (Options, error)
	// Boot is the boot entry point of the interpreter.
	Boot(c *Context) error
	// Eval evaluates a single line of startup code. [NativeName] must be bound to [Context.Native].
	Eval(c *Context, code string) error
	// Exec parses and runs the main program. If r is nil, the interpreter reads the
	// program selected by its arguments. Exec must call [Context.Parsed] before running user code.
	Exec(c *Context, name string, r io.Reader) error
}

// Run drives interp through the remainder of the startup sequence.
// Errors returned by interp are returned as is.
func (c *Context) Run(interp Interpreter) error {
	if c.state != StateArgsSpliced {
		err := &StartupError{"run interpreter", &StateError{c.state, StateBootHookEntered}}
		c.fatal(err)
		return err
	}

	opts, err := interp.ParseArgs(c, c.Argv)
	if err != nil {
		return err
	}
	c.options = opts

	boot := func() error { return interp.Boot(c) }
	if c.has(feature.MBootHook) {
		boot = c.WrapBoot(boot)
	}
	if err = boot(); err != nil {
		return err
	}

	for _, code := range c.Preamble() {
		if err = interp.Eval(c, code); err != nil {
			return err
		}
	}

	if c.has(feature.MPayloadChannel) && c.Input == nil {
		err = &StartupError{"run payload", ErrNoChannel}
		c.fatal(err)
		return err
	}
	return interp.Exec(c, c.Filename, c.Input)
}

// Start runs interp with a new [Context] and closes it once interp returns.
func Start(cfg *Config, interp Interpreter, argv []string) error {
	c := New(cfg, nil)
	defer c.Close()
	c.Splice(argv)
	return c.Run(interp)
}
