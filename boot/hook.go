package boot

import (
	"shimpack.app/feature"
)

// BootFunc is the boot entry point of the interpreter.
type BootFunc func() error

// WrapBoot returns a [BootFunc] running the startup mechanisms ahead of orig.
// The returned function calls orig as its final action, and may only be entered once.
func (c *Context) WrapBoot(orig BootFunc) BootFunc {
	return func() error {
		c.hookDepth++
		defer func() { c.hookDepth-- }()
		if c.hookDepth > 1 {
			c.fatal(&StartupError{"enter boot hook", ErrReentrant})
			return ErrReentrant
		}
		if !c.advance(StateBootHookEntered) {
			return ErrReentrant
		}

		if c.has(feature.MTrustGate) && c.options.Preprocess {
			err := &StartupError{"load embedded payload", ErrPreprocess}
			c.fatal(err)
			return err
		}

		if c.has(feature.MSearchPath) {
			if err := c.injectSearchPath(); err != nil {
				c.fatal(err)
				return err
			}
			if c.has(feature.MTrustGate) {
				c.taint()
			}
			c.advance(StateSearchPathInjected)
		}

		if c.has(feature.MPreamble) {
			c.preamble = append(c.preamble, c.config.Preamble())
			c.msg.Verbosef("scheduled preamble %q", c.config.Preamble())
			c.advance(StatePreambleScheduled)
		}

		return orig()
	}
}

// Preamble returns and drains pending preamble lines, to be evaluated
// by the interpreter ahead of anything else.
func (c *Context) Preamble() []string {
	v := c.preamble
	c.preamble = nil
	return v
}

// Native is the native function the preamble invokes under [NativeName].
// Native opens the payload channel and marks it tainted. Log output is withheld
// from then on until [Context.Parsed], so it never interleaves with parser diagnostics.
func (c *Context) Native() error {
	if !c.has(feature.MPayloadChannel) {
		err := &StartupError{"open payload channel", ConfigError("payload channel is not enabled")}
		c.fatal(err)
		return err
	}
	if c.Input != nil {
		err := &StartupError{"open payload channel", ErrReentrant}
		c.fatal(err)
		return err
	}

	r, name, err := c.OpenChannel()
	if err != nil {
		c.fatal(err)
		return err
	}
	if !c.advance(StateChannelOpened) {
		return ErrReentrant
	}
	c.Input, c.Filename = r, name
	if c.has(feature.MTrustGate) {
		c.taint()
	}
	c.msg.Suspend()
	return nil
}
