package boot

import (
	"shimpack.app/feature"
)

// taint marks embedded input as untrusted. The flag is only ever set once.
func (c *Context) taint() {
	if c.taintSet > 0 {
		return
	}
	c.tainted = true
	c.taintSet++
	c.msg.Verbose("embedded input marked tainted")
}

// clearTaint clears the taint flag and enters [StateTrustCleared].
func (c *Context) clearTaint() {
	c.tainted = false
	c.taintCleared++
	c.msg.Verbosef("taint cleared under policy %s", c.config.Taint)
	c.advance(StateTrustCleared)
}

// Tainted returns whether embedded input is tainted.
// Under [TaintClearOnObserve], the flag is cleared once observed. Archive modules
// observing the flag before the payload channel opens leave it set for the payload.
func (c *Context) Tainted() bool {
	if !c.tainted {
		return false
	}
	if c.config.Taint == TaintClearOnObserve &&
		(c.Input != nil || !c.has(feature.MPayloadChannel)) {
		c.clearTaint()
	}
	return true
}

// Parsed is called by the interpreter once the payload is parsed, before running user code.
func (c *Context) Parsed() {
	if c.state >= StateUserCode {
		return
	}
	if c.tainted {
		c.clearTaint()
	}
	c.advance(StateUserCode)
	c.msg.Resume()
}
