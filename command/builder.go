package command

import (
	"flag"
	"io"
)

// New initialises a root Node. If early is not nil, it is called after
// toplevel flags are parsed and before any subcommand is matched.
func New(output io.Writer, logf LogFunc, name string, early HandlerFunc) Command {
	n := newNode(output, logf, name, "")
	n.f = early
	return rootNode{n}
}

// rootNode returns [Command] from its builder methods so the toplevel can be built in one chain.
type rootNode struct{ *node }

func (r rootNode) Command(name, usage string, f HandlerFunc) Command {
	r.node.Command(name, usage, f)
	return r
}

func (r rootNode) Flag(p any, name string, value FlagDefiner, usage string) Command {
	r.node.Flag(p, name, value, usage)
	return r
}

func newNode(output io.Writer, logf LogFunc, name, usage string) *node {
	n := &node{
		name: name, usage: usage,
		out: output, logf: logf,
		set: flag.NewFlagSet(name, flag.ContinueOnError),
	}
	n.set.SetOutput(output)
	n.set.Usage = n.printUsage

	return n
}

func (n *node) Command(name, usage string, f HandlerFunc) Node {
	n.NewCommand(name, usage, f)
	return n
}

func (n *node) NewCommand(name, usage string, f HandlerFunc) Flag[Node] {
	if f == nil {
		panic("invalid handler")
	}
	if name == "" || usage == "" {
		panic("invalid subcommand")
	}

	s := newNode(n.out, n.logf, name, usage)
	s.f = f
	if !n.adopt(s) {
		panic("attempted to initialise subcommand with non-unique name")
	}
	return s
}

func (n *node) New(name, usage string) Node {
	if name == "" || usage == "" {
		panic("invalid subcommand tree")
	}
	s := newNode(n.out, n.logf, name, usage)
	if !n.adopt(s) {
		panic("attempted to initialise subcommand tree with non-unique name")
	}
	return s
}
