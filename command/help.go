package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
)

// ErrHelp is returned after printing the help message of a subcommand tree.
var ErrHelp = errors.New("help requested")

func (n *node) PrintHelp() { _ = n.writeHelp() }

// path returns the names leading to n, separated by spaces.
func (n *node) path() string { return strings.Join(append(slices.Clone(n.prefix), n.name), " ") }

// writeHelp writes the usage line of n followed by its visible subcommands.
func (n *node) writeHelp() error {
	if _, err := fmt.Fprintf(n.out,
		"\nUsage:\t%s [-h | --help]%s COMMAND [OPTIONS]\n",
		n.path(), &n.suffix,
	); err != nil {
		return err
	}

	if n.child != nil {
		if _, err := fmt.Fprint(n.out, "\nCommands:\n"); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(n.out, 0, 1, 4, ' ', 0)
		for c := n.child; c != nil; c = c.next {
			if c.usage == UsageInternal {
				continue
			}
			if _, err := fmt.Fprintf(tw, "\t%s\t%s\n", c.name, c.usage); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if _, err := n.out.Write([]byte{'\n'}); err != nil {
		return err
	}
	return ErrHelp
}

// printUsage is installed as the usage function of the flag set of n.
func (n *node) printUsage() {
	_ = n.writeHelp()
	if n.suffix.Len() == 0 {
		return
	}
	_, _ = fmt.Fprintln(n.out, "Flags:")
	n.set.PrintDefaults()
	_, _ = fmt.Fprintln(n.out)
}
