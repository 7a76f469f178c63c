package shimgen

import (
	"bytes"
)

// Flags reports presence of the flags conditional blocks are named after.
// [feature.Config] implements Flags.
type Flags interface {
	// Flag returns whether name is present, and whether name is known at all.
	Flag(name string) (present, known bool)
}

// scope is a chain of binding tables, innermost first.
type scope []Bindings

func (s scope) lookup(name string) (Value, bool) {
	for _, b := range s {
		if v, ok := b.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Render substitutes bindings into t.
// A conditional block is kept when its flag is present in flags, or when a [Cond]
// of the same name is true; a name known to neither is an error.
// Render does not modify bindings, and always produces the same output for the same arguments.
func (t *Template) Render(flags Flags, bindings Bindings) ([]byte, error) {
	if err := bindings.validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render(&buf, t.root, flags, scope{bindings}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(buf *bytes.Buffer, nodes []node, flags Flags, s scope) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			buf.WriteString(n.text)

		case *placeholderNode:
			v, ok := s.lookup(n.name)
			if !ok {
				return n.errorf(n.raw, "unknown placeholder")
			}
			lit, ok := v.(Literal)
			if !ok {
				return n.errorf(n.raw, "placeholder is not bound to a literal")
			}
			buf.WriteString(string(lit))

		case *blockNode:
			if n.each {
				if err := renderEach(buf, n, flags, s); err != nil {
					return err
				}
				continue
			}

			present, err := cond(n, flags, s)
			if err != nil {
				return err
			}
			if present {
				if err = render(buf, n.body, flags, s); err != nil {
					return err
				}
			} else if err = check(n.body, flags, s, false); err != nil {
				return err
			}

		default:
			panic("invalid node type")
		}
	}
	return nil
}

func renderEach(buf *bytes.Buffer, n *blockNode, flags Flags, s scope) error {
	list, err := lookupList(n, s, false)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return check(n.body, flags, s, true)
	}
	for _, e := range list {
		if err = render(buf, n.body, flags, append(scope{e}, s...)); err != nil {
			return err
		}
	}
	return nil
}

// lookupList returns the [List] named by n. A missing list is only tolerated if loose is true.
func lookupList(n *blockNode, s scope, loose bool) (List, error) {
	v, ok := s.lookup(n.name)
	if !ok {
		if loose {
			return nil, nil
		}
		return nil, n.errorf(n.raw, "unknown list")
	}
	list, ok := v.(List)
	if !ok {
		return nil, n.errorf(n.raw, "repeated block is not bound to a list")
	}
	return list, nil
}

func cond(n *blockNode, flags Flags, s scope) (bool, error) {
	if flags != nil {
		if present, known := flags.Flag(n.name); known {
			return present, nil
		}
	}
	v, ok := s.lookup(n.name)
	if !ok {
		return false, n.errorf(n.raw, "unknown flag")
	}
	c, ok := v.(Cond)
	if !ok {
		return false, n.errorf(n.raw, "conditional block is not bound to a flag")
	}
	return bool(c), nil
}

// check resolves every name in nodes without emitting output, so omitted text fails
// the same way for every feature set. Within a repeated block without elements,
// names may be supplied by the absent elements, and loose is set.
func check(nodes []node, flags Flags, s scope, loose bool) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:

		case *placeholderNode:
			if loose {
				continue
			}
			v, ok := s.lookup(n.name)
			if !ok {
				return n.errorf(n.raw, "unknown placeholder")
			}
			if _, ok = v.(Literal); !ok {
				return n.errorf(n.raw, "placeholder is not bound to a literal")
			}

		case *blockNode:
			if n.each {
				list, err := lookupList(n, s, loose)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					if err = check(n.body, flags, s, true); err != nil {
						return err
					}
					continue
				}
				for _, e := range list {
					if err = check(n.body, flags, append(scope{e}, s...), loose); err != nil {
						return err
					}
				}
				continue
			}

			if _, err := cond(n, flags, s); err != nil && !loose {
				return err
			}
			if err := check(n.body, flags, s, loose); err != nil {
				return err
			}

		default:
			panic("invalid node type")
		}
	}
	return nil
}
