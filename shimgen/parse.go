package shimgen

// node is an element of a parsed template.
type node interface{ position() pos }

type (
	// textNode is emitted verbatim.
	textNode struct {
		text string
		pos
	}
	// placeholderNode is substituted with a [Literal] binding.
	placeholderNode struct {
		name, raw string
		pos
	}
	// blockNode is a conditional or repeated block.
	blockNode struct {
		// each is true for a repeated block
		each bool
		name string
		raw  string
		body []node
		pos
	}
)

func (n *textNode) position() pos        { return n.pos }
func (n *placeholderNode) position() pos { return n.pos }
func (n *blockNode) position() pos       { return n.pos }

// Template is a parsed bootstrap template.
// A Template is immutable and may be rendered any number of times.
type Template struct{ root []node }

// Parse parses src into a [Template].
func Parse(src string) (*Template, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	var (
		root  []node
		stack []*blockNode
	)
	emit := func(n node) {
		if len(stack) == 0 {
			root = append(root, n)
		} else {
			b := stack[len(stack)-1]
			b.body = append(b.body, n)
		}
	}

	for _, tok := range toks {
		switch tok.kind {
		case tokText:
			emit(&textNode{tok.val, tok.pos})

		case tokPlaceholder:
			emit(&placeholderNode{tok.val, tok.raw, tok.pos})

		case tokStart, tokEach:
			b := &blockNode{each: tok.kind == tokEach, name: tok.val, raw: tok.raw, pos: tok.pos}
			emit(b)
			stack = append(stack, b)

		case tokEnd:
			if len(stack) == 0 {
				return nil, tok.errorf(tok.raw, "end without matching start")
			}
			if b := stack[len(stack)-1]; b.name != tok.val {
				return nil, tok.errorf(tok.raw, "end does not match $("+b.raw+")")
			}
			stack = stack[:len(stack)-1]

		default:
			panic("invalid token kind")
		}
	}

	if len(stack) > 0 {
		b := stack[len(stack)-1]
		return nil, b.errorf(b.raw, "block is never closed")
	}
	return &Template{root}, nil
}

// MustParse calls [Parse] and panics on error.
func MustParse(src string) *Template {
	if t, err := Parse(src); err != nil {
		panic(err)
	} else {
		return t
	}
}
