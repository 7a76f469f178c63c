package shimgen

import (
	"strings"
)

type tokenKind uint8

const (
	tokText tokenKind = iota
	tokPlaceholder
	tokStart
	tokEach
	tokEnd
)

// token is a single lexical element of a template.
type token struct {
	kind tokenKind
	// text for tokText, name otherwise
	val string
	// verbatim directive, for error reporting
	raw string
	pos
}

// lex splits src into text and directive tokens.
func lex(src string) ([]token, error) {
	var (
		toks []token
		text strings.Builder
		// start of the pending text token
		textPos = pos{1, 1}
		cur     = pos{1, 1}
	)

	flush := func() {
		if text.Len() > 0 {
			toks = append(toks, token{kind: tokText, val: text.String(), pos: textPos})
			text.Reset()
		}
	}
	advance := func(s string) {
		for _, c := range s {
			if c == '\n' {
				cur.line++
				cur.col = 1
			} else {
				cur.col++
			}
		}
	}

	for i := 0; i < len(src); {
		if src[i] != '$' || i+1 == len(src) || (src[i+1] != '(' && src[i+1] != '$') {
			if text.Len() == 0 {
				textPos = cur
			}
			text.WriteByte(src[i])
			advance(src[i : i+1])
			i++
			continue
		}

		if src[i+1] == '$' {
			if text.Len() == 0 {
				textPos = cur
			}
			text.WriteByte('$')
			advance("$$")
			i += 2
			continue
		}

		end := strings.IndexAny(src[i+2:], ")\n")
		if end < 0 || src[i+2+end] == '\n' {
			raw := src[i+2:]
			if end >= 0 {
				raw = raw[:end]
			}
			return nil, cur.errorf(raw, "unterminated directive")
		}
		raw := src[i+2 : i+2+end]

		tok := token{raw: raw, pos: cur}
		fields := strings.Fields(raw)
		switch {
		case len(fields) == 1 && isName(fields[0]):
			tok.kind, tok.val = tokPlaceholder, fields[0]

		case len(fields) == 2 && isName(fields[1]) && fields[0] == "start":
			tok.kind, tok.val = tokStart, fields[1]
		case len(fields) == 2 && isName(fields[1]) && fields[0] == "each":
			tok.kind, tok.val = tokEach, fields[1]
		case len(fields) == 2 && isName(fields[1]) && fields[0] == "end":
			tok.kind, tok.val = tokEnd, fields[1]

		default:
			return nil, cur.errorf(raw, "malformed directive")
		}

		flush()
		toks = append(toks, tok)
		advance(src[i : i+3+end])
		i += 3 + end
	}
	flush()

	return toks, nil
}

// isName returns whether s is usable as a binding or flag name.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
