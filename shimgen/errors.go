package shimgen

import (
	"strconv"
)

// TemplateError is returned for a malformed template, or a template referring to a missing binding.
type TemplateError struct {
	// Line and Col are the 1-based position of the offending directive.
	Line, Col int
	// Directive is the offending directive, without its delimiters.
	Directive string
	// Reason describes the problem.
	Reason string
}

func (e *TemplateError) Error() string {
	return "template:" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Col) + ": " + e.Reason + " in $(" + e.Directive + ")"
}

func (e *TemplateError) Message() string {
	return "invalid template at line " + strconv.Itoa(e.Line) + ": " + e.Reason + " in $(" + e.Directive + ")"
}

// pos is a position within a template.
type pos struct{ line, col int }

func (p pos) errorf(directive, reason string) *TemplateError {
	return &TemplateError{p.line, p.col, directive, reason}
}
