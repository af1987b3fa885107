package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by resolvers when a key is unknown.
	ErrNotFound = errors.New("variable not found")

	// ErrMissingOperand is returned when a binary node lacks a required child.
	ErrMissingOperand = errors.New("missing operand")

	// ErrUnchainable is returned when a leaf sequence cannot be folded into a
	// single tree.
	ErrUnchainable = errors.New("expression could not be normalized to a single tree")
)

// SyntaxError describes malformed expression text.
type SyntaxError struct {
	Expr string
	Pos  int // rune offset, -1 when not tied to a position
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("syntax error at %d in %q: %s", e.Pos, e.Expr, e.Msg)
	}
	return fmt.Sprintf("syntax error in %q: %s", e.Expr, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func newSyntaxError(text string, pos int, format string, a ...any) *SyntaxError {
	return &SyntaxError{Expr: text, Pos: pos, Msg: fmt.Sprintf(format, a...)}
}
