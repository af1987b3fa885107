package expr

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseOption configures Parse.
type ParseOption func(*parser)

// WithKeyRewriter rewrites every variable name as it is parsed. Alias
// resolvers use it to bind formula-local names to resolver keys.
func WithKeyRewriter(fn func(string) string) ParseOption {
	return func(p *parser) {
		p.rewrite = fn
	}
}

type parser struct {
	rewrite func(string) string
}

// Parse turns formula text into an expression tree.
//
// Constants use either ',' or '.' as decimal separator, variables are
// written [name], parentheses group, and the operators are ^ * / + - > < =.
// Malformed text returns a *SyntaxError.
func Parse(text string, opts ...ParseOption) (ExprNode, error) {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p.parse(text)
}

// MustParse is like Parse but panics on error.
func MustParse(text string, opts ...ParseOption) ExprNode {
	n, err := Parse(text, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *parser) parse(text string) (ExprNode, error) {
	leaves, err := p.leaves(text)
	if err != nil {
		return nil, err
	}
	root, err := chain(leaves)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &SyntaxError{Expr: text, Pos: -1, Msg: err.Error(), Err: err}
	}
	if root.IsValid() == ParseError {
		return nil, &SyntaxError{Expr: text, Pos: -1, Msg: ErrMissingOperand.Error(), Err: ErrMissingOperand}
	}
	return root, nil
}

// leaves splits text into constants, variables, sealed sub-expressions and
// open operator nodes.
func (p *parser) leaves(text string) ([]ExprNode, error) {
	var (
		out   []ExprNode
		buf   strings.Builder
		inVar bool
		start int
	)
	runes := []rune(text)

	flush := func(pos int) error {
		s := buf.String()
		buf.Reset()
		if strings.TrimSpace(s) == "" {
			return nil
		}
		v, err := parseConstant(s)
		if err != nil {
			return newSyntaxError(text, pos, "invalid number %q", strings.TrimSpace(s))
		}
		out = append(out, &ConstNode{Val: v})
		return nil
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case inVar && c == ']':
			name := buf.String()
			buf.Reset()
			inVar = false
			if name == "" {
				return nil, newSyntaxError(text, i, "empty variable name")
			}
			if p.rewrite != nil {
				name = p.rewrite(name)
			}
			out = append(out, &VarNode{Name: name})
			start = i + 1
		case inVar:
			buf.WriteRune(c)
		case c == '[':
			if err := flush(start); err != nil {
				return nil, err
			}
			inVar = true
		case c == ']':
			return nil, newSyntaxError(text, i, "unmatched ']'")
		case c == '(':
			if err := flush(start); err != nil {
				return nil, err
			}
			end, err := matchParen(text, runes, i)
			if err != nil {
				return nil, err
			}
			sub, err := p.parse(string(runes[i+1 : end]))
			if err != nil {
				return nil, err
			}
			if b, ok := sub.(*BinaryNode); ok {
				b.sealed = true
			}
			out = append(out, sub)
			i = end
			start = i + 1
		case c == ')':
			return nil, newSyntaxError(text, i, "unmatched ')'")
		case IsOperator(c):
			if err := flush(start); err != nil {
				return nil, err
			}
			spec, _ := LookupSymbol(c)
			out = append(out, &BinaryNode{Op: spec.Op})
			start = i + 1
		default:
			buf.WriteRune(c)
		}
	}
	if inVar {
		return nil, newSyntaxError(text, len(runes), "unterminated variable name")
	}
	if err := flush(start); err != nil {
		return nil, err
	}
	return out, nil
}

// matchParen returns the index of the ')' closing the '(' at open. Brackets
// inside variable names do not count.
func matchParen(text string, runes []rune, open int) (int, error) {
	depth := 0
	inVar := false
	for i := open; i < len(runes); i++ {
		switch c := runes[i]; {
		case inVar:
			inVar = c != ']'
		case c == '[':
			inVar = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, newSyntaxError(text, open, "unmatched '('")
}

// parseConstant accepts ',' or '.' as decimal separator.
func parseConstant(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return decimal.NewFromString(s)
}
