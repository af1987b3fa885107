package expr

import "fmt"

// Validity classifies the outcome of evaluating an expression against a
// Resolver. Constants are ordered by severity, least severe first.
type Validity int

const (
	OK Validity = iota
	Null
	NotFound
	ParseError
)

var validityNames = map[Validity]string{
	OK:         "ok",
	Null:       "null",
	NotFound:   "not_found",
	ParseError: "parse_error",
}

// Combine returns the more severe of a and b.
func Combine(a, b Validity) Validity {
	if b > a {
		return b
	}
	return a
}

// CombineAll folds Combine over vs. The empty combination is OK.
func CombineAll(vs ...Validity) Validity {
	out := OK
	for _, v := range vs {
		out = Combine(out, v)
	}
	return out
}

func (v Validity) String() string {
	if name, ok := validityNames[v]; ok {
		return name
	}
	return fmt.Sprintf("validity(%d)", int(v))
}

func (v Validity) MarshalText() ([]byte, error) {
	if _, ok := validityNames[v]; !ok {
		return nil, fmt.Errorf("unknown validity %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *Validity) UnmarshalText(text []byte) error {
	for k, name := range validityNames {
		if name == string(text) {
			*v = k
			return nil
		}
	}
	return fmt.Errorf("unknown validity %q", text)
}

// Validities lists every classification in severity order.
func Validities() []Validity {
	return []Validity{OK, Null, NotFound, ParseError}
}
