package expr

import (
	"errors"
	"fmt"
)

func (c *ConstNode) IsValid() Validity { return OK }
func (v *VarNode) IsValid() Validity   { return OK }

// IsValid checks structure only: every operator needs a right child, and
// every operator but subtract needs a left one.
func (b *BinaryNode) IsValid() Validity {
	left, right, err := b.operands()
	if err != nil {
		return ParseError
	}
	return Combine(left.IsValid(), right.IsValid())
}

func (c *ConstNode) Validate(Resolver) (Validity, error) { return OK, nil }

func (v *VarNode) Validate(r Resolver) (Validity, error) {
	if r == nil {
		return NotFound, fmt.Errorf("validate [%s]: nil resolver", v.Name)
	}
	val, err := r.Resolve(v.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound, nil
	case err != nil:
		return NotFound, fmt.Errorf("resolve [%s]: %w", v.Name, err)
	case !val.Valid:
		return Null, nil
	}
	return OK, nil
}

func (b *BinaryNode) Validate(r Resolver) (Validity, error) {
	left, right, err := b.operands()
	if err != nil {
		return ParseError, nil
	}
	lv, err := left.Validate(r)
	if err != nil {
		return lv, err
	}
	rv, err := right.Validate(r)
	if err != nil {
		return rv, err
	}
	return Combine(lv, rv), nil
}
