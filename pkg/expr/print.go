package expr

import "fmt"

func (v *VarNode) String() string {
	return "[" + v.Name + "]"
}

// String wraps negative constants so the output re-parses as unary minus.
func (c *ConstNode) String() string {
	if c.Val.IsNegative() {
		return "(" + c.Val.String() + ")"
	}
	return c.Val.String()
}

func (b *BinaryNode) String() string {
	sym := string(opsByOp[b.Op].Symbol)
	if b.Unary() {
		return fmt.Sprintf("(-%s)", operandString(b.Right))
	}
	return fmt.Sprintf("(%s %s %s)", operandString(b.Left), sym, operandString(b.Right))
}

func operandString(n ExprNode) string {
	if n == nil {
		return "?"
	}
	return n.String()
}
