package expr

import "github.com/shopspring/decimal"

// Simplify applies rewrite rules to reduce an expression tree.
// It repeatedly applies rules until no further changes occur. Rules never
// drop a variable, so a missing value still yields a missing result.
func Simplify(node ExprNode) ExprNode {
	for i := 0; i < 20; i++ { // cap iterations
		next := simplifyOnce(node)
		if next.String() == node.String() {
			return next
		}
		node = next
	}
	return node
}

func simplifyOnce(node ExprNode) ExprNode {
	n, ok := node.(*BinaryNode)
	if !ok {
		return node
	}
	if n.IsValid() == ParseError {
		return node
	}

	left := n.Left
	if left != nil {
		left = simplifyOnce(left)
	}
	right := simplifyOnce(n.Right)
	out := &BinaryNode{Op: n.Op, Left: left, Right: right, sealed: n.sealed}

	// Constant folding
	if len(out.Variables()) == 0 {
		if v, err := out.Evaluate(nil); err == nil && v.Valid {
			return &ConstNode{Val: v.Decimal}
		}
		return out
	}

	switch n.Op {
	case OpAdd:
		// x + 0 = x
		if isConst(right, 0) {
			return left
		}
		// 0 + x = x
		if isConst(left, 0) {
			return right
		}
	case OpSub:
		// x - 0 = x
		if left != nil && isConst(right, 0) {
			return left
		}
		// -(-x) = x
		if out.Unary() {
			if inner, ok := right.(*BinaryNode); ok && inner.Unary() {
				return inner.Right
			}
		}
	case OpMul:
		// x * 1 = x
		if isConst(right, 1) {
			return left
		}
		// 1 * x = x
		if isConst(left, 1) {
			return right
		}
	case OpDiv:
		// x / 1 = x
		if isConst(right, 1) {
			return left
		}
	}
	return out
}

func isConst(n ExprNode, v int64) bool {
	c, ok := n.(*ConstNode)
	return ok && c.Val.Equal(decimal.NewFromInt(v))
}
