package expr

import "fmt"

// pending reports whether n is an operator still waiting for its right
// operand.
func pending(n ExprNode) bool {
	b, ok := n.(*BinaryNode)
	return ok && !b.sealed && b.Right == nil
}

// bindUnary gives every '-' that directly follows another open operator its
// right operand, and seals it. It runs after the power pass, so "2*-3^2"
// negates the folded power. A '-' that starts the sequence is left open and
// takes its operand in the add pass like any subtraction. Working right to
// left lets "2*--x" nest.
func bindUnary(seq []ExprNode) []ExprNode {
	for i := len(seq) - 2; i > 0; i-- {
		b, ok := seq[i].(*BinaryNode)
		if !ok || b.sealed || b.Op != OpSub || b.Left != nil || b.Right != nil {
			continue
		}
		if !pending(seq[i-1]) {
			continue
		}
		if pending(seq[i+1]) {
			continue
		}
		b.Right = seq[i+1]
		b.sealed = true
		seq = append(seq[:i+1], seq[i+2:]...)
	}
	return seq
}

// chain folds a flat leaf sequence into one tree. Each cycle runs one
// grouping pass per precedence tier; cycles repeat until the sequence stops
// shrinking.
func chain(seq []ExprNode) (ExprNode, error) {
	for {
		before := len(seq)
		for _, tier := range chainTiers {
			seq = foldTier(seq, tier)
			if tier == TierPow {
				seq = bindUnary(seq)
			}
		}
		if len(seq) == before {
			break
		}
	}
	if len(seq) != 1 {
		return nil, fmt.Errorf("%w: %d elements remain", ErrUnchainable, len(seq))
	}
	return seq[0], nil
}

// foldTier makes one left-to-right pass with an explicit stack, attaching
// operands to the open operators of tier.
func foldTier(seq []ExprNode, tier Tier) []ExprNode {
	stack := make([]ExprNode, 0, len(seq))
	for _, cur := range seq {
		if n := len(stack); n > 0 && !pending(cur) {
			if top, ok := stack[n-1].(*BinaryNode); ok && pending(top) && tierOf(top.Op) == tier {
				top.Right = cur
				continue
			}
		}

		b, ok := cur.(*BinaryNode)
		if !ok || b.sealed || tierOf(b.Op) != tier {
			stack = append(stack, cur)
			continue
		}
		if n := len(stack); b.Left == nil && n > 0 && !pending(stack[n-1]) {
			b.Left = stack[n-1]
			stack = stack[:n-1]
		}
		stack = append(stack, b)
	}
	return stack
}
