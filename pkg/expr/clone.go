package expr

func (v *VarNode) Clone() ExprNode {
	return &VarNode{Name: v.Name}
}

func (c *ConstNode) Clone() ExprNode {
	return &ConstNode{Val: c.Val}
}

func (b *BinaryNode) Clone() ExprNode {
	return &BinaryNode{
		Op:     b.Op,
		Left:   cloneNode(b.Left),
		Right:  cloneNode(b.Right),
		sealed: b.sealed,
	}
}

func cloneNode(n ExprNode) ExprNode {
	if n == nil {
		return nil
	}
	return n.Clone()
}
