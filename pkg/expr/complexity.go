package expr

import "strings"

func (v *VarNode) NodeCount() int   { return 1 }
func (c *ConstNode) NodeCount() int { return 1 }
func (b *BinaryNode) NodeCount() int {
	return 1 + nodeCount(b.Left) + nodeCount(b.Right)
}

func (v *VarNode) Depth() int   { return 1 }
func (c *ConstNode) Depth() int { return 1 }
func (b *BinaryNode) Depth() int {
	ld := depth(b.Left)
	rd := depth(b.Right)
	if ld > rd {
		return 1 + ld
	}
	return 1 + rd
}

// VarSteps is the number of generations a variable reference needs tracked:
// the current one plus one per priming marker.
func (v *VarNode) VarSteps() int   { return strings.Count(v.Name, string(PrimeMarker)) + 1 }
func (c *ConstNode) VarSteps() int { return 0 }
func (b *BinaryNode) VarSteps() int {
	return max(varSteps(b.Left), varSteps(b.Right))
}

func (v *VarNode) Variables() []string   { return []string{v.Name} }
func (c *ConstNode) Variables() []string { return nil }

// Variables returns distinct names in left-to-right order.
func (b *BinaryNode) Variables() []string {
	var out []string
	seen := map[string]bool{}
	for _, child := range []ExprNode{b.Left, b.Right} {
		if child == nil {
			continue
		}
		for _, name := range child.Variables() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// Children of a node under construction may be nil.

func nodeCount(n ExprNode) int {
	if n == nil {
		return 0
	}
	return n.NodeCount()
}

func depth(n ExprNode) int {
	if n == nil {
		return 0
	}
	return n.Depth()
}

func varSteps(n ExprNode) int {
	if n == nil {
		return 0
	}
	return n.VarSteps()
}
