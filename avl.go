package avltree

// AVL balance maintenance.
//
// The balance of a node is height(child[1]) - height(child[0]). At rest it
// is one of -1, 0, +1; ±2 occurs only transiently and is resolved by
// rotations before an operation completes.
//
// Insertion always splits a leaf into a node with two leaves, so the subtree
// in the slot of the split leaf grows by exactly one level. Removal promotes
// the sibling of the removed leaf, which shrinks the slot of the former
// parent by exactly one level. Growth stops as soon as a node becomes
// balanced (the shorter side caught up), shrinking stops as soon as a node
// becomes unbalanced by one (the taller side still determines the height).

func direction(idx int) int8 {
	if idx == 1 {
		return 1
	}
	return -1
}

// grow is called after the subtree in slot idx of n has grown by one level.
func (t *Tree[K, L, N]) grow(n *node[K, L, N], idx int) {
	for {
		n.balance += direction(idx)
		switch n.balance {
		case 0:
			return
		case -1, 1:
			p := n.parent
			if p == nil {
				return
			}
			idx, n = p.indexOf(n), p
		case -2, 2:
			// after an insertion, a rotation restores the previous height
			t.rebalance(n)
			return
		default:
			assert(false, "grow: balance out of range")
		}
	}
}

// shrink is called after the subtree in slot idx of n has shrunk by one level.
func (t *Tree[K, L, N]) shrink(n *node[K, L, N], idx int) {
	for {
		n.balance -= direction(idx)
		switch n.balance {
		case -1, 1:
			return
		case 0:
			// n lost a level; continue with its parent
		case -2, 2:
			top, shorter := t.rebalance(n)
			if !shorter {
				return
			}
			n = top
		default:
			assert(false, "shrink: balance out of range")
		}
		p := n.parent
		if p == nil {
			return
		}
		idx, n = p.indexOf(n), p
	}
}

// rebalance resolves a balance of ±2 at n by a single or a double rotation.
// It returns the new top of the subtree and whether the subtree is one level
// lower than before the rotation.
func (t *Tree[K, L, N]) rebalance(n *node[K, L, N]) (*node[K, L, N], bool) {
	side := 1 // the heavy side
	if n.balance < 0 {
		side = 0
	}
	d := direction(side)
	assert(!n.isLeafAt(side), "rebalance: heavy side of node is a leaf")
	c := n.nodeAt(side)
	if c.balance == -d {
		// c leans the other way: lift its inner child g twice
		g := c.nodeAt(1 - side)
		t.rotate(c, 1-side)
		t.rotate(n, side)
		switch g.balance {
		case d:
			n.balance, c.balance = -d, 0
		case 0:
			n.balance, c.balance = 0, 0
		case -d:
			n.balance, c.balance = 0, d
		default:
			assert(false, "rebalance: grandchild balance out of range")
		}
		g.balance = 0
		tracer().Debugf("avltree: double rotation at node %v", n.key)
		return g, true
	}
	t.rotate(n, side)
	tracer().Debugf("avltree: single rotation at node %v", n.key)
	if c.balance == 0 {
		// only possible after a removal; the height does not change
		n.balance, c.balance = d, -d
		return c, false
	}
	n.balance, c.balance = 0, 0
	return c, true
}

// rotate lifts the node in slot side of n into n's place. n becomes the
// child of the lifted node on the opposite side and takes over the lifted
// node's inner subtree. Only links are changed, balances are left to the
// caller. Payloads of both nodes are re-computed, bottom first; ancestors
// keep their payloads, as the set of leaves below them does not change.
func (t *Tree[K, L, N]) rotate(n *node[K, L, N], side int) *node[K, L, N] {
	c := n.nodeAt(side)
	p := n.parent
	pi := 0
	if p != nil {
		pi = p.indexOf(n)
	}
	n.setChild(side, c.child[1-side], c.kind[1-side])
	c.setChild(1-side, n, nodeChild)
	if p == nil {
		t.root = c
		c.parent = nil
	} else {
		p.setChild(pi, c, nodeChild)
	}
	t.updateNode(n)
	t.updateNode(c)
	return c
}

// rotateLeft lifts the right child of n.
func (t *Tree[K, L, N]) rotateLeft(n *node[K, L, N]) *node[K, L, N] {
	return t.rotate(n, 1)
}

// rotateRight lifts the left child of n.
func (t *Tree[K, L, N]) rotateRight(n *node[K, L, N]) *node[K, L, N] {
	return t.rotate(n, 0)
}
