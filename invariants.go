package avltree

import "fmt"

// Check validates the structural invariants of the tree:
//
//   - parent links and child tags are consistent,
//   - every routing key separates the keys of its two subtrees,
//   - leaves are in strictly ascending key order,
//   - the entry count matches,
//   - with AVL balancing, subtree heights of every node differ by at most one
//     and the stored balance matches the actual height difference.
//
// Check walks the complete tree and is meant for tests and debugging.
func (t *Tree[K, L, N]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrCorruptTree)
	}
	if t.root == nil {
		if t.count != 0 {
			return fmt.Errorf("%w: empty tree with count %d", ErrCorruptTree, t.count)
		}
		return nil
	}
	if t.root.base().parent != nil {
		return fmt.Errorf("%w: root has a parent", ErrCorruptTree)
	}
	leaves, _, err := t.checkItem(t.root)
	if err != nil {
		return err
	}
	if leaves != t.count {
		return fmt.Errorf("%w: count %d, but %d leaves", ErrCorruptTree, t.count, leaves)
	}
	r := t.cfg.routing
	var prev *leaf[K, L, N]
	for l := extremeLeaf(t.root, 0); l != nil; l = adjacentLeaf(l, 1) {
		if prev != nil && (r.ChildIndex(l.key, prev.key) == 1) {
			return fmt.Errorf("%w: keys %v and %v out of order", ErrCorruptTree, prev.key, l.key)
		}
		prev = l
	}
	return nil
}

func (t *Tree[K, L, N]) checkItem(it treeItem[K, L, N]) (leaves int, height int, err error) {
	n, ok := it.(*node[K, L, N])
	if !ok {
		return 1, 0, nil
	}
	r := t.cfg.routing
	var h [2]int
	for i, child := range n.child {
		if child == nil {
			return 0, 0, fmt.Errorf("%w: node %v has no child %d", ErrCorruptTree, n.key, i)
		}
		if kindOf(child) != n.kind[i] {
			return 0, 0, fmt.Errorf("%w: node %v has a mis-tagged child %d", ErrCorruptTree, n.key, i)
		}
		if child.base().parent != n {
			return 0, 0, fmt.Errorf("%w: child %d of node %v has wrong parent", ErrCorruptTree, i, n.key)
		}
		cl, ch, cerr := t.checkItem(child)
		if cerr != nil {
			return 0, 0, cerr
		}
		leaves += cl
		h[i] = ch
	}
	if r.ChildIndex(n.key, extremeLeaf(n.child[0], 1).key) != 0 {
		return 0, 0, fmt.Errorf("%w: left subtree of node %v has keys >= %v", ErrCorruptTree, n.key, n.key)
	}
	if r.ChildIndex(n.key, extremeLeaf(n.child[1], 0).key) != 1 {
		return 0, 0, fmt.Errorf("%w: right subtree of node %v has keys < %v", ErrCorruptTree, n.key, n.key)
	}
	if t.cfg.balancing == AVL {
		diff := h[1] - h[0]
		if diff < -1 || diff > 1 {
			return 0, 0, fmt.Errorf("%w: node %v has height difference %d", ErrUnbalanced, n.key, diff)
		}
		if int(n.balance) != diff {
			return 0, 0, fmt.Errorf("%w: node %v stores balance %d, actual %d",
				ErrUnbalanced, n.key, n.balance, diff)
		}
	}
	return leaves, max(h[0], h[1]) + 1, nil
}
