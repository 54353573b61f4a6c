package avltree

// KeyRouting decides how keys are distributed among the two children of a
// node.
type KeyRouting[K Key] interface {
	// ChildIndex returns the child slot a key is routed to from a node with
	// routing key nodeKey: 1 if testKey >= nodeKey, 0 otherwise.
	ChildIndex(nodeKey, testKey K) int
	// InRange reports whether lower <= key < upper.
	InRange(lower, upper, key K) bool
	// Equal reports whether two keys are identical.
	Equal(a, b K) bool
}

// OrderedRouting routes keys by their natural order. It is the default
// routing of every configuration.
type OrderedRouting[K Key] struct{}

// ChildIndex is part of interface KeyRouting.
func (OrderedRouting[K]) ChildIndex(nodeKey, testKey K) int {
	if testKey >= nodeKey {
		return 1
	}
	return 0
}

// InRange is part of interface KeyRouting.
func (OrderedRouting[K]) InRange(lower, upper, key K) bool {
	return lower <= key && key < upper
}

// Equal is part of interface KeyRouting.
func (OrderedRouting[K]) Equal(a, b K) bool {
	return a == b
}

// Order tells where a new leaf is placed relative to the leaf it splits.
type Order uint8

const (
	// ByKey places the new leaf according to its key.
	ByKey Order = iota
	// Before places the new leaf in front of the split leaf.
	Before
	// After places the new leaf behind the split leaf.
	After
)

// inWindow is the inclusive range test used for bounded iteration.
func (t *Tree[K, L, N]) inWindow(lower, upper, key K) bool {
	r := t.cfg.routing
	return r.InRange(lower, upper, key) || r.Equal(upper, key)
}

// descend routes key from it down to a leaf. The leaf found holds the
// greatest key <= key within the subtree, or the subtree's first leaf.
func (t *Tree[K, L, N]) descend(it treeItem[K, L, N], key K) *leaf[K, L, N] {
	for {
		n, ok := it.(*node[K, L, N])
		if !ok {
			return it.(*leaf[K, L, N])
		}
		it = n.child[t.cfg.routing.ChildIndex(n.key, key)]
	}
}

// bubbleLocate climbs up from start and returns the first ancestor below
// which key is known to be located. Every ancestor we reach from its left
// side bounds the keys below it from above, every ancestor reached from its
// right side bounds them from below. The most recent limit of each side
// spans the widest window, which still lies within the range of the current
// ancestor's subtree. Returns nil if the root is reached without resolving
// the key; the search then has to start at the root.
func (t *Tree[K, L, N]) bubbleLocate(start treeItem[K, L, N], key K) *node[K, L, N] {
	r := t.cfg.routing
	var lower, upper K
	var hasLower, hasUpper bool
	var prev treeItem[K, L, N] = start
	for n := start.base().parent; n != nil; prev, n = n, n.parent {
		if r.Equal(n.key, key) {
			return n
		}
		if n.indexOf(prev) == 0 {
			upper, hasUpper = n.key, true
		} else {
			lower, hasLower = n.key, true
		}
		if hasLower && hasUpper && r.InRange(lower, upper, key) {
			return n
		}
	}
	return nil
}

// findLeaf locates the leaf where key is or would be stored, starting at
// item near if possible.
func (t *Tree[K, L, N]) findLeaf(near treeItem[K, L, N], key K) *leaf[K, L, N] {
	if t.root == nil {
		return nil
	}
	if near != nil {
		if n := t.bubbleLocate(near, key); n != nil {
			return t.descend(n, key)
		}
	}
	return t.descend(t.root, key)
}

// --- Leaf splitting and sibling promotion ----------------------------------

func (t *Tree[K, L, N]) newLeaf(key K, payload L) *leaf[K, L, N] {
	if t.cfg.leafConstruct != nil {
		payload = t.cfg.leafConstruct(key, payload)
	}
	return &leaf[K, L, N]{key: key, payload: payload}
}

func (t *Tree[K, L, N]) destroyLeaf(l *leaf[K, L, N]) {
	if debugChecks && l.iterators > 0 {
		contractViolation("leaf %v destroyed while %d iterators are positioned on it", l.key, l.iterators)
	}
	if t.cfg.leafDestruct != nil {
		t.cfg.leafDestruct(l.key, l.payload)
	}
	l.parent = nil
}

func (t *Tree[K, L, N]) newNode(key K) *node[K, L, N] {
	n := &node[K, L, N]{key: key}
	if t.cfg.nodeConstruct != nil {
		n.payload = t.cfg.nodeConstruct(key)
	}
	return n
}

func (t *Tree[K, L, N]) destroyNode(n *node[K, L, N]) {
	if t.cfg.nodeDestruct != nil {
		t.cfg.nodeDestruct(n.key, n.payload)
	}
	n.parent = nil
	n.child = [2]treeItem[K, L, N]{}
}

// updateNode lets the node updater re-compute n's payload.
func (t *Tree[K, L, N]) updateNode(n *node[K, L, N]) bool {
	if t.cfg.nodeUpdate == nil {
		return false
	}
	return t.cfg.nodeUpdate(&n.payload, n.key, n.views())
}

// propagate updates n unconditionally, then its ancestors as long as their
// payloads keep changing.
func (t *Tree[K, L, N]) propagate(n *node[K, L, N]) {
	if t.cfg.nodeUpdate == nil {
		return
	}
	t.updateNode(n)
	for n = n.parent; n != nil; n = n.parent {
		if !t.updateNode(n) {
			return
		}
	}
}

// insertLeaf creates a new leaf for key and payload. If the tree is empty,
// the leaf becomes the root. Otherwise existing is split: a new node takes
// its place, with existing and the new leaf as children in the given order.
// The node's routing key is the key of its right child.
func (t *Tree[K, L, N]) insertLeaf(existing *leaf[K, L, N], key K, payload L, order Order) *leaf[K, L, N] {
	t.cfg.freeze()
	nl := t.newLeaf(key, payload)
	t.count++
	if existing == nil {
		assert(t.root == nil, "insertLeaf: missing leaf to split in non-empty tree")
		t.root = nl
		return nl
	}
	side := 1
	switch order {
	case ByKey:
		side = t.cfg.routing.ChildIndex(existing.key, key)
	case Before:
		side = 0
	}
	left, right := existing, nl
	if side == 0 {
		left, right = nl, existing
	}
	parent := existing.parent
	idx := 0
	if parent != nil {
		idx = parent.indexOf(existing)
	}
	n := t.newNode(right.key)
	n.setChild(0, left, leafChild)
	n.setChild(1, right, leafChild)
	if parent == nil {
		t.root = n
	} else {
		parent.setChild(idx, n, nodeChild)
	}
	t.updateNode(n)
	if parent != nil {
		t.propagate(parent)
		if t.cfg.balancing == AVL {
			t.grow(parent, idx)
		}
	}
	return nl
}

// removeLeaf unlinks l and destroys it. Its sibling is promoted into the
// grandparent, replacing the parent node, which is destroyed as well.
func (t *Tree[K, L, N]) removeLeaf(l *leaf[K, L, N]) {
	t.cfg.freeze()
	t.count--
	p := l.parent
	if p == nil {
		assert(t.root == treeItem[K, L, N](l), "removeLeaf: parentless leaf is not the root")
		t.root = nil
		t.destroyLeaf(l)
		return
	}
	si := 1 - p.indexOf(l)
	sibling, kind := p.child[si], p.kind[si]
	g := p.parent
	if g == nil {
		t.root = sibling
		sibling.base().parent = nil
	} else {
		gi := g.indexOf(p)
		g.setChild(gi, sibling, kind)
		t.propagate(g)
		if t.cfg.balancing == AVL {
			t.shrink(g, gi)
		}
	}
	t.destroyLeaf(l)
	t.destroyNode(p)
}
