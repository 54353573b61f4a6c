package avltree

// childKind tags a child slot of a node, so that navigation does not have to
// inspect the dynamic type of a child.
type childKind uint8

const (
	leafChild childKind = iota
	nodeChild
)

// treeItem is either a *leaf or a *node.
type treeItem[K Key, L, N any] interface {
	base() *itemBase[K, L, N]
}

// itemBase is common to leaves and nodes.
type itemBase[K Key, L, N any] struct {
	parent    *node[K, L, N] // nil for the root; not owning
	iterators int            // iterators positioned here, instrumented builds only
}

func (b *itemBase[K, L, N]) base() *itemBase[K, L, N] {
	return b
}

// node is an inner item of the tree with exactly two children.
//
// All keys of the left subtree are smaller than key, all keys of the right
// subtree are greater or equal.
type node[K Key, L, N any] struct {
	itemBase[K, L, N]
	key     K
	child   [2]treeItem[K, L, N]
	kind    [2]childKind
	balance int8 // height(child[1]) - height(child[0]), AVL mode only
	payload N
}

// leaf is a terminal item holding a key and a client payload.
type leaf[K Key, L, N any] struct {
	itemBase[K, L, N]
	key     K
	payload L
}

func kindOf[K Key, L, N any](it treeItem[K, L, N]) childKind {
	if _, ok := it.(*node[K, L, N]); ok {
		return nodeChild
	}
	return leafChild
}

func (n *node[K, L, N]) isLeafAt(i int) bool {
	return n.kind[i] == leafChild
}

func (n *node[K, L, N]) leafAt(i int) *leaf[K, L, N] {
	return n.child[i].(*leaf[K, L, N])
}

func (n *node[K, L, N]) nodeAt(i int) *node[K, L, N] {
	return n.child[i].(*node[K, L, N])
}

// indexOf returns the child slot holding it.
func (n *node[K, L, N]) indexOf(it treeItem[K, L, N]) int {
	if n.child[0] == it {
		return 0
	}
	assert(n.child[1] == it, "indexOf: item is not a child of node")
	return 1
}

// setChild links it into slot i, re-parenting it.
func (n *node[K, L, N]) setChild(i int, it treeItem[K, L, N], kind childKind) {
	n.child[i] = it
	n.kind[i] = kind
	it.base().parent = n
}

func (n *node[K, L, N]) view(i int) ChildView[K, L, N] {
	if n.isLeafAt(i) {
		l := n.leafAt(i)
		return ChildView[K, L, N]{IsLeaf: true, Key: l.key, Leaf: l.payload}
	}
	c := n.nodeAt(i)
	return ChildView[K, L, N]{Key: c.key, Node: c.payload}
}

func (n *node[K, L, N]) views() [2]ChildView[K, L, N] {
	return [2]ChildView[K, L, N]{n.view(0), n.view(1)}
}

// extremeLeaf descends from it to the leftmost (side 0) or rightmost (side 1)
// leaf.
func extremeLeaf[K Key, L, N any](it treeItem[K, L, N], side int) *leaf[K, L, N] {
	for {
		n, ok := it.(*node[K, L, N])
		if !ok {
			return it.(*leaf[K, L, N])
		}
		it = n.child[side]
	}
}

// adjacentLeaf returns the in-order neighbour of l in direction dir (1 is
// forward, 0 backward), or nil. It climbs up while it comes from the dir-side
// child, then descends the other subtree on the opposite side.
func adjacentLeaf[K Key, L, N any](l *leaf[K, L, N], dir int) *leaf[K, L, N] {
	var cur treeItem[K, L, N] = l
	p := l.parent
	for p != nil && p.indexOf(cur) == dir {
		cur = p
		p = p.parent
	}
	if p == nil {
		return nil
	}
	return extremeLeaf(p.child[dir], 1-dir)
}
