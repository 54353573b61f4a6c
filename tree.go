package avltree

import (
	"fmt"
	"iter"
)

// Tree is a binary leaf tree, sorted by keys of type K.
//
// L is the type of leaf payloads, N the type of node payloads. A tree
// created by New is empty. Its first entry becomes the root leaf; every
// further entry splits an existing leaf.
type Tree[K Key, L, N any] struct {
	cfg       *Config[K, L, N]
	root      treeItem[K, L, N] // nil for an empty tree
	count     int
	iterators int // live iterators, instrumented builds only
}

// New creates an empty tree, retaining cfg.
func New[K Key, L, N any](cfg *Config[K, L, N]) (*Tree[K, L, N], error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration is nil", ErrInvalidConfig)
	}
	if cfg.released() {
		return nil, fmt.Errorf("%w: configuration has been released", ErrInvalidConfig)
	}
	cfg.Retain()
	if debugChecks {
		cfg.trees++
	}
	return &Tree[K, L, N]{cfg: cfg}, nil
}

// Config returns the configuration of the tree.
func (t *Tree[K, L, N]) Config() *Config[K, L, N] {
	return t.cfg
}

// IsEmpty reports whether the tree has no entries.
func (t *Tree[K, L, N]) IsEmpty() bool {
	return t == nil || t.root == nil
}

// Len returns the number of entries in the tree.
func (t *Tree[K, L, N]) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}

// Height returns the tree height, where 0 means empty and 1 means a leaf root.
func (t *Tree[K, L, N]) Height() int {
	if t == nil || t.root == nil {
		return 0
	}
	return subtreeHeight(t.root) + 1
}

// Summary returns the payload of the root node, which aggregates the whole
// tree if a node updater is configured. It returns false if the root is
// not a node, i.e. for trees with less than two entries.
func (t *Tree[K, L, N]) Summary() (N, bool) {
	if t == nil {
		return *new(N), false
	}
	if n, ok := t.root.(*node[K, L, N]); ok {
		return n.payload, true
	}
	return *new(N), false
}

// subtreeHeight counts edges on the longest path from it down to a leaf.
func subtreeHeight[K Key, L, N any](it treeItem[K, L, N]) int {
	n, ok := it.(*node[K, L, N])
	if !ok {
		return 0
	}
	return max(subtreeHeight(n.child[0]), subtreeHeight(n.child[1])) + 1
}

// Insert adds an entry for key. If key is already present, the tree is left
// unchanged and Insert returns false.
func (t *Tree[K, L, N]) Insert(key K, payload L) bool {
	l := t.findLeaf(nil, key)
	if l != nil && t.cfg.routing.Equal(l.key, key) {
		return false
	}
	t.insertLeaf(l, key, payload, ByKey)
	t.cfg.notify(Inserted, key)
	return true
}

// Replace sets the payload for key, inserting a new entry if key is not
// present. The payload of an existing entry is destructed and replaced.
// Replace returns true if an existing entry has been replaced.
func (t *Tree[K, L, N]) Replace(key K, payload L) bool {
	l := t.findLeaf(nil, key)
	if l == nil || !t.cfg.routing.Equal(l.key, key) {
		t.insertLeaf(l, key, payload, ByKey)
		t.cfg.notify(Inserted, key)
		return false
	}
	t.replacePayload(l, payload)
	return true
}

func (t *Tree[K, L, N]) replacePayload(l *leaf[K, L, N], payload L) {
	t.cfg.freeze()
	if t.cfg.leafDestruct != nil {
		t.cfg.leafDestruct(l.key, l.payload)
	}
	if t.cfg.leafConstruct != nil {
		payload = t.cfg.leafConstruct(l.key, payload)
	}
	l.payload = payload
	if l.parent != nil {
		t.propagate(l.parent)
	}
	t.cfg.notify(Replaced, l.key)
}

// Remove deletes the entry for key. It returns false if key is not present.
func (t *Tree[K, L, N]) Remove(key K) bool {
	l := t.findLeaf(nil, key)
	if l == nil || !t.cfg.routing.Equal(l.key, key) {
		return false
	}
	t.removeLeaf(l)
	t.cfg.notify(Removed, key)
	return true
}

// Get returns the payload stored for key.
func (t *Tree[K, L, N]) Get(key K) (L, bool) {
	l := t.findLeaf(nil, key)
	if l == nil || !t.cfg.routing.Equal(l.key, key) {
		var zero L
		return zero, false
	}
	return l.payload, true
}

// Contains reports whether key is present.
func (t *Tree[K, L, N]) Contains(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Locate returns a new iterator, positioned at key if it is present and
// initial otherwise. Clients have to close the iterator.
func (t *Tree[K, L, N]) Locate(key K) *Iterator[K, L, N] {
	it := t.NewIterator()
	it.Locate(key)
	return it
}

// Clear destructs all entries and nodes, bottom-up, leaving an empty tree.
func (t *Tree[K, L, N]) Clear() {
	if t.root == nil {
		return
	}
	if debugChecks && t.iterators > 0 {
		contractViolation("Clear: %d iterators still open", t.iterators)
	}
	stack := []treeItem[K, L, N]{t.root}
	var order []treeItem[K, L, N] // reversed post-order
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, it)
		if n, ok := it.(*node[K, L, N]); ok {
			stack = append(stack, n.child[0], n.child[1])
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		switch it := order[i].(type) {
		case *node[K, L, N]:
			t.destroyNode(it)
		case *leaf[K, L, N]:
			t.destroyLeaf(it)
		}
	}
	t.root = nil
	t.count = 0
	t.cfg.notify(Cleared, *new(K))
}

// Destroy clears the tree and releases its configuration. The tree must not
// be used afterwards.
func (t *Tree[K, L, N]) Destroy() {
	if debugChecks && t.iterators > 0 {
		contractViolation("Destroy: %d iterators still open", t.iterators)
	}
	t.Clear()
	if debugChecks {
		t.cfg.trees--
	}
	t.cfg.Release()
}

// --- Iteration -------------------------------------------------------------

// All returns an iterator over all entries in ascending key order.
func (t *Tree[K, L, N]) All() iter.Seq2[K, L] {
	return func(yield func(K, L) bool) {
		if t.root == nil {
			return
		}
		for l := extremeLeaf(t.root, 0); l != nil; l = adjacentLeaf(l, 1) {
			if !yield(l.key, l.payload) {
				return
			}
		}
	}
}

// Backward returns an iterator over all entries in descending key order.
func (t *Tree[K, L, N]) Backward() iter.Seq2[K, L] {
	return func(yield func(K, L) bool) {
		if t.root == nil {
			return
		}
		for l := extremeLeaf(t.root, 1); l != nil; l = adjacentLeaf(l, 0) {
			if !yield(l.key, l.payload) {
				return
			}
		}
	}
}

// Range returns an iterator over all entries with lower <= key <= upper, in
// ascending key order.
func (t *Tree[K, L, N]) Range(lower, upper K) iter.Seq2[K, L] {
	return func(yield func(K, L) bool) {
		for l := t.firstInWindow(lower, upper); l != nil; l = adjacentLeaf(l, 1) {
			if !t.inWindow(lower, upper, l.key) || !yield(l.key, l.payload) {
				return
			}
		}
	}
}

// firstInWindow returns the leaf with the smallest key >= lower, if it is
// not greater than upper.
func (t *Tree[K, L, N]) firstInWindow(lower, upper K) *leaf[K, L, N] {
	l := t.findLeaf(nil, lower)
	return t.enterWindow(l, lower, upper, 1)
}

// lastInWindow returns the leaf with the greatest key <= upper, if it is not
// smaller than lower.
func (t *Tree[K, L, N]) lastInWindow(lower, upper K) *leaf[K, L, N] {
	l := t.findLeaf(nil, upper)
	return t.enterWindow(l, lower, upper, 0)
}

// enterWindow moves l, found by routing a window limit, at most one step
// in direction dir to land inside [lower, upper].
func (t *Tree[K, L, N]) enterWindow(l *leaf[K, L, N], lower, upper K, dir int) *leaf[K, L, N] {
	if l == nil {
		return nil
	}
	if !t.inWindow(lower, upper, l.key) {
		l = adjacentLeaf(l, dir)
	}
	if l == nil || !t.inWindow(lower, upper, l.key) {
		return nil
	}
	return l
}

// --- Structural walk -------------------------------------------------------

// Visit describes an item of the tree during a structural walk.
type Visit[K Key, L, N any] struct {
	ID      int  // pre-order number, starting at 0 for the root
	Parent  int  // ID of the parent node, -1 for the root
	Side    int  // child slot within the parent
	Depth   int  // 0 for the root
	IsLeaf  bool // leaf or node
	Key     K    // leaf key or routing key
	Balance int  // balance factor of a node
	Leaf    L    // payload of a leaf
	Node    N    // payload of a node
}

// Walk visits all leaves and nodes in pre-order, left before right. It stops
// at the first error returned by f and returns it.
func (t *Tree[K, L, N]) Walk(f func(Visit[K, L, N]) error) error {
	if t.root == nil {
		return nil
	}
	type frame struct {
		item         treeItem[K, L, N]
		parent, side int
		depth        int
	}
	stack := []frame{{item: t.root, parent: -1}}
	id := 0
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		v := Visit[K, L, N]{ID: id, Parent: fr.parent, Side: fr.side, Depth: fr.depth}
		switch it := fr.item.(type) {
		case *leaf[K, L, N]:
			v.IsLeaf, v.Key, v.Leaf = true, it.key, it.payload
		case *node[K, L, N]:
			v.Key, v.Balance, v.Node = it.key, int(it.balance), it.payload
			stack = append(stack,
				frame{item: it.child[1], parent: id, side: 1, depth: fr.depth + 1},
				frame{item: it.child[0], parent: id, side: 0, depth: fr.depth + 1})
		}
		if err := f(v); err != nil {
			return err
		}
		id++
	}
	return nil
}
