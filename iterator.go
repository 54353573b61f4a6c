package avltree

// Iterator is a cursor over the entries of a tree.
//
// An iterator is either initial, i.e. not positioned on any entry, or
// positioned on a leaf. The initial position is at the same time before the
// first and after the last entry: moving forward from it reaches the first
// entry, moving backward the last one.
//
// Iterators are created by Tree.NewIterator or Tree.Locate and have to be
// closed by the client. Any number of iterators may read a tree at the same
// time, but only one at a time may change it. Removing an entry invalidates
// all other iterators positioned on it.
type Iterator[K Key, L, N any] struct {
	tree   *Tree[K, L, N]
	cur    *leaf[K, L, N] // nil if initial
	closed bool
}

// NewIterator creates an initial iterator for the tree.
func (t *Tree[K, L, N]) NewIterator() *Iterator[K, L, N] {
	if debugChecks {
		t.iterators++
	}
	return &Iterator[K, L, N]{tree: t}
}

// Close resets the iterator and detaches it from its tree.
func (it *Iterator[K, L, N]) Close() {
	if it.closed {
		if debugChecks {
			contractViolation("Close: iterator already closed")
		}
		return
	}
	it.set(nil)
	it.closed = true
	if debugChecks {
		it.tree.iterators--
	}
}

// set moves the iterator, keeping track of positioned iterators per leaf.
func (it *Iterator[K, L, N]) set(l *leaf[K, L, N]) {
	if debugChecks {
		if it.closed {
			contractViolation("iterator used after Close")
		}
		if it.cur != nil {
			it.cur.iterators--
		}
		if l != nil {
			l.iterators++
		}
	}
	it.cur = l
}

// Reset moves the iterator to the initial position.
func (it *Iterator[K, L, N]) Reset() {
	it.set(nil)
}

// IsInitial reports whether the iterator is not positioned on an entry.
func (it *Iterator[K, L, N]) IsInitial() bool {
	return it.cur == nil
}

// Key returns the key of the current entry. For an initial iterator, the zero
// value is returned.
func (it *Iterator[K, L, N]) Key() K {
	if it.cur == nil {
		if debugChecks {
			contractViolation("Key: iterator is initial")
		}
		return *new(K)
	}
	return it.cur.key
}

// Payload returns the payload of the current entry. For an initial iterator,
// the zero value is returned.
func (it *Iterator[K, L, N]) Payload() L {
	if it.cur == nil {
		if debugChecks {
			contractViolation("Payload: iterator is initial")
		}
		return *new(L)
	}
	return it.cur.payload
}

// UpdatePayload lets f change the payload of the current entry in place and
// then brings the node payloads above it up to date.
func (it *Iterator[K, L, N]) UpdatePayload(f func(payload *L)) {
	if it.cur == nil {
		if debugChecks {
			contractViolation("UpdatePayload: iterator is initial")
		}
		return
	}
	f(&it.cur.payload)
	if it.cur.parent != nil {
		it.tree.propagate(it.cur.parent)
	}
}

// --- Moving ----------------------------------------------------------------

// First moves to the entry with the smallest key. It returns false for an
// empty tree.
func (it *Iterator[K, L, N]) First() bool {
	return it.jumpTo(0)
}

// Last moves to the entry with the greatest key. It returns false for an
// empty tree.
func (it *Iterator[K, L, N]) Last() bool {
	return it.jumpTo(1)
}

func (it *Iterator[K, L, N]) jumpTo(side int) bool {
	if it.tree.root == nil {
		it.set(nil)
		return false
	}
	it.set(extremeLeaf(it.tree.root, side))
	return true
}

// Next moves to the following entry. An initial iterator moves to the first
// entry. Moving beyond the last entry resets the iterator and returns false.
func (it *Iterator[K, L, N]) Next() bool {
	return it.step(1)
}

// Prev moves to the preceding entry. An initial iterator moves to the last
// entry. Moving before the first entry resets the iterator and returns false.
func (it *Iterator[K, L, N]) Prev() bool {
	return it.step(0)
}

func (it *Iterator[K, L, N]) step(dir int) bool {
	if it.cur == nil {
		return it.jumpTo(1 - dir)
	}
	l := adjacentLeaf(it.cur, dir)
	it.set(l)
	return l != nil
}

// NextInRange moves to the following entry with lower <= key <= upper.
// An initial iterator moves to the first entry inside the range. As soon
// as the next entry lies outside the range, the iterator is reset and
// NextInRange returns false.
func (it *Iterator[K, L, N]) NextInRange(lower, upper K) bool {
	return it.stepInRange(lower, upper, 1)
}

// PrevInRange moves to the preceding entry with lower <= key <= upper.
// An initial iterator moves to the last entry inside the range. As soon as
// the previous entry lies outside the range, the iterator is reset and
// PrevInRange returns false.
func (it *Iterator[K, L, N]) PrevInRange(lower, upper K) bool {
	return it.stepInRange(lower, upper, 0)
}

func (it *Iterator[K, L, N]) stepInRange(lower, upper K, dir int) bool {
	t := it.tree
	var l *leaf[K, L, N]
	switch {
	case it.cur == nil && dir == 1:
		l = t.firstInWindow(lower, upper)
	case it.cur == nil:
		l = t.lastInWindow(lower, upper)
	default:
		l = adjacentLeaf(it.cur, dir)
		if l != nil && !t.inWindow(lower, upper, l.key) {
			l = nil
		}
	}
	it.set(l)
	return l != nil
}

// Locate moves the iterator to the entry for key. If the iterator is
// positioned, the search starts at the current entry and climbs up only as
// far as necessary. If key is not present, the iterator is reset and Locate
// returns false.
func (it *Iterator[K, L, N]) Locate(key K) bool {
	l := it.tree.findLeaf(it.near(), key)
	if l == nil || !it.tree.cfg.routing.Equal(l.key, key) {
		it.set(nil)
		return false
	}
	it.set(l)
	return true
}

func (it *Iterator[K, L, N]) near() treeItem[K, L, N] {
	if it.cur == nil {
		return nil
	}
	return it.cur
}

// SeekGuide chooses the child to descend into at a node, given the node's
// routing key, its payload and views on its children. It returns 0 or 1 for
// a child slot, or -1 to abort the search.
type SeekGuide[K Key, L, N any] func(key K, payload N, children [2]ChildView[K, L, N]) int

// Seek descends from the root, letting guide choose at every node, and
// moves the iterator to the leaf reached. For a tree with a leaf root, the
// guide is not called. Seek returns false, resetting the iterator, for an
// empty tree or if the guide aborts.
func (it *Iterator[K, L, N]) Seek(guide SeekGuide[K, L, N]) bool {
	var cur treeItem[K, L, N] = it.tree.root
	if cur == nil {
		it.set(nil)
		return false
	}
	for {
		n, ok := cur.(*node[K, L, N])
		if !ok {
			break
		}
		i := guide(n.key, n.payload, n.views())
		if i < 0 {
			it.set(nil)
			return false
		}
		assert(i <= 1, "Seek: guide returned invalid child index")
		cur = n.child[i]
	}
	it.set(cur.(*leaf[K, L, N]))
	return true
}

// --- Changing the tree -----------------------------------------------------

// Add inserts an entry for key and moves the iterator to it. The search for
// the insert position starts at the current entry. If key is already
// present, the iterator moves to the existing entry and Add returns false.
func (it *Iterator[K, L, N]) Add(key K, payload L) bool {
	t := it.tree
	l := t.findLeaf(it.near(), key)
	if l != nil && t.cfg.routing.Equal(l.key, key) {
		it.set(l)
		return false
	}
	nl := t.insertLeaf(l, key, payload, ByKey)
	t.cfg.notify(Inserted, key)
	it.set(nl)
	return true
}

// InsertBefore inserts an entry directly in front of the current one and
// moves the iterator to it. For an initial iterator, the entry is appended
// behind the last entry. The client is responsible for key ordering:
// the key has to lie strictly between the keys of the neighbouring entries.
func (it *Iterator[K, L, N]) InsertBefore(key K, payload L) {
	it.insertAdjacent(key, payload, Before)
}

// InsertAfter inserts an entry directly behind the current one and moves the
// iterator to it. For an initial iterator, the entry is prepended in front of
// the first entry. The client is responsible for key ordering: the key has
// to lie strictly between the keys of the neighbouring entries.
func (it *Iterator[K, L, N]) InsertAfter(key K, payload L) {
	it.insertAdjacent(key, payload, After)
}

func (it *Iterator[K, L, N]) insertAdjacent(key K, payload L, order Order) {
	t := it.tree
	existing := it.cur
	if existing == nil && t.root != nil {
		// initial is behind the last and in front of the first entry
		if order == Before {
			existing, order = extremeLeaf(t.root, 1), After
		} else {
			existing, order = extremeLeaf(t.root, 0), Before
		}
	}
	if existing != nil {
		if debugChecks {
			it.checkAdjacentOrder(existing, key, order)
		}
		if l := t.findLeaf(existing, key); l != existing {
			// routing keys above existing send key to a neighbour
			existing, order = l, ByKey
		}
	}
	nl := t.insertLeaf(existing, key, payload, order)
	t.cfg.notify(Inserted, key)
	it.set(nl)
}

// checkAdjacentOrder reports a key which would break the ordering of the
// tree when inserted next to existing.
func (it *Iterator[K, L, N]) checkAdjacentOrder(existing *leaf[K, L, N], key K, order Order) {
	r := it.tree.cfg.routing
	less := func(a, b K) bool { return r.ChildIndex(b, a) == 0 }
	lo, hi := adjacentLeaf(existing, 0), existing
	if order == After {
		lo, hi = existing, adjacentLeaf(existing, 1)
	}
	if (lo != nil && !less(lo.key, key)) || (hi != nil && !less(key, hi.key)) {
		contractViolation("insert of key %v next to %v breaks ordering", key, existing.key)
	}
}

// Remove deletes the current entry. The iterator moves to the following
// entry, or becomes initial if there is none.
func (it *Iterator[K, L, N]) Remove() {
	l := it.cur
	if l == nil {
		if debugChecks {
			contractViolation("Remove: iterator is initial")
		}
		return
	}
	next := adjacentLeaf(l, 1)
	it.set(nil)
	key := l.key
	it.tree.removeLeaf(l)
	it.tree.cfg.notify(Removed, key)
	it.set(next)
}
