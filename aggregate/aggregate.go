/*
Package aggregate provides node payloads which summarize subtrees of an
avltree: the number of entries and the interval of keys below a node.

With these summaries in place, positional access and rank queries run in
logarithmic time.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package aggregate

import (
	"github.com/npillmayer/avltree"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'avltree'
func tracer() tracing.Trace {
	return tracing.Select("avltree")
}

// Stats summarizes the entries below a node.
type Stats[K avltree.Key] struct {
	Count    int // number of entries
	Min, Max K   // first and last key in tree order
}

// Updater returns a node updater maintaining Stats.
func Updater[K avltree.Key, L any]() avltree.NodeUpdater[K, L, Stats[K]] {
	return func(payload *Stats[K], _ K, children [2]avltree.ChildView[K, L, Stats[K]]) bool {
		left, right := statsOf(children[0]), statsOf(children[1])
		s := Stats[K]{
			Count: left.Count + right.Count,
			Min:   left.Min,
			Max:   right.Max,
		}
		if s == *payload {
			return false
		}
		*payload = s
		return true
	}
}

func statsOf[K avltree.Key, L any](c avltree.ChildView[K, L, Stats[K]]) Stats[K] {
	if c.IsLeaf {
		return Stats[K]{Count: 1, Min: c.Key, Max: c.Key}
	}
	return c.Node
}

// NewConfig creates a tree configuration which maintains Stats for every
// node.
func NewConfig[K avltree.Key, L any](balancing avltree.Balancing) *avltree.Config[K, L, Stats[K]] {
	cfg := avltree.NewConfig[K, L, Stats[K]](balancing)
	cfg.SetNodeCallbacks(nil, nil, Updater[K, L]())
	return cfg
}

// Tree is an avltree carrying Stats in its nodes.
type Tree[K avltree.Key, L any] = avltree.Tree[K, L, Stats[K]]

// Of returns the Stats of a complete tree.
func Of[K avltree.Key, L any](tree *Tree[K, L]) Stats[K] {
	if s, ok := tree.Summary(); ok {
		return s
	}
	it := tree.NewIterator()
	defer it.Close()
	if !it.First() {
		return Stats[K]{}
	}
	return Stats[K]{Count: 1, Min: it.Key(), Max: it.Key()}
}

// Bounds returns the first and the last key of a tree.
func Bounds[K avltree.Key, L any](tree *Tree[K, L]) (lo, hi K, ok bool) {
	s := Of(tree)
	return s.Min, s.Max, s.Count > 0
}

// At moves a new iterator to the entry with index i in key order. The
// iterator is initial if i is out of range. Clients have to close it.
func At[K avltree.Key, L any](tree *Tree[K, L], i int) *avltree.Iterator[K, L, Stats[K]] {
	it := tree.NewIterator()
	if i < 0 || i >= tree.Len() {
		tracer().Debugf("aggregate: index %d out of range", i)
		return it
	}
	it.Seek(func(_ K, _ Stats[K], children [2]avltree.ChildView[K, L, Stats[K]]) int {
		if n := statsOf(children[0]).Count; i >= n {
			i -= n
			return 1
		}
		return 0
	})
	return it
}

// Rank returns the number of entries sorted in front of key, according to
// the key routing of the tree.
func Rank[K avltree.Key, L any](tree *Tree[K, L], key K) int {
	r := tree.Config().Routing()
	rank := 0
	it := tree.NewIterator()
	defer it.Close()
	found := it.Seek(func(nodeKey K, _ Stats[K], children [2]avltree.ChildView[K, L, Stats[K]]) int {
		if r.ChildIndex(nodeKey, key) == 1 {
			rank += statsOf(children[0]).Count
			return 1
		}
		return 0
	})
	if found && r.ChildIndex(key, it.Key()) == 0 {
		rank++
	}
	return rank
}

// CountRange returns the number of entries from lower up to and including
// upper, in tree order.
func CountRange[K avltree.Key, L any](tree *Tree[K, L], lower, upper K) int {
	if tree.Config().Routing().ChildIndex(lower, upper) == 0 {
		return 0 // upper sorts in front of lower
	}
	n := Rank(tree, upper) - Rank(tree, lower)
	if tree.Contains(upper) {
		n++
	}
	return n
}
