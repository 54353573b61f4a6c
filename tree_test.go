package avltree

import (
	"errors"
	"slices"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var scenarioKeys = []float64{5, 3, 8, 1, 4, 7, 9}

func newFloatTree(t *testing.T, balancing Balancing) *Tree[float64, string, struct{}] {
	t.Helper()
	cfg := NewConfig[float64, string, struct{}](balancing)
	tree, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Release() // the tree holds its own reference
	return tree
}

func keysOf[K Key, L any](seq func(func(K, L) bool)) []K {
	var keys []K
	for k := range seq {
		keys = append(keys, k)
	}
	return keys
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New[float64, string, struct{}](nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil config, got %v", err)
	}
	cfg := NewConfig[float64, string, struct{}](AVL)
	cfg.Release()
	if _, err = New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for released config, got %v", err)
	}
}

func TestConfigKeyTypes(t *testing.T) {
	if kt := NewConfig[float64, int, struct{}](AVL).KeyType(); kt != KeyFloat64 {
		t.Errorf("expected key type float64, got %s", kt)
	}
	if kt := NewConfig[int32, int, struct{}](AVL).KeyType(); kt != KeyInt32 {
		t.Errorf("expected key type int32, got %s", kt)
	}
	if kt := NewConfig[uint32, int, struct{}](NoBalancing).KeyType(); kt != KeyUint32 {
		t.Errorf("expected key type uint32, got %s", kt)
	}
}

func TestConfigSharedByTrees(t *testing.T) {
	cfg := NewConfig[int32, string, struct{}](AVL)
	t1, _ := New(cfg)
	t2, _ := New(cfg)
	cfg.Release()
	t1.Insert(1, "one")
	t1.Destroy()
	// t2 still holds a reference, so the routing is still in place
	if !t2.Insert(2, "two") || !t2.Contains(2) {
		t.Fatalf("expected second tree to remain usable")
	}
	t2.Destroy()
	if !cfg.released() {
		t.Errorf("expected configuration to be released with the last tree")
	}
}

func TestEmptyTree(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	tree := newFloatTree(t, AVL)
	if !tree.IsEmpty() || tree.Len() != 0 || tree.Height() != 0 {
		t.Fatalf("unexpected empty tree state len=%d height=%d", tree.Len(), tree.Height())
	}
	it := tree.Locate(5)
	defer it.Close()
	if !it.IsInitial() {
		t.Errorf("expected locate on empty tree to leave iterator initial")
	}
	if it.Next() || it.Prev() || it.First() {
		t.Errorf("expected no movement in empty tree")
	}
	if tree.Remove(5) {
		t.Errorf("expected remove on empty tree to fail")
	}
	if err := tree.Check(); err != nil {
		t.Fatalf("expected empty tree to be valid, got %v", err)
	}
}

func TestSingleLeafIsRoot(t *testing.T) {
	tree := newFloatTree(t, AVL)
	tree.Insert(42, "x")
	if _, ok := tree.root.(*leaf[float64, string, struct{}]); !ok {
		t.Fatalf("expected a leaf as root of a 1-element tree, got %T", tree.root)
	}
	if tree.Height() != 1 {
		t.Errorf("expected height 1, got %d", tree.Height())
	}
	tree.Insert(43, "y")
	n, ok := tree.root.(*node[float64, string, struct{}])
	if !ok {
		t.Fatalf("expected a node as root of a 2-element tree, got %T", tree.root)
	}
	if n.key != 43 || n.leafAt(0).key != 42 || n.leafAt(1).key != 43 {
		t.Errorf("unexpected split: node key %v, children %v, %v", n.key, n.leafAt(0).key, n.leafAt(1).key)
	}
}

func TestInsertScenario(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	//
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		if !tree.Insert(k, "") {
			t.Fatalf("insert of %v failed", k)
		}
		if err := tree.Check(); err != nil {
			t.Fatalf("after insert of %v: %v", k, err)
		}
	}
	got := keysOf[float64, string](tree.All())
	if !slices.Equal(got, []float64{1, 3, 4, 5, 7, 8, 9}) {
		t.Errorf("unexpected forward order %v", got)
	}
	got = keysOf[float64, string](tree.Backward())
	if !slices.Equal(got, []float64{9, 8, 7, 5, 4, 3, 1}) {
		t.Errorf("unexpected backward order %v", got)
	}
	if tree.Insert(4, "again") {
		t.Errorf("expected duplicate insert to be rejected")
	}
	if tree.Len() != 7 {
		t.Errorf("expected 7 entries, have %d", tree.Len())
	}
}

func TestRemoveOriginalRoot(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		tree.Insert(k, "")
	}
	if !tree.Remove(5) {
		t.Fatalf("expected removal of 5 to succeed")
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	got := keysOf[float64, string](tree.All())
	if !slices.Equal(got, []float64{1, 3, 4, 7, 8, 9}) {
		t.Errorf("unexpected order after removal %v", got)
	}
}

func TestRangeIteration(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		tree.Insert(k, "")
	}
	got := keysOf[float64, string](tree.Range(4, 8))
	if !slices.Equal(got, []float64{4, 5, 7, 8}) {
		t.Errorf("expected [4 5 7 8], got %v", got)
	}
	got = keysOf[float64, string](tree.Range(4.5, 6))
	if !slices.Equal(got, []float64{5}) {
		t.Errorf("expected [5], got %v", got)
	}
	if got = keysOf[float64, string](tree.Range(10, 20)); len(got) != 0 {
		t.Errorf("expected empty range, got %v", got)
	}
	it := tree.NewIterator()
	defer it.Close()
	got = got[:0]
	for it.NextInRange(4, 8) {
		got = append(got, it.Key())
	}
	if !slices.Equal(got, []float64{4, 5, 7, 8}) {
		t.Errorf("expected [4 5 7 8] from iterator, got %v", got)
	}
	if !it.IsInitial() {
		t.Errorf("expected iterator to be initial after leaving the range")
	}
	got = got[:0]
	for it.PrevInRange(0, 4) {
		got = append(got, it.Key())
	}
	if !slices.Equal(got, []float64{4, 3, 1}) {
		t.Errorf("expected [4 3 1] backwards, got %v", got)
	}
}

func TestIterateBeyondEnd(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		tree.Insert(k, "")
	}
	it := tree.NewIterator()
	defer it.Close()
	if !it.Last() || it.Key() != 9 {
		t.Fatalf("expected last key 9")
	}
	if it.Next() {
		t.Errorf("expected Next past the last entry to return false")
	}
	if !it.IsInitial() {
		t.Errorf("expected iterator to be reset")
	}
	if !it.Next() || it.Key() != 1 {
		t.Errorf("expected initial iterator to restart at the first entry")
	}
	if it.Prev() || !it.IsInitial() {
		t.Errorf("expected Prev before the first entry to reset the iterator")
	}
}

func TestLocateIsIdempotent(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		tree.Insert(k, "")
	}
	it1 := tree.Locate(7)
	it2 := tree.Locate(7)
	defer it1.Close()
	defer it2.Close()
	if it1.IsInitial() || it1.cur != it2.cur {
		t.Fatalf("expected both iterators on the same leaf")
	}
	if !it1.Locate(7) || it1.cur != it2.cur {
		t.Errorf("expected re-locate from position to stay on the same leaf")
	}
	if it1.Locate(6) || !it1.IsInitial() {
		t.Errorf("expected locate of absent key to reset the iterator")
	}
}

func TestBubbleLocate(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for k := range 200 {
		tree.Insert(float64(k*2), "")
	}
	it := tree.NewIterator()
	defer it.Close()
	for start := range 200 {
		for _, target := range []int{start - 3, start - 1, start, start + 1, start + 5, start + 40} {
			if target < 0 || target >= 200 {
				continue
			}
			it.Locate(float64(start * 2))
			if n := tree.bubbleLocate(it.cur, float64(target*2)); n != nil {
				if l := tree.descend(n, float64(target*2)); l.key != float64(target*2) {
					t.Fatalf("bubble from %d to %d ended in wrong subtree (leaf %v)", start*2, target*2, l.key)
				}
			}
			if !it.Locate(float64(target * 2)) {
				t.Fatalf("locate of %d from %d failed", target*2, start*2)
			}
			if it.Key() != float64(target*2) {
				t.Fatalf("locate of %d from %d ended at %v", target*2, start*2, it.Key())
			}
		}
	}
	it.Locate(10)
	if it.Locate(11) {
		t.Errorf("expected odd key to be absent")
	}
}

type floatLeaf = leaf[float64, string, struct{}]
type floatNode = node[float64, string, struct{}]

// isAbove reports whether n is a proper ancestor of it.
func isAbove(n *floatNode, it treeItem[float64, string, struct{}]) bool {
	for p := it.base().parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// bubbleStop returns the ancestor of start at which a bubble towards target
// has to stop at the latest, or nil if it may climb beyond the root. This is
// the first ancestor above the common ancestor of both leaves which is
// reached from the side facing target, provided the walk has crossed a limit
// on the other side before.
func bubbleStop(start, target *floatLeaf) *floatNode {
	toward := 0
	if target.key < start.key {
		toward = 1
	}
	var prev treeItem[float64, string, struct{}] = start
	crossed, aboveCommon := false, false
	for n := start.parent; n != nil; prev, n = n, n.parent {
		side := n.indexOf(prev)
		if aboveCommon && crossed && side == toward {
			return n
		}
		if side != toward {
			crossed = true
		}
		if isAbove(n, target) {
			aboveCommon = true
		}
	}
	return nil
}

func TestBubbleLocateStopsBelowRoot(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for k := range 256 {
		tree.Insert(float64(k), "")
	}
	for k := 0; k < 256; k += 3 {
		tree.Remove(float64(k)) // leaves stale routing keys behind
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	var leaves []*floatLeaf
	for l := extremeLeaf(tree.root, 0); l != nil; l = adjacentLeaf(l, 1) {
		leaves = append(leaves, l)
	}
	belowRoot := 0
	for i, start := range leaves {
		for j := max(0, i-6); j < min(len(leaves), i+7); j++ {
			if j == i {
				continue
			}
			target := leaves[j]
			n := tree.bubbleLocate(start, target.key)
			if stop := bubbleStop(start, target); stop != nil {
				if n == nil {
					t.Fatalf("bubble from %v to %v climbed beyond node %v", start.key, target.key, stop.key)
				}
				if n != stop && !isAbove(stop, n) {
					t.Fatalf("bubble from %v to %v stopped at %v, above node %v", start.key, target.key, n.key, stop.key)
				}
			}
			if n == nil {
				continue
			}
			if !isAbove(n, target) {
				t.Fatalf("bubble from %v to %v stopped at %v, which does not cover the target", start.key, target.key, n.key)
			}
			if l := tree.descend(n, target.key); l != target {
				t.Fatalf("descent from %v towards %v ended at leaf %v", n.key, target.key, l.key)
			}
			if treeItem[float64, string, struct{}](n) != tree.root {
				belowRoot++
			}
		}
	}
	if belowRoot < len(leaves) {
		t.Errorf("expected most nearby lookups to resolve below the root, only %d did", belowRoot)
	}
}

func TestAscendingInsertStaysBalanced(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for k := range 1000 {
		tree.Insert(float64(k), "")
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	// a full binary AVL tree with 1000 leaves has at most 14 levels of nodes
	if h := tree.Height(); h > 15 {
		t.Errorf("height %d too large for 1000 entries", h)
	}
	for k := 999; k >= 0; k -= 2 {
		tree.Remove(float64(k))
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestNoBalancingDegenerates(t *testing.T) {
	tree := newFloatTree(t, NoBalancing)
	for k := range 50 {
		tree.Insert(float64(k), "")
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	if tree.Height() != 50 {
		t.Errorf("expected a degenerated tree of height 50, got %d", tree.Height())
	}
	got := keysOf[float64, string](tree.Range(10, 12))
	if !slices.Equal(got, []float64{10, 11, 12}) {
		t.Errorf("unexpected range %v", got)
	}
}

func TestIntegerKeys(t *testing.T) {
	cfg := NewConfig[int32, string, struct{}](AVL)
	tree, _ := New(cfg)
	for _, k := range []int32{-5, 12, 0, -100, 7} {
		tree.Insert(k, "")
	}
	got := keysOf[int32, string](tree.All())
	if !slices.Equal(got, []int32{-100, -5, 0, 7, 12}) {
		t.Errorf("unexpected int32 order %v", got)
	}
	ucfg := NewConfig[uint32, string, struct{}](AVL)
	utree, _ := New(ucfg)
	for _, k := range []uint32{4000000000, 1, 77} {
		utree.Insert(k, "")
	}
	ugot := keysOf[uint32, string](utree.All())
	if !slices.Equal(ugot, []uint32{1, 77, 4000000000}) {
		t.Errorf("unexpected uint32 order %v", ugot)
	}
	if err := utree.Check(); err != nil {
		t.Error(err)
	}
}

func TestReplaceAndGet(t *testing.T) {
	cfg := NewConfig[float64, string, struct{}](AVL)
	var destructed []string
	cfg.SetLeafCallbacks(nil, func(_ float64, payload string) {
		destructed = append(destructed, payload)
	})
	tree, _ := New(cfg)
	if tree.Replace(1, "a") {
		t.Errorf("expected Replace of absent key to insert")
	}
	if !tree.Replace(1, "b") {
		t.Errorf("expected Replace of present key to replace")
	}
	if v, ok := tree.Get(1); !ok || v != "b" {
		t.Errorf("expected payload b, got %q", v)
	}
	if !slices.Equal(destructed, []string{"a"}) {
		t.Errorf("expected old payload to be destructed, got %v", destructed)
	}
	if _, ok := tree.Get(2); ok {
		t.Errorf("expected key 2 to be absent")
	}
}

func TestRotationsPreserveOrder(t *testing.T) {
	tree := newFloatTree(t, NoBalancing)
	for _, k := range []float64{1, 2, 3, 4} {
		tree.Insert(k, "")
	}
	// right spine: node(2) -> node(3) -> node(4)
	root := tree.root.(*node[float64, string, struct{}])
	top := tree.rotateLeft(root)
	if tree.root != treeItem[float64, string, struct{}](top) || top.parent != nil {
		t.Fatalf("expected rotated node to become the root")
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	tree.rotateRight(top)
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	got := keysOf[float64, string](tree.All())
	if !slices.Equal(got, []float64{1, 2, 3, 4}) {
		t.Errorf("unexpected order after rotations %v", got)
	}
	if tree.root != treeItem[float64, string, struct{}](root) {
		t.Errorf("expected rotations to cancel out")
	}
}

func TestWalk(t *testing.T) {
	tree := newFloatTree(t, AVL)
	for _, k := range scenarioKeys {
		tree.Insert(k, "")
	}
	var leaves, nodes int
	err := tree.Walk(func(v Visit[float64, string, struct{}]) error {
		if v.ID == 0 && v.Parent != -1 {
			t.Errorf("expected root to have no parent")
		}
		if v.IsLeaf {
			leaves++
		} else {
			nodes++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if leaves != 7 || nodes != 6 {
		t.Errorf("expected 7 leaves and 6 nodes, got %d and %d", leaves, nodes)
	}
	stop := errors.New("stop")
	if err = tree.Walk(func(Visit[float64, string, struct{}]) error { return stop }); err != stop {
		t.Errorf("expected Walk to return callback error")
	}
}

func TestObserver(t *testing.T) {
	cfg := NewConfig[int32, string, struct{}](AVL)
	var events []Event[int32]
	cfg.SetObserver(func(e Event[int32]) { events = append(events, e) })
	tree, _ := New(cfg)
	tree.Insert(1, "")
	tree.Insert(2, "")
	tree.Replace(2, "x")
	tree.Remove(1)
	tree.Clear()
	expected := []Event[int32]{{Inserted, 1}, {Inserted, 2}, {Replaced, 2}, {Removed, 1}, {Cleared, 0}}
	if !slices.Equal(events, expected) {
		t.Errorf("unexpected events %v", events)
	}
}

func TestNilTreeAccessors(t *testing.T) {
	var tree *Tree[float64, string, int]
	if !tree.IsEmpty() || tree.Len() != 0 || tree.Height() != 0 {
		t.Errorf("expected a nil tree to look empty")
	}
	if _, ok := tree.Summary(); ok {
		t.Errorf("expected no summary for a nil tree")
	}
	var lc lifecycle
	counted, _ := New(countingConfig(&lc, AVL))
	counted.Insert(1, 0)
	if _, ok := counted.Summary(); ok {
		t.Errorf("expected no summary for a leaf root")
	}
	counted.Insert(2, 0)
	if s, ok := counted.Summary(); !ok || s != 2 {
		t.Errorf("expected summary 2 for two entries, got %d", s)
	}
}
