/*
Package avltree implements a generic, self-balancing binary leaf tree.

Keys and payloads are stored in leaves only. Inner nodes carry a routing key
and exactly two children, plus an optional client-defined payload which is
kept up to date by a node updater whenever something below it changes
(subtree counts, bounding intervals and the like). With balancing enabled,
the tree keeps AVL balance: for every node, the heights of its two subtrees
differ by at most one.

Insertion splits an existing leaf into a node with two leaf children;
removal promotes the sibling of the removed leaf into its grandparent.
A tree holding a single entry therefore has a leaf as its root.

	cfg := avltree.NewConfig[float64, string, struct{}](avltree.AVL)
	tree, _ := avltree.New(cfg)
	tree.Insert(5, "five")
	tree.Insert(3, "three")
	for k, v := range tree.Range(2, 4) {
	    fmt.Println(k, v)
	}

Iterators are cursors which may be re-used for lookups starting from their
current position. A lookup from a positioned iterator first bubbles upwards
until the key is known to be below the current ancestor, then descends. This
makes sequential access patterns cheap.

Trees are not safe for concurrent use. Several read-only iterators may be
open at the same time, but structural changes have to be serialized by the
client.

Building with tag `avldebug` enables instrumentation: iterator bookkeeping,
detection of configuration changes after use and ordering checks for
sequential inserts.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package avltree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'avltree'
func tracer() tracing.Trace {
	return tracing.Select("avltree")
}

// assert panics if a structural invariant does not hold. Failing assertions
// signal a corrupted tree and are not recoverable.
func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// contractViolation reports a misuse of the API by the client. Instrumented
// builds log the violation and continue, other builds do not check.
func contractViolation(format string, args ...any) {
	tracer().Errorf("avltree: "+format, args...)
}
