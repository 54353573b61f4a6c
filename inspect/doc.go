/*
Package inspect renders the internal structure of an avltree, either as a
Graphviz DOT graph or as an indented listing on a console. It is meant for
debugging and for tests.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

Please refer to the LICENSE file for details.
*/
package inspect

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'avltree'
func tracer() tracing.Trace {
	return tracing.Select("avltree")
}
