package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/avltree"
)

// ToDot outputs the internal structure of a tree in Graphviz DOT format.
// Nodes are drawn as circles labelled with their routing key and balance,
// leaves as boxes labelled with their key.
func ToDot[K avltree.Key, L, N any](w io.Writer, tree *avltree.Tree[K, L, N]) error {
	var nodelist, edgelist strings.Builder
	err := tree.Walk(func(v avltree.Visit[K, L, N]) error {
		if v.IsLeaf {
			fmt.Fprintf(&nodelist, "\t\"%d\" [label=\"%v\" %s];\n", v.ID, v.Key, dotStyles(true))
		} else {
			fmt.Fprintf(&nodelist, "\t\"%d\" [label=\"%v\\n%+d\" %s];\n", v.ID, v.Key, v.Balance, dotStyles(false))
		}
		if v.Parent >= 0 {
			fmt.Fprintf(&edgelist, "\t\"%d\" -> \"%d\" [label=\"%d\"];\n", v.Parent, v.ID, v.Side)
		}
		return nil
	})
	if err != nil {
		tracer().Errorf("tree DOT: %s", err.Error())
		return err
	}
	if _, err = io.WriteString(w, "strict digraph {\n\tnode [fontname=Arial,fontsize=12];\n"); err != nil {
		return err
	}
	if _, err = io.WriteString(w, nodelist.String()); err != nil {
		return err
	}
	if _, err = io.WriteString(w, edgelist.String()); err != nil {
		return err
	}
	_, err = io.WriteString(w, "}\n")
	return err
}

func dotStyles(isleaf bool) string {
	s := ",style=filled"
	if isleaf {
		s += ",shape=box"
	} else {
		s += ",color=black,fillcolor=\"#a3d7e4\",shape=circle"
	}
	return s
}
