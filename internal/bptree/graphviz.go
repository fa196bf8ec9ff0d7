package bptree

import (
	"fmt"
	"strings"
)

// ToGraphviz renders a single node (named by the signed ident it was
// fetched under) as a graphviz record plus, for inner nodes, edges to its
// children. It is a debugging aid only; never called on an insert/search
// path.
func ToGraphviz(node *Node, ident NodeIdent) string {
	if !isLeafIdent(ident) {
		var b strings.Builder
		fmt.Fprintf(&b, "%d [shape=record,label=\"<sep0> ", ident)
		for i := 0; i < node.Size; i++ {
			fmt.Fprintf(&b, "| %d | <sep%d> ", node.Separators[i], i+1)
		}
		b.WriteString("\"];")
		for i := 0; i <= node.Size; i++ {
			fmt.Fprintf(&b, "\n%d:sep%d -> %d;", ident, i, node.Children[i])
		}
		return b.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d [shape=record, label=\"", ident)
	for i := 0; i < node.Size; i++ {
		fmt.Fprintf(&b, "{ %d }", node.Separators[i])
		if i < node.Size-1 {
			b.WriteString(" | ")
		}
	}
	b.WriteString("\"];")
	return b.String()
}

// DumpStoredNodes walks the tree rooted at root depth-first, writing one
// ToGraphviz output per visited node through writeln.
func DumpStoredNodes(store NodeStore, root NodeIdent, writeln func(string)) error {
	stack := []NodeIdent{root}
	for len(stack) > 0 {
		ident := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, err := store.Get(ident)
		if err != nil {
			return err
		}
		writeln(ToGraphviz(node, ident))

		if !isLeafIdent(ident) {
			for i := 0; i <= node.Size; i++ {
				stack = append(stack, node.Children[i])
			}
		}
	}
	return nil
}
