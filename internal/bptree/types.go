// Package bptree implements a persistent, block-oriented B+-tree index
// backed by a single regular file. Keys are signed 64-bit search keys;
// values are opaque 32-bit payload identifiers supplied by the caller.
package bptree

// SearchKey is a signed 64-bit search key. The value 0 is reserved as the
// empty-slot sentinel and must never be inserted by a caller.
type SearchKey = int64

// NodeIdent identifies a node on disk. Its sign carries the node kind and
// its magnitude the file block index: positive idents name leaves stored at
// block ident, negative idents name inner nodes stored at block -ident, and
// 0 is the nil/empty identifier.
type NodeIdent = int32

// Node is the shared in-memory layout for both leaf and inner nodes. Which
// interpretation applies is determined by the sign of the NodeIdent under
// which it was fetched, not by any field on Node itself:
//
//   - Leaf (ident > 0): Separators holds live keys in ascending order,
//     Children holds the parallel payload identifiers.
//   - Inner (ident < 0): Separators holds routing keys, Children holds
//     child NodeIdents; subtree count is Size+1.
//
// Both arrays are always allocated to the node store's fanout; only the
// first Size separators (and Size+1 children of an inner node) are
// meaningful.
type Node struct {
	Separators []SearchKey
	Children   []NodeIdent
	Size       int
}

func newNode(fanout int) *Node {
	return &Node{
		Separators: make([]SearchKey, fanout),
		Children:   make([]NodeIdent, fanout),
	}
}

func identBlock(ident NodeIdent) int {
	if ident < 0 {
		return int(-ident)
	}
	return int(ident)
}

func isLeafIdent(ident NodeIdent) bool {
	return ident > 0
}
