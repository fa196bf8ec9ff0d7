package bptree

import (
	"fmt"
	"strings"
)

const (
	nodeIdentSize = 4 // bytes, size of NodeIdent (int32)
	searchKeySize = 8 // bytes, size of SearchKey (int64)
)

// Tree is the public façade over a file-backed B+-tree index. It is not
// safe for concurrent use by multiple goroutines: the spec this
// implementation follows is explicitly single-process, single-threaded,
// and adding a lock here would itself be the "concurrent-access layer"
// that scope excludes.
type Tree struct {
	store *Store
	root  NodeIdent
}

// New creates a fresh index at path: an empty store plus one empty leaf
// stored as the root.
func New(path string, opts StoreOptions) (*Tree, error) {
	store, err := NewStore(path, opts)
	if err != nil {
		return nil, err
	}

	leaf := newNode(store.Fanout())
	root, err := store.Store(leaf, true)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Tree{store: store, root: root}, nil
}

// Load reopens an index previously written by Save, adopting its
// persisted root.
func Load(path string, opts StoreOptions) (*Tree, error) {
	store, root, err := LoadStore(path, opts)
	if err != nil {
		return nil, err
	}
	return &Tree{store: store, root: root}, nil
}

// Close releases the underlying file handle.
func (t *Tree) Close() error {
	return t.store.Close()
}

// Search looks up key, returning its stored payload identifier.
func (t *Tree) Search(key SearchKey) (NodeIdent, bool, error) {
	return Search(t.store, t.root, key)
}

// Insert inserts (key, value). ErrDuplicateKey is returned unchanged if key
// is already present; any other error aborts this insert attempt. Changes
// already applied to cached nodes before the failure (for example the left
// half of a split) are not rolled back, so the tree may be left inconsistent.
func (t *Tree) Insert(key SearchKey, value NodeIdent) error {
	outcome, err := Insert(t.store, t.store.Fanout(), t.root, key, value)
	if err != nil {
		return err
	}
	if !outcome.Overflowed {
		return nil
	}

	// The root split: build a fresh inner root with the old root as its
	// left child and the newly split sibling as its right child.
	fanout := t.store.Fanout()
	newRoot := newNode(fanout)
	newRoot.Separators[0] = outcome.Separator
	newRoot.Children[0] = t.root
	newRoot.Children[1] = outcome.Right
	newRoot.Size = 1

	rootIdent, err := t.store.Store(newRoot, false)
	if err != nil {
		return err
	}
	t.root = rootIdent
	return nil
}

// Save flushes the store and writes a fresh metadata block. Nothing is
// durable until Save returns.
func (t *Tree) Save() error {
	if err := t.store.Flush(); err != nil {
		return err
	}
	return t.store.SetMetadata(Metadata{
		Fanout:        t.store.Fanout(),
		BlockSize:     t.store.BlockSize(),
		NodeIdentSize: nodeIdentSize,
		SearchKeySize: searchKeySize,
		NodeCtr:       t.store.NodeCtr(),
		RootNode:      t.root,
	})
}

// Root returns the identifier of the current root node.
func (t *Tree) Root() NodeIdent { return t.root }

// NodeCtr returns the store's current node counter.
func (t *Tree) NodeCtr() NodeIdent { return t.store.NodeCtr() }

// PrintGraphviz renders the whole tree as a graphviz digraph.
func (t *Tree) PrintGraphviz() (string, error) {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	if err := DumpStoredNodes(t.store, t.root, func(line string) {
		fmt.Fprintln(&b, line)
	}); err != nil {
		return "", err
	}
	b.WriteString("}\n")
	return b.String(), nil
}
