// Package db wraps a bptree.Tree with durable snapshot/restore support: a
// thin convenience layer for the demo REPL, not a concurrent-access layer
// (the index underneath remains single-process, single-threaded).
package db

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/upsidedownfoxxo/bptree/internal/bptree"
)

// ErrClosed is returned by any operation attempted after Close.
var ErrClosed = errors.New("db: database closed")

// DB wraps a bptree.Tree and the path it was opened from, so it can
// snapshot and restore its own backing file.
type DB struct {
	tree     *bptree.Tree
	path     string
	opts     bptree.StoreOptions
	isClosed bool
}

// Open creates a fresh index at path if one does not yet exist, or reopens
// the existing one.
func Open(path string, opts bptree.StoreOptions) (*DB, error) {
	tree, err := bptree.Load(path, opts)
	if errors.Is(err, os.ErrNotExist) {
		tree, err = bptree.New(path, opts)
	}
	if err != nil {
		return nil, err
	}
	return &DB{tree: tree, path: path, opts: opts}, nil
}

// Close saves pending mutations and releases the file handle.
func (db *DB) Close() error {
	if db.isClosed {
		return ErrClosed
	}
	db.isClosed = true
	if err := db.tree.Save(); err != nil {
		return err
	}
	return db.tree.Close()
}

// Get looks up key's stored payload identifier.
func (db *DB) Get(key bptree.SearchKey) (bptree.NodeIdent, bool, error) {
	if db.isClosed {
		return 0, false, ErrClosed
	}
	return db.tree.Search(key)
}

// Put inserts (key, value). ErrDuplicateKey surfaces unchanged: there is no
// update-in-place, only first-insert-wins.
func (db *DB) Put(key bptree.SearchKey, value bptree.NodeIdent) error {
	if db.isClosed {
		return ErrClosed
	}
	return db.tree.Insert(key, value)
}

// Sync flushes the cache and writes a fresh metadata block, making the
// current state durable.
func (db *DB) Sync() error {
	if db.isClosed {
		return ErrClosed
	}
	return db.tree.Save()
}

// SnapshotTo streams a durable copy of the backing file to w. The tree is
// synced first so the stream reflects every insert made so far.
func (db *DB) SnapshotTo(w io.Writer) error {
	if db.isClosed {
		return ErrClosed
	}
	if err := db.tree.Save(); err != nil {
		return err
	}

	f, err := os.Open(db.path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close index file during snapshot: %v\n", closeErr)
		}
	}()

	_, err = io.Copy(w, f)
	return err
}

// RestoreFrom replaces the backing file with the snapshot stream, then
// reopens it. The write lands in a temp file first and is rename'd into
// place so a failed restore never corrupts the live file.
func (db *DB) RestoreFrom(r io.Reader) error {
	if db.isClosed {
		return ErrClosed
	}
	if err := db.tree.Close(); err != nil {
		return err
	}
	// The live handle is gone regardless of what happens below: mark the DB
	// closed now so a failure in the steps that follow reports ErrClosed
	// instead of a confusing error from the already-closed tree/file.
	db.isClosed = true

	dir := filepath.Dir(db.path)
	tmpPath := filepath.Join(dir, ".bptree.restore.tmp")
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmpFile, r); err != nil {
		if closeErr := tmpFile.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close temp file after copy error: %v\n", closeErr)
		}
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		if closeErr := tmpFile.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close temp file after sync error: %v\n", closeErr)
		}
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, db.path); err != nil {
		return err
	}

	tree, err := bptree.Load(db.path, db.opts)
	if err != nil {
		return err
	}
	db.tree = tree
	db.isClosed = false
	return nil
}
