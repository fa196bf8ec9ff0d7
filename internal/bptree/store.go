package bptree

import (
	"fmt"
	"io"
	"os"
)

// DefaultBlockSize is a power of two comfortably above the minimum
// BlockSize >= Fanout*12 required for the default fanout.
const DefaultBlockSize = 128

// DefaultCacheSize bounds how many nodes the clock cache holds at once.
const DefaultCacheSize = 64

// Store is the file-backed node store. It owns the file handle, a
// monotonically increasing node counter, and the buffer cache that
// mediates every node read and write.
type Store struct {
	file      *os.File
	fanout    int
	blockSize int
	nodeCtr   NodeIdent
	cache     *cache
	logger    Logger
}

// StoreOptions configures a new or reloaded Store. Fanout and BlockSize
// must match across a save/load cycle; CacheSize and ChanceMax are
// local tuning knobs that do not affect on-disk compatibility.
type StoreOptions struct {
	Fanout    int
	BlockSize int
	CacheSize int
	ChanceMax int
	Logger    Logger
}

func (o StoreOptions) withDefaults() StoreOptions {
	if o.Fanout <= 0 {
		o.Fanout = 4
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.ChanceMax <= 0 {
		o.ChanceMax = DefaultChanceMax
	}
	return o
}

// NewStore opens or creates the backing file and starts with an empty
// cache and node_ctr = 0. It does not write a root node; that is the
// tree façade's responsibility.
func NewStore(path string, opts StoreOptions) (*Store, error) {
	opts = opts.withDefaults()
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("bptree: open %q: %w", path, err)
	}
	logger := resolveLogger(opts.Logger)
	logger.Infof("bptree: opened store %q fanout=%d block_size=%d cache_size=%d", path, opts.Fanout, opts.BlockSize, opts.CacheSize)
	return &Store{
		file:      f,
		fanout:    opts.Fanout,
		blockSize: opts.BlockSize,
		cache:     newCache(opts.CacheSize, opts.ChanceMax),
		logger:    logger,
	}, nil
}

// LoadStore opens an existing file, reads block 0 as metadata, and
// validates it against opts before returning the store plus the
// persisted root identifier.
func LoadStore(path string, opts StoreOptions) (*Store, NodeIdent, error) {
	opts = opts.withDefaults()
	f, err := os.OpenFile(path, os.O_RDWR, 0o666)
	if err != nil {
		return nil, 0, fmt.Errorf("bptree: open %q: %w", path, err)
	}
	logger := resolveLogger(opts.Logger)

	head := make([]byte, opts.BlockSize)
	if _, err := f.ReadAt(head, 0); err != nil && err != io.EOF {
		f.Close()
		return nil, 0, fmt.Errorf("bptree: read metadata block of %q: %w", path, err)
	}
	meta, err := decodeMetadata(head)
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("bptree: decode metadata of %q: %w", path, err)
	}

	const identSize = 4 // size of NodeIdent (int32)
	const keySize = 8   // size of SearchKey (int64)
	switch {
	case meta.Fanout != opts.Fanout:
		logger.Errorf("bptree: %q fanout mismatch: file=%d compiled=%d", path, meta.Fanout, opts.Fanout)
		f.Close()
		return nil, 0, fmt.Errorf("%w: fanout file=%d compiled=%d", ErrParameterMismatch, meta.Fanout, opts.Fanout)
	case meta.BlockSize != opts.BlockSize:
		logger.Errorf("bptree: %q block_size mismatch: file=%d compiled=%d", path, meta.BlockSize, opts.BlockSize)
		f.Close()
		return nil, 0, fmt.Errorf("%w: block_size file=%d compiled=%d", ErrParameterMismatch, meta.BlockSize, opts.BlockSize)
	case meta.NodeIdentSize != identSize:
		f.Close()
		return nil, 0, fmt.Errorf("%w: node_ident_size file=%d compiled=%d", ErrParameterMismatch, meta.NodeIdentSize, identSize)
	case meta.SearchKeySize != keySize:
		f.Close()
		return nil, 0, fmt.Errorf("%w: search_key_size file=%d compiled=%d", ErrParameterMismatch, meta.SearchKeySize, keySize)
	}

	store := &Store{
		file:      f,
		fanout:    opts.Fanout,
		blockSize: opts.BlockSize,
		nodeCtr:   meta.NodeCtr,
		cache:     newCache(opts.CacheSize, opts.ChanceMax),
		logger:    logger,
	}
	logger.Infof("bptree: loaded store %q node_ctr=%d root=%d", path, meta.NodeCtr, meta.RootNode)
	return store, meta.RootNode, nil
}

// Close releases the underlying file handle. Callers should Flush/Save
// first if pending mutations must survive.
func (s *Store) Close() error {
	return s.file.Close()
}

// Fanout returns the store's fixed fanout S.
func (s *Store) Fanout() int { return s.fanout }

// BlockSize returns the store's block size in bytes.
func (s *Store) BlockSize() int { return s.blockSize }

// NodeCtr returns the current node counter, i.e. the identifier of the
// most recently allocated node.
func (s *Store) NodeCtr() NodeIdent { return s.nodeCtr }

// GetBlock reads block i from the file. i is a block index (1-based for
// node blocks; 0 is the metadata block).
func (s *Store) GetBlock(i int) ([]byte, error) {
	buf := make([]byte, s.blockSize)
	n, err := s.file.ReadAt(buf, int64(i)*int64(s.blockSize))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: block %d: %v", ErrInvalidReference, i, err)
	}
	if n != s.blockSize {
		return nil, fmt.Errorf("%w: block %d: short read (%d of %d bytes)", ErrInvalidReference, i, n, s.blockSize)
	}
	return buf, nil
}

// SetBlock writes exactly BlockSize bytes at block i.
func (s *Store) SetBlock(i int, data []byte) error {
	if len(data) != s.blockSize {
		return fmt.Errorf("%w: block %d: payload is %d bytes, want %d", ErrWriteFailed, i, len(data), s.blockSize)
	}
	n, err := s.file.WriteAt(data, int64(i)*int64(s.blockSize))
	if err != nil {
		return fmt.Errorf("%w: block %d: %v", ErrWriteFailed, i, err)
	}
	if n != s.blockSize {
		return fmt.Errorf("%w: block %d: short write (%d of %d bytes)", ErrWriteFailed, i, n, s.blockSize)
	}
	return nil
}

// Get returns a handle to the node named by ident, whether it lives in the
// cache or must be read through from disk. A read-through that causes an
// eviction flushes the evicted node before returning.
func (s *Store) Get(ident NodeIdent) (*Node, error) {
	if node, ok := s.cache.get(ident); ok {
		return node, nil
	}

	data, err := s.GetBlock(identBlock(ident))
	if err != nil {
		return nil, err
	}
	node, err := decodeNode(data, s.fanout)
	if err != nil {
		return nil, err
	}

	evicted, victimIdent, victimNode := s.cache.cacheNode(ident, node)
	if evicted {
		s.logger.Debugf("bptree: evicting node %d to make room for %d", victimIdent, ident)
		victimData, err := encodeNode(victimNode, s.fanout, s.blockSize)
		if err != nil {
			return nil, err
		}
		if err := s.SetBlock(identBlock(victimIdent), victimData); err != nil {
			s.logger.Errorf("bptree: eviction write-back of node %d failed: %v", victimIdent, err)
			return nil, err
		}
	}

	return node, nil
}

// Store allocates a new identifier, writes the encoded node at that block
// immediately, and returns the signed identifier (negative for inner,
// positive for leaf). It does not populate the cache; the node flows
// through the cache on the next Get.
func (s *Store) Store(node *Node, isLeaf bool) (NodeIdent, error) {
	s.nodeCtr++
	ident := s.nodeCtr

	data, err := encodeNode(node, s.fanout, s.blockSize)
	if err != nil {
		return 0, err
	}
	if err := s.SetBlock(identBlock(ident), data); err != nil {
		return 0, err
	}

	if !isLeaf {
		return -ident, nil
	}
	return ident, nil
}

// Flush drains the cache and writes every entry back to its block.
func (s *Store) Flush() error {
	entries := s.cache.drain()
	for _, e := range entries {
		data, err := encodeNode(e.node, s.fanout, s.blockSize)
		if err != nil {
			return err
		}
		if err := s.SetBlock(identBlock(e.ident), data); err != nil {
			return err
		}
	}
	s.logger.Infof("bptree: flushed %d cached node(s)", len(entries))
	return nil
}

// SetMetadata writes the metadata block at block 0. This is the commit
// point that makes the store reloadable.
func (s *Store) SetMetadata(m Metadata) error {
	data, err := encodeMetadata(m, s.blockSize)
	if err != nil {
		return err
	}
	return s.SetBlock(0, data)
}
