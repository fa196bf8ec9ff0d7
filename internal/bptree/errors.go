package bptree

import "errors"

// Sentinel errors returned by the index. Callers should match them with
// errors.Is rather than comparing values directly, since I/O failures are
// wrapped with additional context.
var (
	// ErrInvalidReference is returned when a block or node identifier does
	// not correspond to anything present on disk.
	ErrInvalidReference = errors.New("bptree: invalid reference")

	// ErrWriteFailed is returned when a block write did not persist the
	// full BlockSize bytes, or the underlying write syscall failed.
	ErrWriteFailed = errors.New("bptree: write failed")

	// ErrParameterMismatch is returned on Load when the on-file fanout or
	// block size disagrees with the StoreOptions passed to Load, or the
	// on-file identifier/key widths disagree with this package's types.
	ErrParameterMismatch = errors.New("bptree: parameter mismatch")

	// ErrDuplicateKey is returned by Insert when the key is already present.
	// It is an expected, non-fatal outcome; the insert is a no-op.
	ErrDuplicateKey = errors.New("bptree: duplicate key")

	// ErrStructural indicates a broken invariant: the parallel key/child
	// arrays of a node overflowed independently instead of together. This
	// should be unreachable and signals a bug rather than bad input.
	ErrStructural = errors.New("bptree: structural invariant violated")

	// ErrReservedKey is returned by Insert when the caller attempts to
	// insert the reserved sentinel key 0.
	ErrReservedKey = errors.New("bptree: key 0 is reserved")
)
