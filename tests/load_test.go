package tests

import (
	"os"
	"testing"

	"github.com/upsidedownfoxxo/bptree/db"
	"github.com/upsidedownfoxxo/bptree/internal/bptree"
)

const loadTestDBPath = "load_test.db"

func loadTestOpts() bptree.StoreOptions {
	return bptree.StoreOptions{Fanout: 4, BlockSize: 128, CacheSize: 64}
}

// setupLoadTest creates a new database for load testing.
func setupLoadTest() (*db.DB, error) {
	os.Remove(loadTestDBPath)
	return db.Open(loadTestDBPath, loadTestOpts())
}

// cleanupLoadTest closes and removes the test database.
func cleanupLoadTest(database *db.DB) {
	database.Close()
	os.Remove(loadTestDBPath)
}

// TestSingleKeyValue inserts a single key-payload pair and reads it back.
func TestSingleKeyValue(t *testing.T) {
	database, err := setupLoadTest()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer cleanupLoadTest(database)

	var key bptree.SearchKey = 42
	var value bptree.NodeIdent = 7

	if err := database.Put(key, value); err != nil {
		t.Fatalf("Failed to put single key-value pair: %v", err)
	}

	got, found, err := database.Get(key)
	if err != nil {
		t.Fatalf("Failed to get single key-value pair: %v", err)
	}
	if !found {
		t.Fatal("Expected key 42 to be found")
	}
	if got != value {
		t.Fatalf("Value mismatch for single key-value pair: expected %d, got %d", value, got)
	}

	t.Log("Successfully inserted and retrieved a single key-value pair")
}

// TestIncrementalInserts inserts an increasing number of keys, syncing
// after each one, to exercise the store's cache and write-back path.
func TestIncrementalInserts(t *testing.T) {
	database, err := setupLoadTest()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer cleanupLoadTest(database)

	for i := 0; i < 200; i++ {
		key := bptree.SearchKey(i + 1)
		value := bptree.NodeIdent(i)

		if err := database.Put(key, value); err != nil {
			t.Fatalf("Failed to put entry %d: %v", i, err)
		}
		if err := database.Sync(); err != nil {
			t.Fatalf("Failed to sync after entry %d: %v", i, err)
		}

		got, found, err := database.Get(key)
		if err != nil {
			t.Fatalf("Failed to get entry %d: %v", i, err)
		}
		if !found || got != value {
			t.Fatalf("Value mismatch for entry %d: expected %d, got %d (found=%v)", i, value, got, found)
		}
	}

	t.Log("Successfully inserted and retrieved 200 key-value pairs incrementally")
}

// TestNodeCapacity inserts keys until a failure (there should be none short
// of a duplicate or the reserved key) to probe how the tree grows under a
// long, steady insert run.
func TestNodeCapacity(t *testing.T) {
	database, err := setupLoadTest()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer cleanupLoadTest(database)

	const target = 1000
	var i int
	for i = 0; i < target; i++ {
		key := bptree.SearchKey(i + 1)
		value := bptree.NodeIdent(i)

		if i > 0 && i%100 == 0 {
			if err := database.Sync(); err != nil {
				t.Fatalf("Failed to sync at entry %d: %v", i, err)
			}
		}

		if err := database.Put(key, value); err != nil {
			t.Fatalf("Failed after inserting %d entries: %v", i, err)
		}
	}

	if err := database.Sync(); err != nil {
		t.Fatalf("Failed to perform final sync: %v", err)
	}

	for j := 0; j < target; j++ {
		key := bptree.SearchKey(j + 1)
		value, found, err := database.Get(key)
		if err != nil {
			t.Fatalf("Failed to get entry %d: %v", j, err)
		}
		if !found || value != bptree.NodeIdent(j) {
			t.Fatalf("Value mismatch for entry %d: expected %d, got %d (found=%v)", j, j, value, found)
		}
	}

	t.Logf("Successfully verified all %d entries", target)
}

// TestSnapshotRestoreRoundTrip exercises the db package's backup support:
// a snapshot taken mid-run must restore to an indistinguishable database.
func TestSnapshotRestoreRoundTrip(t *testing.T) {
	database, err := setupLoadTest()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer cleanupLoadTest(database)

	for i := 0; i < 50; i++ {
		if err := database.Put(bptree.SearchKey(i+1), bptree.NodeIdent(i)); err != nil {
			t.Fatalf("Failed to put entry %d: %v", i, err)
		}
	}

	snapshotPath := loadTestDBPath + ".snap"
	defer os.Remove(snapshotPath)

	snapFile, err := os.Create(snapshotPath)
	if err != nil {
		t.Fatalf("Failed to create snapshot file: %v", err)
	}
	if err := database.SnapshotTo(snapFile); err != nil {
		snapFile.Close()
		t.Fatalf("Failed to snapshot database: %v", err)
	}
	snapFile.Close()

	// Insert a post-snapshot key, then restore over it.
	if err := database.Put(bptree.SearchKey(9999), bptree.NodeIdent(9999)); err != nil {
		t.Fatalf("Failed to put post-snapshot entry: %v", err)
	}

	snapFile, err = os.Open(snapshotPath)
	if err != nil {
		t.Fatalf("Failed to reopen snapshot file: %v", err)
	}
	defer snapFile.Close()
	if err := database.RestoreFrom(snapFile); err != nil {
		t.Fatalf("Failed to restore from snapshot: %v", err)
	}

	for i := 0; i < 50; i++ {
		value, found, err := database.Get(bptree.SearchKey(i + 1))
		if err != nil {
			t.Fatalf("Failed to get entry %d after restore: %v", i, err)
		}
		if !found || value != bptree.NodeIdent(i) {
			t.Fatalf("Entry %d missing or wrong after restore: found=%v value=%d", i, found, value)
		}
	}

	if _, found, err := database.Get(9999); err != nil {
		t.Fatalf("Failed to get post-snapshot key: %v", err)
	} else if found {
		t.Fatal("Expected the post-snapshot insert to be gone after restore")
	}

	t.Log("Successfully restored database from snapshot")
}

// TestDuplicateKeyRejected confirms that a duplicate insert leaves the
// original value intact rather than silently overwriting it.
func TestDuplicateKeyRejected(t *testing.T) {
	database, err := setupLoadTest()
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer cleanupLoadTest(database)

	if err := database.Put(1, 100); err != nil {
		t.Fatalf("Failed to put initial entry: %v", err)
	}
	if err := database.Put(1, 200); err != bptree.ErrDuplicateKey {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	value, found, err := database.Get(1)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if !found || value != 100 {
		t.Fatalf("expected original value 100 to survive, got %d (found=%v)", value, found)
	}
}
