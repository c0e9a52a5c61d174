package testing

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/kvgate/lib/store"
)

// RunStoreTests runs a comprehensive test suite for a store.IStore implementation.
func RunStoreTests(t *testing.T, name string, factory store.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory())
		})

		t.Run("MissingKey", func(t *testing.T) {
			testMissingKey(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("DeleteCount", func(t *testing.T) {
			testDeleteCount(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentDistinctKeys", func(t *testing.T) {
			testConcurrentDistinctKeys(t, factory())
		})

		t.Run("ConcurrentSameKey", func(t *testing.T) {
			testConcurrentSameKey(t, factory())
		})

		t.Run("ConcurrentDelete", func(t *testing.T) {
			testConcurrentDelete(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustGet(t testing.TB, s store.IStore, key string) (string, bool) {
	t.Helper()
	value, loaded, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) returned error: %v", key, err)
	}
	return value, loaded
}

func mustSet(t testing.TB, s store.IStore, key, value string) {
	t.Helper()
	if err := s.Set(key, value); err != nil {
		t.Fatalf("Set(%q) returned error: %v", key, err)
	}
}

func mustDelete(t testing.TB, s store.IStore, keys ...string) uint64 {
	t.Helper()
	count, err := s.Delete(keys)
	if err != nil {
		t.Fatalf("Delete(%v) returned error: %v", keys, err)
	}
	return count
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, s store.IStore) {
	mustSet(t, s, "test-key", "test-value")

	value, loaded := mustGet(t, s, "test-key")
	if !loaded {
		t.Errorf("Expected key %s to exist after Set", "test-key")
	}
	if value != "test-value" {
		t.Errorf("Expected value %s, got %s", "test-value", value)
	}
}

func testOverwrite(t *testing.T, s store.IStore) {
	mustSet(t, s, "k", "v1")
	mustSet(t, s, "k", "v2")

	value, loaded := mustGet(t, s, "k")
	if !loaded || value != "v2" {
		t.Errorf("Expected last write v2 to win, got %q (loaded=%v)", value, loaded)
	}
}

func testMissingKey(t *testing.T, s store.IStore) {
	value, loaded := mustGet(t, s, "nonexistent")
	if loaded {
		t.Errorf("Expected nonexistent key to return loaded=false")
	}
	if value != "" {
		t.Errorf("Expected empty value for nonexistent key, got %q", value)
	}
}

func testDelete(t *testing.T, s store.IStore) {
	mustSet(t, s, "a", "1")

	if count := mustDelete(t, s, "a"); count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
	if _, loaded := mustGet(t, s, "a"); loaded {
		t.Errorf("Expected key a to be gone after Delete")
	}

	// deleting again is a no-op, not an error
	if count := mustDelete(t, s, "a"); count != 0 {
		t.Errorf("Expected count 0 for already deleted key, got %d", count)
	}
}

func testDeleteCount(t *testing.T, s store.IStore) {
	present := []string{"p1", "p2", "p3"}
	for _, k := range present {
		mustSet(t, s, k, "x")
	}
	mustSet(t, s, "untouched", "y")

	testCases := []struct {
		name     string
		keys     []string
		expected uint64
	}{
		{"mixed present and absent", []string{"p1", "absent", "p2"}, 2},
		{"duplicates count once", []string{"p3", "p3"}, 1},
		{"all absent", []string{"p1", "p2", "p3", "nope"}, 0},
		{"empty list", []string{}, 0},
		{"nil list", nil, 0},
	}

	for _, tc := range testCases {
		count := mustDelete(t, s, tc.keys...)
		if count != tc.expected {
			t.Errorf("%s: expected count %d, got %d", tc.name, tc.expected, count)
		}
		for _, k := range tc.keys {
			if _, loaded := mustGet(t, s, k); loaded {
				t.Errorf("%s: key %s still present after Delete", tc.name, k)
			}
		}
	}

	if value, loaded := mustGet(t, s, "untouched"); !loaded || value != "y" {
		t.Errorf("Delete removed a key that was not requested")
	}
}

func testEdgeCases(t *testing.T, s store.IStore) {
	// empty key and empty value are ordinary records
	mustSet(t, s, "", "empty-key")
	if value, loaded := mustGet(t, s, ""); !loaded || value != "empty-key" {
		t.Errorf("Empty key not stored correctly: %q (loaded=%v)", value, loaded)
	}

	mustSet(t, s, "empty-value", "")
	value, loaded := mustGet(t, s, "empty-value")
	if !loaded {
		t.Errorf("Key with empty value should be found")
	}
	if value != "" {
		t.Errorf("Expected empty value, got %q", value)
	}

	// unicode keys and values
	mustSet(t, s, "ключ/🔑", "värde")
	if value, _ := mustGet(t, s, "ключ/🔑"); value != "värde" {
		t.Errorf("Unicode value mismatch: got %q", value)
	}
}

func testConcurrentDistinctKeys(t *testing.T, s store.IStore) {
	const numWorkers = 16
	const keysPerWorker = 200

	var wg sync.WaitGroup
	var errorCount int32
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("w%d-k%d", worker, i)
				if err := s.Set(key, key); err != nil {
					atomic.AddInt32(&errorCount, 1)
				}
			}
		}(w)
	}
	wg.Wait()

	if errorCount > 0 {
		t.Fatalf("Test had %d errors during parallel writes", errorCount)
	}

	for w := 0; w < numWorkers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			if value, loaded := mustGet(t, s, key); !loaded || value != key {
				t.Errorf("Key %s lost after concurrent writes (value=%q loaded=%v)", key, value, loaded)
			}
		}
	}
}

func testConcurrentSameKey(t *testing.T, s store.IStore) {
	const numWorkers = 32

	written := make(map[string]bool, numWorkers)
	for w := 0; w < numWorkers; w++ {
		written[fmt.Sprintf("value-%d", w)] = true
	}

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(worker int) {
			defer wg.Done()
			_ = s.Set("shared", fmt.Sprintf("value-%d", worker))
		}(w)
	}
	wg.Wait()

	value, loaded := mustGet(t, s, "shared")
	if !loaded {
		t.Fatalf("Shared key missing after concurrent writes")
	}
	if !written[value] {
		t.Errorf("Shared key holds %q which was never written", value)
	}
}

func testConcurrentDelete(t *testing.T, s store.IStore) {
	const numKeys = 500
	const numWorkers = 8

	keys := make([]string, numKeys)
	for i := range keys {
		keys[i] = fmt.Sprintf("del-%d", i)
		mustSet(t, s, keys[i], "x")
	}

	// every worker tries to delete every key, the total must still equal numKeys
	var total uint64
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			count, err := s.Delete(keys)
			if err != nil {
				t.Errorf("Delete returned error: %v", err)
				return
			}
			atomic.AddUint64(&total, count)
		}()
	}
	wg.Wait()

	if total != numKeys {
		t.Errorf("Expected %d keys removed in total, got %d", numKeys, total)
	}
}

func testInfo(t *testing.T, s store.IStore) {
	mustSet(t, s, "a", "1")
	mustSet(t, s, "b", "2")
	mustGet(t, s, "a")
	mustDelete(t, s, "b", "c")

	info, err := s.GetInfo()
	if err != nil {
		// implementations may not support info
		t.Skip()
	}

	if info.Keys != 1 {
		t.Errorf("Expected 1 key in info, got %d", info.Keys)
	}
	if info.Sets != 2 {
		t.Errorf("Expected 2 sets in info, got %d", info.Sets)
	}
	if info.Gets != 1 {
		t.Errorf("Expected 1 get in info, got %d", info.Gets)
	}
	if info.Deletes != 1 {
		t.Errorf("Expected 1 delete in info, got %d", info.Deletes)
	}
}
