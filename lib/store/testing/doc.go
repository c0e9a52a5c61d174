// Package testing provides a standardised test suite for store
// implementations that satisfy the store.IStore interface.
//
// The suite checks overwrite semantics, missing-key behaviour, delete counts,
// edge cases and concurrent access (distinct keys, a single contended key and
// overlapping deletes).
//
// Example usage:
//
//	func TestMyStore(t *testing.T) {
//		storetesting.RunStoreTests(t, "MyStore", func() store.IStore {
//			return NewMyStore()
//		})
//	}
package testing
