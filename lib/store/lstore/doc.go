// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - One mutex guarding every operation (no reader/writer distinction)
//   - Batched deletes with an exact count of removed keys
//   - Operation statistics kept in a go-metrics registry per store
//
// Thread Safety:
//
//	Get, Set and Delete acquire the same mutex for their entire duration. No
//	operation can observe a partially applied concurrent mutation, and a Delete
//	over many keys reports a count that is consistent with a single view of the
//	map. The store never calls back into itself or other components while the
//	mutex is held, so it cannot deadlock.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//
//	_ = s.Set("a", "1")
//	value, found, _ := s.Get("a")      // "1", true
//	count, _ := s.Delete([]string{"a", "b"}) // 1
//
// Suitable Use Cases:
//
//	The local store is ideal for:
//	- Ephemeral data that doesn't need to survive process restarts
//	- Single-node deployments
//	- Testing and development environments
package lstore
