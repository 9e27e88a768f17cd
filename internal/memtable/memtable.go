// Package memtable implements the in-memory ordered table that receives
// writes before they are flushed to disk as SSTables.
package memtable

import (
	"sync"

	"github.com/ronitnanwani/docsdb/internal/storage"
)

// Memtable wraps the AVL tree with a read-write lock so a single writer can
// run alongside concurrent readers.
type Memtable struct {
	lock sync.RWMutex
	tree *Tree
}

// New returns an empty memtable.
func New() *Memtable {
	return &Memtable{tree: NewTree()}
}

// Insert adds or overwrites a key-value pair.
func (m *Memtable) Insert(key, value string) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.tree.Insert(key, value)
}

// Find returns the value stored under the key. A tombstone value is
// returned verbatim; distinguishing deletion from absence is the caller's
// concern.
func (m *Memtable) Find(key string) (string, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.tree.Find(key)
}

// Delete removes the key outright. Note that the engine's delete operation
// writes a tombstone via Insert instead; this removal exists for callers
// managing the table directly.
func (m *Memtable) Delete(key string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.tree.Delete(key)
}

// Size returns the current number of distinct keys.
func (m *Memtable) Size() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.tree.Size()
}

// SortedPairs drains a snapshot of the table in strictly ascending key
// order. The table itself is left untouched.
func (m *Memtable) SortedPairs() []storage.Record {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.tree.SortedPairs()
}

// Clear empties the table.
func (m *Memtable) Clear() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.tree.Clear()
}
