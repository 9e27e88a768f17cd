// Package registry maintains the ordered list of live SSTables. Slot 0 is
// the oldest table; flushes append at the tail. Slots go empty only as an
// intermediate state of compaction, which is the only thing that ever
// shrinks the list.
package registry

import (
	"fmt"
	"sync"

	"github.com/ronitnanwani/docsdb/internal/sstable"
	"github.com/ronitnanwani/docsdb/internal/storage"
)

// slot holds either a live table or the empty marker. An explicit struct
// rather than a bare *SSTable in the list keeps the empty state visible at
// the type level.
type slot struct {
	table *sstable.SSTable
}

func (s slot) empty() bool {
	return s.table == nil
}

// Registry is the process-wide table list. All mutation is serialized by a
// single mutex; readers hold it across an entire lookup walk, which keeps
// table reclamation safe without reference counting.
type Registry struct {
	lock  sync.Mutex
	slots []slot
}

// TailPair captures the two live tail slots claimed for a merge. The table
// handles are captured under the registry lock; their folder names and key
// counts can be read afterwards because tables are immutable.
type TailPair struct {
	LL    int
	RR    int
	Older *sstable.SSTable
	Newer *sstable.SSTable
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Append pushes a freshly built table at the tail (newest position).
func (r *Registry) Append(t *sstable.SSTable) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.slots = append(r.slots, slot{table: t})
}

// Len returns the current slot count, empty slots included.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.slots)
}

// Snapshot returns the live tables newest-first.
func (r *Registry) Snapshot() []*sstable.SSTable {
	r.lock.Lock()
	defer r.lock.Unlock()

	tables := make([]*sstable.SSTable, 0, len(r.slots))
	for i := len(r.slots) - 1; i >= 0; i-- {
		if !r.slots[i].empty() {
			tables = append(tables, r.slots[i].table)
		}
	}
	return tables
}

// Find walks the live tables newest-first and returns the first hit. The
// walk runs under the registry lock so compaction cannot reclaim a table
// out from under it; this blocks compaction publish during long searches,
// which is the accepted cost of the simple discipline.
func (r *Registry) Find(key string) (bool, string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i := len(r.slots) - 1; i >= 0; i-- {
		if r.slots[i].empty() {
			continue
		}

		found, value, err := r.slots[i].table.Find(key)
		if err != nil {
			return false, "", err
		}
		if found {
			return true, value, nil
		}
	}

	return false, storage.Tombstone, nil
}

// ClaimTailPair inspects the two tail slots under the lock. If either is
// empty it performs the structural fix (pop trailing empties, or slide a
// live tail down into the empty slot below it) and reports no claim. Only
// when both tail slots are live does it return them for merging.
func (r *Registry) ClaimTailPair() (TailPair, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.slots) < 2 {
		return TailPair{}, false
	}

	rr := len(r.slots) - 1
	ll := rr - 1

	if r.slots[rr].empty() {
		r.slots = r.slots[:rr]
		if r.slots[ll].empty() {
			r.slots = r.slots[:ll]
		}
		return TailPair{}, false
	}

	if r.slots[ll].empty() {
		r.slots[ll] = r.slots[rr]
		r.slots = r.slots[:rr]
		return TailPair{}, false
	}

	return TailPair{
		LL:    ll,
		RR:    rr,
		Older: r.slots[ll].table,
		Newer: r.slots[rr].table,
	}, true
}

// Publish installs the merged table in place of a claimed tail pair. The
// former tables' folders are removed and the replacement is built — into the
// older table's folder, preserving slot identity — all under the registry
// lock, so no reader can observe the directories mid-swap. A concurrent
// flush may have grown the list; the claimed indices stay valid because
// appends never move existing slots.
func (r *Registry) Publish(pair TailPair, build func(dir string) (*sstable.SSTable, error)) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	dir := pair.Older.Dir()
	if err := pair.Older.Remove(); err != nil {
		return fmt.Errorf("could not reclaim older sstable: %w", err)
	}
	if err := pair.Newer.Remove(); err != nil {
		return fmt.Errorf("could not reclaim newer sstable: %w", err)
	}

	merged, err := build(dir)
	if err != nil {
		return fmt.Errorf("could not build merged sstable in %s: %w", dir, err)
	}

	r.slots[pair.LL] = slot{table: merged}
	r.slots[pair.RR] = slot{}
	return nil
}
