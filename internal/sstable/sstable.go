// Package sstable implements the immutable on-disk sorted string table. A
// table owns one folder holding text data chunks (0.txt, 1.txt, ...) and
// binary index chunks (0.bin, 1.bin, ...), plus an in-memory bloom filter
// built at construction time.
package sstable

import (
	"fmt"
	"os"

	"github.com/ronitnanwani/docsdb/internal/bloom"
	"github.com/ronitnanwani/docsdb/internal/config"
	"github.com/ronitnanwani/docsdb/internal/storage"
)

// SSTable is a handle to one on-disk table. Immutable after Create returns;
// safe for concurrent readers without synchronization.
type SSTable struct {
	dir           string
	numKeys       int
	indexPerChunk int
	filter        *bloom.Filter
}

// Create materializes a new SSTable from a key-value sequence sorted in
// strictly ascending key order. The folder is created if needed; chunk
// write failures are logged and tolerated, leaving the affected records
// unfindable.
func Create(records []storage.Record, dir string, cfg *config.Config) (*SSTable, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create sstable folder %s: %w", dir, err)
	}

	filter := bloom.New(cfg.BloomBits, cfg.BloomCapacity)
	for _, rec := range records {
		filter.Insert(rec.Key)
	}

	entries := writeDataChunks(dir, records, cfg.MaxChunkBytes)
	writeIndexChunks(dir, entries, cfg.IndexPerChunk)

	return &SSTable{
		dir:           dir,
		numKeys:       len(entries),
		indexPerChunk: cfg.IndexPerChunk,
		filter:        filter,
	}, nil
}

// Find looks up a key. The bloom filter screens out most absent keys
// without touching disk; hits binary-search the on-disk index. A missing
// key reports the tombstone sentinel as its value. A non-nil error means
// the table's files are corrupt and the result cannot be trusted.
func (t *SSTable) Find(key string) (bool, string, error) {
	if t.numKeys == 0 || !t.filter.Exists(key) {
		return false, storage.Tombstone, nil
	}

	lo, hi := 0, t.numKeys-1
	for lo <= hi {
		mid := (lo + hi) / 2

		rec, err := t.recordAt(mid)
		if err != nil {
			return false, "", fmt.Errorf("lookup in sstable %s failed: %w", t.dir, err)
		}

		if rec.Key == key {
			return true, rec.Value, nil
		} else if rec.Key > key {
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return false, storage.Tombstone, nil
}

// NumKeys returns the number of records the table indexes.
func (t *SSTable) NumKeys() int {
	return t.numKeys
}

// Dir returns the folder owned by this table.
func (t *SSTable) Dir() string {
	return t.dir
}

// Remove deletes the table's folder and everything in it. The handle must
// not be used afterwards.
func (t *SSTable) Remove() error {
	if err := os.RemoveAll(t.dir); err != nil {
		return fmt.Errorf("could not remove sstable folder %s: %w", t.dir, err)
	}
	return nil
}
