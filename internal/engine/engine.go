// Package engine coordinates the storage components: writes land in the
// memtable and spill into SSTables at the flush threshold; reads walk the
// memtable then the SSTable registry newest-first; a background compactor
// keeps the registry bounded.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ronitnanwani/docsdb/internal/compaction"
	"github.com/ronitnanwani/docsdb/internal/config"
	"github.com/ronitnanwani/docsdb/internal/memtable"
	"github.com/ronitnanwani/docsdb/internal/registry"
	"github.com/ronitnanwani/docsdb/internal/sstable"
	"github.com/ronitnanwani/docsdb/internal/storage"
)

// Engine is the single long-lived coordinator value. Set and Delete assume a
// single writer: the request layer must serialize them. Get is safe from any
// goroutine alongside the writer and the compactor.
type Engine struct {
	cfg       *config.Config
	memtable  *memtable.Memtable
	registry  *registry.Registry
	clock     *compaction.Clock
	compactor *compaction.Compactor
}

// New creates an engine rooted at cfg.DataDir, creating the directory if
// needed.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.FillDefaults()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create data dir %s: %w", cfg.DataDir, err)
	}

	reg := registry.New()
	clock := compaction.NewClock(cfg.MinCompactInterval, cfg.MaxCompactInterval)

	return &Engine{
		cfg:       cfg,
		memtable:  memtable.New(),
		registry:  reg,
		clock:     clock,
		compactor: compaction.New(reg, clock, cfg),
	}, nil
}

// Set writes a key-value pair. When the memtable reaches its threshold it
// is drained in sorted order into a fresh SSTable appended to the registry.
func (e *Engine) Set(key, value string) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if err := storage.ValidateValue(value); err != nil {
		return err
	}

	e.clock.Slow()
	e.memtable.Insert(key, value)

	if e.memtable.Size() >= e.cfg.MemtableMax {
		if err := e.flush(); err != nil {
			return fmt.Errorf("failed flushing memtable: %w", err)
		}
	}

	return nil
}

// Delete marks the key as deleted by writing the tombstone sentinel.
func (e *Engine) Delete(key string) error {
	return e.Set(key, storage.Tombstone)
}

// Get returns the freshest value recorded for the key. Keys never written,
// and keys whose freshest record is a deletion, report the tombstone
// sentinel; translating that into "not found" is the caller's concern. A
// non-nil error means an SSTable was found corrupt and the engine can no
// longer be trusted.
func (e *Engine) Get(key string) (string, error) {
	if value, found := e.memtable.Find(key); found {
		return value, nil
	}

	e.clock.Quicken()

	found, value, err := e.registry.Find(key)
	if err != nil {
		return "", fmt.Errorf("failed reading sstables: %w", err)
	}
	if !found {
		return storage.Tombstone, nil
	}
	return value, nil
}

// StartCompaction spawns the background compactor. Non-blocking and
// idempotent.
func (e *Engine) StartCompaction() {
	e.compactor.Start()
}

// Close stops the background compactor. On-disk state is left as is; the
// engine does not recover it on restart.
func (e *Engine) Close() error {
	e.compactor.Stop()
	return nil
}

// Registry exposes the table list for inspection by tests and tooling.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// MemtableSize returns the number of keys currently buffered in memory.
func (e *Engine) MemtableSize() int {
	return e.memtable.Size()
}

// flush drains the memtable into a new SSTable named after the current
// registry length and clears it.
func (e *Engine) flush() error {
	records := e.memtable.SortedPairs()
	dir := filepath.Join(e.cfg.DataDir, fmt.Sprintf("SSTable_%d", e.registry.Len()))

	log.Debugf("flushing %d keys to %s", len(records), dir)

	table, err := sstable.Create(records, dir, e.cfg)
	if err != nil {
		return err
	}

	e.registry.Append(table)
	e.memtable.Clear()
	return nil
}
