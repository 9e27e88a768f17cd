// Package docsdb is an embeddable key-value store based on LSM-tree
// architecture, speaking a minimal subset of the RESP-2 wire protocol when
// run as a server.
//
// Writes land in an in-memory AVL memtable and are periodically flushed to
// immutable on-disk SSTables, each carrying a bloom filter and a two-level
// index. A background compactor merges the two newest tables to bound their
// count. Deletes are tombstone writes; the store is volatile beyond the
// process lifetime.
//
// Example usage:
//
//	db, err := docsdb.Open(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Set("key", "value"); err != nil {
//		log.Printf("Set failed: %v", err)
//	}
//
//	value, found, err := db.Get("key")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if found {
//		fmt.Printf("Value: %s\n", value)
//	}
package docsdb

import (
	"github.com/ronitnanwani/docsdb/internal/config"
	"github.com/ronitnanwani/docsdb/internal/engine"
	"github.com/ronitnanwani/docsdb/internal/storage"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config populated with default values. Re-exported
// for user convenience.
var DefaultConfig = config.DefaultConfig

// DB represents a docsdb instance. A single writer may call Set and Delete;
// Get may be called from any goroutine.
type DB struct {
	engine *engine.Engine
}

// Open creates a DB rooted at cfg.DataDir (the working directory when cfg
// is nil). Existing SSTable folders are not recovered; the store starts
// empty.
func Open(cfg *Config) (*DB, error) {
	e, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return &DB{engine: e}, nil
}

// Set writes a key-value pair, overwriting any previous value.
func (db *DB) Set(key, value string) error {
	return db.engine.Set(key, value)
}

// Get retrieves the value for a key. found is false if the key was never
// written or was deleted.
func (db *DB) Get(key string) (value string, found bool, err error) {
	value, err = db.engine.Get(key)
	if err != nil {
		return "", false, err
	}
	if value == storage.Tombstone {
		return "", false, nil
	}
	return value, true, nil
}

// Delete removes the key from the store.
func (db *DB) Delete(key string) error {
	return db.engine.Delete(key)
}

// StartCompaction spawns the background compaction task. Non-blocking and
// idempotent.
func (db *DB) StartCompaction() {
	db.engine.StartCompaction()
}

// Close stops background work. The data directory is left in place.
func (db *DB) Close() error {
	return db.engine.Close()
}
