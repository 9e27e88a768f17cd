// Package compaction runs the background task that keeps the SSTable
// registry bounded: whenever the registry outgrows its trigger length, the
// two tables at the tail (the newest end) are merged into one, collapsing
// duplicate keys between those two generations.
package compaction

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ronitnanwani/docsdb/internal/config"
	"github.com/ronitnanwani/docsdb/internal/registry"
	"github.com/ronitnanwani/docsdb/internal/sstable"
)

// Compactor owns the background merge loop. Start is idempotent; Stop shuts
// the loop down, which the reference design never does but tests need.
type Compactor struct {
	reg   *registry.Registry
	clock *Clock
	cfg   *config.Config

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// New returns a compactor for the given registry, paced by the given clock.
func New(reg *registry.Registry, clock *Clock, cfg *config.Config) *Compactor {
	return &Compactor{
		reg:   reg,
		clock: clock,
		cfg:   cfg,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start spawns the compaction loop. Calling it again is a no-op.
func (c *Compactor) Start() {
	c.startOnce.Do(func() {
		log.Debug("starting compaction loop")
		go c.run()
	})
}

// Stop terminates the loop and waits for the in-flight iteration to finish.
// Safe to call even if Start was never called.
func (c *Compactor) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)

		// If the loop was never started nothing will close done for us
		c.startOnce.Do(func() {
			close(c.done)
		})
	})
	<-c.done
}

func (c *Compactor) run() {
	defer close(c.done)

	for {
		if !c.sleep() {
			return
		}

		if c.reg.Len() <= c.cfg.CompactTrigger {
			continue
		}

		if err := c.compactOnce(); err != nil {
			// Merge input or output could not be processed. Wrong data
			// must not be served, so this is the end of the line.
			log.Panicf("compaction failed: %v", err)
		}
	}
}

// sleep waits out the current clock interval. Returns false if the
// compactor was stopped while waiting.
func (c *Compactor) sleep() bool {
	timer := time.NewTimer(c.clock.Interval())
	defer timer.Stop()

	select {
	case <-c.stop:
		return false
	case <-timer.C:
		return true
	}
}

// compactOnce performs a single compaction step: claim the two live tail
// slots, read and merge their contents outside the registry lock, then
// publish the merged table into the older slot. If the tail held empty
// slots the claim performs the structural fix instead and we simply wait
// for the next iteration.
func (c *Compactor) compactOnce() error {
	pair, ok := c.reg.ClaimTailPair()
	if !ok {
		return nil
	}

	log.Debugf("merging sstables %s (%d keys) and %s (%d keys)",
		pair.Older.Dir(), pair.Older.NumKeys(), pair.Newer.Dir(), pair.Newer.NumKeys())

	newer, err := pair.Newer.ReadAll()
	if err != nil {
		return fmt.Errorf("could not read newer sstable for merge: %w", err)
	}

	older, err := pair.Older.ReadAll()
	if err != nil {
		return fmt.Errorf("could not read older sstable for merge: %w", err)
	}

	merged := sstable.Merge(newer, older)

	err = c.reg.Publish(pair, func(dir string) (*sstable.SSTable, error) {
		return sstable.Create(merged, dir, c.cfg)
	})
	if err != nil {
		return err
	}

	log.Debugf("published merged sstable %s with %d keys", pair.Older.Dir(), len(merged))
	return nil
}
