package registry

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitnanwani/docsdb/internal/config"
	"github.com/ronitnanwani/docsdb/internal/sstable"
	"github.com/ronitnanwani/docsdb/internal/storage"
)

func buildTable(t *testing.T, dataDir string, name string, records []storage.Record) *sstable.SSTable {
	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir

	table, err := sstable.Create(records, filepath.Join(dataDir, name), cfg)
	require.NoError(t, err)
	return table
}

func TestRegistry_AppendAndLen(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	assert.Equal(t, 0, reg.Len())

	reg.Append(buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}}))
	reg.Append(buildTable(t, dir, "SSTable_1", []storage.Record{{Key: "b", Value: "2"}}))

	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_SnapshotNewestFirst(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	oldest := buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}})
	newest := buildTable(t, dir, "SSTable_1", []storage.Record{{Key: "b", Value: "2"}})
	reg.Append(oldest)
	reg.Append(newest)

	tables := reg.Snapshot()
	require.Len(t, tables, 2)
	assert.Same(t, newest, tables[0])
	assert.Same(t, oldest, tables[1])
}

func TestRegistry_FindNewestWins(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	reg.Append(buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "k", Value: "old"}}))
	reg.Append(buildTable(t, dir, "SSTable_1", []storage.Record{{Key: "k", Value: "new"}}))

	found, value, err := reg.Find("k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "new", value)
}

func TestRegistry_FindMissing(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	reg.Append(buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}}))

	found, value, err := reg.Find("zzz")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, storage.Tombstone, value)
}

func TestRegistry_ClaimTailPair_TooShort(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	_, ok := reg.ClaimTailPair()
	assert.False(t, ok)

	reg.Append(buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}}))
	_, ok = reg.ClaimTailPair()
	assert.False(t, ok)
}

func TestRegistry_ClaimAndPublish(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	older := buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
	newer := buildTable(t, dir, "SSTable_1", []storage.Record{{Key: "b", Value: "20"}})
	reg.Append(older)
	reg.Append(newer)

	pair, ok := reg.ClaimTailPair()
	require.True(t, ok)
	assert.Equal(t, 0, pair.LL)
	assert.Equal(t, 1, pair.RR)
	assert.Same(t, older, pair.Older)
	assert.Same(t, newer, pair.Newer)

	olderDir := pair.Older.Dir()
	merged := sstable.Merge(
		[]storage.Record{{Key: "b", Value: "20"}},
		[]storage.Record{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
	)

	err := reg.Publish(pair, func(d string) (*sstable.SSTable, error) {
		assert.Equal(t, olderDir, d)
		return sstable.Create(merged, d, cfg)
	})
	require.NoError(t, err)

	// Still two slots: the merged table plus the empty tail marker
	assert.Equal(t, 2, reg.Len())
	require.Len(t, reg.Snapshot(), 1)

	found, value, err := reg.Find("b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "20", value)
}

func TestRegistry_ClaimTailPair_PopsEmptyTail(t *testing.T) {
	reg, _ := compactedRegistry(t)

	// Slots are now [merged, empty]; the next claim pops the empty tail
	_, ok := reg.ClaimTailPair()
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ClaimTailPair_SlidesLiveTailDown(t *testing.T) {
	reg, cfg := compactedRegistry(t)

	// Grow past the empty slot: [merged, empty, fresh]
	fresh := buildTable(t, cfg.DataDir, "SSTable_2", []storage.Record{{Key: "z", Value: "9"}})
	reg.Append(fresh)
	require.Equal(t, 3, reg.Len())

	// First claim pops nothing (tail is live, below it is empty): the
	// live tail slides down and the list shrinks by one
	_, ok := reg.ClaimTailPair()
	assert.False(t, ok)
	assert.Equal(t, 2, reg.Len())

	// Both slots are live now, so the next claim succeeds
	pair, ok := reg.ClaimTailPair()
	require.True(t, ok)
	assert.Same(t, fresh, pair.Newer)
}

// compactedRegistry returns a registry that has gone through one publish,
// leaving slots [merged, empty].
func compactedRegistry(t *testing.T) (*Registry, *config.Config) {
	reg := New()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	reg.Append(buildTable(t, dir, "SSTable_0", []storage.Record{{Key: "a", Value: "1"}}))
	reg.Append(buildTable(t, dir, "SSTable_1", []storage.Record{{Key: "b", Value: "2"}}))

	pair, ok := reg.ClaimTailPair()
	require.True(t, ok)

	err := reg.Publish(pair, func(d string) (*sstable.SSTable, error) {
		return sstable.Create([]storage.Record{
			{Key: "a", Value: "1"},
			{Key: "b", Value: "2"},
		}, d, cfg)
	})
	require.NoError(t, err)

	return reg, cfg
}

func TestRegistry_FindAcrossManyTables(t *testing.T) {
	reg := New()
	dir := t.TempDir()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key%d", i)
		reg.Append(buildTable(t, dir, fmt.Sprintf("SSTable_%d", i),
			[]storage.Record{{Key: key, Value: fmt.Sprintf("val%d", i)}}))
	}

	for i := 0; i < 5; i++ {
		found, value, err := reg.Find(fmt.Sprintf("key%d", i))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, fmt.Sprintf("val%d", i), value)
	}
}
