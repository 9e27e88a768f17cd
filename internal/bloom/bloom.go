// Package bloom implements the probabilistic membership summary attached to
// each SSTable. It answers "was this key ever inserted?" with no false
// negatives and a bounded false-positive rate, letting lookups skip tables
// without touching disk.
package bloom

import (
	"hash/fnv"
	"math"
	"strconv"
)

// Fixed table of odd-prime multipliers, one per hash function. Must hold at
// least as many entries as the derived hash count.
var multipliers = [...]uint64{
	773, 311, 563, 647, 13, 839, 317, 673, 109, 503,
	467, 827, 293, 283, 601, 61, 7, 857, 521, 419,
	809, 307, 503, 419, 367, 521, 193, 179, 113, 811,
}

// Filter is a fixed-width bloom filter over string keys.
type Filter struct {
	bits      []uint64
	width     int
	numHashes int
}

// New creates a filter with the given bit-array width and design capacity.
// The hash count is ceil((width/capacity) * ln 2), capped by the size of the
// multiplier table.
func New(width, capacity int) *Filter {
	k := int(math.Ceil(float64(width/capacity) * math.Ln2))
	if k < 1 {
		k = 1
	}
	if k > len(multipliers) {
		k = len(multipliers)
	}

	return &Filter{
		bits:      make([]uint64, (width+63)/64),
		width:     width,
		numHashes: k,
	}
}

// Insert records the key's presence. Idempotent.
func (f *Filter) Insert(key string) {
	for i := 0; i < f.numHashes; i++ {
		pos := f.position(key, i)
		f.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Exists returns true if the key may have been inserted. It never returns
// false for a key that was inserted.
func (f *Filter) Exists(key string) bool {
	for i := 0; i < f.numHashes; i++ {
		pos := f.position(key, i)
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// NumHashes returns the derived hash-function count.
func (f *Filter) NumHashes() int {
	return f.numHashes
}

// position derives the i-th bit position for a key: hash the key suffixed
// with the hash index, scale by the i-th multiplier, add the index and
// reduce modulo the array width.
func (f *Filter) position(key string, i int) uint64 {
	h := fnv.New64a()
	// fnv never errors on Write
	_, _ = h.Write([]byte(key + strconv.Itoa(i)))
	return (h.Sum64()*multipliers[i] + uint64(i)) % uint64(f.width)
}
