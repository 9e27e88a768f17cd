package sstable

import "github.com/ronitnanwani/docsdb/internal/storage"

// Merge merges two ascending key-value sequences into a single ascending
// sequence. On key equality the record from newer wins; which parameter
// holds the newer generation is explicit in the signature, not positional
// convention. Tombstones pass through unchanged — a two-way merge cannot
// know whether an older generation still holds the key.
func Merge(newer, older []storage.Record) []storage.Record {
	merged := make([]storage.Record, 0, len(newer)+len(older))

	i, j := 0, 0
	for i < len(newer) && j < len(older) {
		if newer[i].Key < older[j].Key {
			merged = append(merged, newer[i])
			i++
		} else if newer[i].Key > older[j].Key {
			merged = append(merged, older[j])
			j++
		} else {
			merged = append(merged, newer[i])
			i++
			j++
		}
	}

	merged = append(merged, newer[i:]...)
	merged = append(merged, older[j:]...)

	return merged
}
