package sstable

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/ronitnanwani/docsdb/internal/storage"
)

// indexEntry locates one record as (data chunk id, byte offset).
type indexEntry struct {
	chunk  uint32
	offset uint32
}

// writeDataChunks appends records into numbered .txt chunks, starting a new
// chunk whenever the next record would push the current one past
// maxChunkBytes. A record never spans two chunks. Returns one index entry
// per record actually written; I/O failures are logged and the affected
// records skipped.
func writeDataChunks(dir string, records []storage.Record, maxChunkBytes int) []indexEntry {
	codec := storage.Codec{}
	entries := make([]indexEntry, 0, len(records))

	chunk := 0
	size := 0
	out := openDataChunk(dir, chunk)

	for _, rec := range records {
		encoded := codec.EncodePair(rec.Key, rec.Value)

		if size+len(encoded) > maxChunkBytes && size > 0 {
			closeChunk(out)
			chunk++
			size = 0
			out = openDataChunk(dir, chunk)
		}

		if out == nil {
			// Chunk could not be created; its records become unfindable.
			continue
		}

		if _, err := out.WriteString(encoded); err != nil {
			log.Errorf("failed writing record to data chunk %d of %s: %v", chunk, dir, err)
			closeChunk(out)
			out = nil
			continue
		}

		entries = append(entries, indexEntry{chunk: uint32(chunk), offset: uint32(size)})
		size += len(encoded)
	}

	closeChunk(out)
	return entries
}

// writeIndexChunks writes the index entries into numbered .bin chunks of
// indexPerChunk entries each, little-endian pairs of uint32.
func writeIndexChunks(dir string, entries []indexEntry, indexPerChunk int) {
	codec := storage.Codec{}

	for start := 0; start < len(entries); start += indexPerChunk {
		name := filepath.Join(dir, fmt.Sprintf("%d.bin", start/indexPerChunk))
		out, err := os.Create(name)
		if err != nil {
			log.Errorf("failed creating index chunk %s: %v", name, err)
			continue
		}

		end := start + indexPerChunk
		if end > len(entries) {
			end = len(entries)
		}

		for _, entry := range entries[start:end] {
			data, err := codec.EncodeIndexEntry(entry.chunk, entry.offset)
			if err != nil {
				log.Errorf("failed encoding index entry for %s: %v", name, err)
				break
			}
			if _, err := out.Write(data); err != nil {
				log.Errorf("failed writing index chunk %s: %v", name, err)
				break
			}
		}

		closeChunk(out)
	}
}

func openDataChunk(dir string, chunk int) *os.File {
	name := filepath.Join(dir, fmt.Sprintf("%d.txt", chunk))
	out, err := os.Create(name)
	if err != nil {
		log.Errorf("failed creating data chunk %s: %v", name, err)
		return nil
	}
	return out
}

func closeChunk(f *os.File) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		log.Errorf("failed closing chunk %s: %v", f.Name(), err)
	}
}
