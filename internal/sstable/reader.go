package sstable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ronitnanwani/docsdb/internal/storage"
)

// recordAt reads the record at virtual index position m: resolve the index
// entry from the right .bin chunk, then decode the record from the .txt
// chunk it points into.
func (t *SSTable) recordAt(m int) (storage.Record, error) {
	chunk, offset, err := readIndexEntry(t.dir, m, t.indexPerChunk)
	if err != nil {
		return storage.Record{}, err
	}

	return readRecordAt(t.dir, chunk, offset)
}

// readIndexEntry resolves virtual index position m to a (chunk, offset)
// pair by seeking into index chunk m / perChunk.
func readIndexEntry(dir string, m, perChunk int) (uint32, uint32, error) {
	name := filepath.Join(dir, fmt.Sprintf("%d.bin", m/perChunk))
	in, err := os.Open(name)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open index chunk %s: %w", name, err)
	}
	defer in.Close()

	pos := int64(m%perChunk) * storage.IndexEntrySize
	if _, err := in.Seek(pos, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("could not seek to entry %d in index chunk %s: %w", m, name, err)
	}

	chunk, offset, err := storage.Codec{}.DecodeIndexEntry(in)
	if err != nil {
		return 0, 0, fmt.Errorf("index chunk %s is corrupt at entry %d: %w", name, m, err)
	}

	return chunk, offset, nil
}

// readRecordAt reads one record from a data chunk starting at the given
// offset, consuming bytes until two delimiters have been seen.
func readRecordAt(dir string, chunk, offset uint32) (storage.Record, error) {
	name := filepath.Join(dir, fmt.Sprintf("%d.txt", chunk))
	in, err := os.Open(name)
	if err != nil {
		return storage.Record{}, fmt.Errorf("could not open data chunk %s: %w", name, err)
	}
	defer in.Close()

	if _, err := in.Seek(int64(offset), io.SeekStart); err != nil {
		return storage.Record{}, fmt.Errorf("could not seek to offset %d in data chunk %s: %w", offset, name, err)
	}

	reader := bufio.NewReader(in)
	var raw strings.Builder
	delims := 0
	for delims < 2 {
		b, err := reader.ReadByte()
		if err != nil {
			return storage.Record{}, fmt.Errorf("record at offset %d in data chunk %s is truncated: %w", offset, name, err)
		}
		raw.WriteByte(b)
		if b == storage.Delimiter {
			delims++
		}
	}

	return storage.Codec{}.DecodePair(raw.String())
}

// ReadAll recovers the table's full sorted key-value sequence by scanning
// its data chunks in order. Used as compaction input.
func (t *SSTable) ReadAll() ([]storage.Record, error) {
	codec := storage.Codec{}
	var records []storage.Record

	for i := 0; ; i++ {
		name := filepath.Join(t.dir, fmt.Sprintf("%d.txt", i))
		data, err := os.ReadFile(name)
		if os.IsNotExist(err) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("could not read data chunk %s: %w", name, err)
		}

		records = append(records, codec.SplitChunk(data)...)
	}

	return records, nil
}
