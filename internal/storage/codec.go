package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Responsible for encoding and decoding data sent to and retrieved
// from disk.
//
// Data chunk record format: key + delimiter + value + delimiter, plain text.
// Index entry format: two little-endian uint32s, the data chunk id and the
// byte offset of the record within that chunk. Little-endian is fixed
// regardless of host so .bin files are portable.
type Codec struct{}

// IndexEntrySize is the encoded size of a single index entry in bytes.
const IndexEntrySize = 8

// EncodePair encodes a key-value pair into its data chunk representation.
func (c Codec) EncodePair(key, value string) string {
	return key + string(Delimiter) + value + string(Delimiter)
}

// DecodePair decodes a single record as read from a data chunk. The input
// must contain both delimiters; anything short of that is a corruption of
// the chunk.
func (c Codec) DecodePair(data string) (Record, error) {
	first := -1
	second := -1
	for i := 0; i < len(data); i++ {
		if data[i] == Delimiter {
			if first == -1 {
				first = i
			} else {
				second = i
				break
			}
		}
	}

	if second == -1 {
		return Record{}, fmt.Errorf("record %q is missing its second delimiter", data)
	}

	return Record{Key: data[:first], Value: data[first+1 : second]}, nil
}

// SplitChunk splits the full contents of a data chunk into records. Tokens
// pair up key then value; a trailing key with no value decodes as a
// tombstone.
func (c Codec) SplitChunk(data []byte) []Record {
	var tokens []string
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == Delimiter {
			tokens = append(tokens, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		tokens = append(tokens, string(data[start:]))
	}

	records := make([]Record, 0, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		value := Tombstone
		if i+1 < len(tokens) {
			value = tokens[i+1]
		}
		records = append(records, Record{Key: tokens[i], Value: value})
	}
	return records
}

// EncodeIndexEntry encodes a (data chunk id, byte offset) pair.
func (c Codec) EncodeIndexEntry(chunk, offset uint32) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := binary.Write(&buf, binary.LittleEndian, chunk); err != nil {
		return nil, fmt.Errorf("failed to encode index entry chunk id: %w", err)
	}

	if err := binary.Write(&buf, binary.LittleEndian, offset); err != nil {
		return nil, fmt.Errorf("failed to encode index entry offset: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeIndexEntry reads a single index entry from the reader. A short read
// means the index chunk is corrupt.
func (c Codec) DecodeIndexEntry(r io.Reader) (chunk uint32, offset uint32, err error) {
	if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
		return 0, 0, fmt.Errorf("failed to decode index entry chunk id: %w", err)
	}

	if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
		return 0, 0, fmt.Errorf("failed to decode index entry offset: %w", err)
	}

	return chunk, offset, nil
}
