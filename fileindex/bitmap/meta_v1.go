package bitmap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// MetaV1 is the monolithic-dictionary layout of spec §3.5, grounded on
// original_source/bitmap_file_index_meta_v1.cpp: entries carry no explicit
// length field, a reader reconstructs entry i's body length from the gap to
// entry i+1's offset (or to end-of-blob for the last entry).
type MetaV1 struct {
	fieldType   literal.FieldType
	rowCount    int32
	hasNull     bool
	entries     map[string]Entry
	nullEntry   Entry
	headerBytes int32 // bytes consumed by the head region, relative to this index's own blob start
	totalLength int32
}

var _ Meta = (*MetaV1)(nil)

func (m *MetaV1) RowCount() int32 { return m.rowCount }

func (m *MetaV1) FindEntry(id literal.Literal) (*Entry, error) {
	if id.IsNull() {
		if m.hasNull {
			e := m.nullEntry
			return &e, nil
		}
		return nil, nil
	}
	key, err := keyString(m.fieldType, id)
	if err != nil {
		return nil, err
	}
	if e, ok := m.entries[key]; ok {
		return &e, nil
	}
	return nil, nil
}

// countingReader tracks bytes consumed so Deserialize can compute the
// header-region size (body_start - start in the C++ source) without a
// separate seek.
type countingReader struct {
	r io.Reader
	n int32
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int32(n)
	return n, err
}

// DeserializeV1 parses a V1 head per spec §3.5 from r (positioned at the
// start of this index's own blob) and totalLength (the full length of this
// index's body+head, used to derive the last non-singleton entry's
// length).
func DeserializeV1(fieldType literal.FieldType, totalLength int32, r io.Reader) (*MetaV1, error) {
	cr := &countingReader{r: r}
	valueReaderFn, err := valueReader(fieldType)
	if err != nil {
		return nil, err
	}

	rowCount, err := readInt32(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v1 row_count: %w", err)
	}
	nonNullCount, err := readInt32(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v1 n_non_null: %w", err)
	}
	hasNull, err := readBool(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v1 has_null: %w", err)
	}
	nullOffset := int32(-1)
	if hasNull {
		nullOffset, err = readInt32(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v1 null_offset: %w", err)
		}
	}

	nullLiteral := literal.Null(fieldType)
	entries := make(map[string]Entry, nonNullCount)

	// "last" tracks the most recently seen non-inline entry, pending a
	// closing offset from the next one; it starts out representing the
	// null entry itself when the null bitmap is non-singleton (spec §3.5:
	// a non-singleton null bitmap occupies the first body slice).
	var resolvedNullEntry *Entry
	lastIsNull := hasNull && nullOffset >= 0
	lastValue := nullLiteral
	lastOffset := nullOffset
	var lastKey string

	for i := int32(0); i < nonNullCount; i++ {
		value, err := valueReaderFn(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v1 entry %d value: %w", i, err)
		}
		offset, err := readInt32(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v1 entry %d offset: %w", i, err)
		}
		if offset >= 0 {
			if lastOffset >= 0 {
				length := offset - lastOffset
				closed := Entry{Key: lastValue, Offset: lastOffset, Length: length}
				if lastIsNull {
					resolvedNullEntry = &closed
				} else {
					entries[lastKey] = closed
				}
			}
			lastOffset = offset
			lastValue = value
			lastIsNull = false
			lastKey, err = keyString(fieldType, value)
			if err != nil {
				return nil, err
			}
		} else {
			// negative offset: inline singleton, value = -1 - offset.
			key, err := keyString(fieldType, value)
			if err != nil {
				return nil, err
			}
			entries[key] = Entry{Key: value, Offset: offset, Length: -1}
		}
	}
	if lastOffset >= 0 {
		length := totalLength - cr.n - lastOffset
		closed := Entry{Key: lastValue, Offset: lastOffset, Length: length}
		if lastIsNull {
			resolvedNullEntry = &closed
		} else {
			entries[lastKey] = closed
		}
	}

	m := &MetaV1{
		fieldType:   fieldType,
		rowCount:    rowCount,
		hasNull:     hasNull,
		entries:     entries,
		headerBytes: cr.n,
		totalLength: totalLength,
	}
	if hasNull {
		if resolvedNullEntry != nil {
			m.nullEntry = *resolvedNullEntry
		} else {
			m.nullEntry = Entry{Key: nullLiteral, Offset: nullOffset, Length: -1}
		}
	}
	return m, nil
}

// HeaderBytes reports how many bytes of this index's own blob were consumed
// by the head region; callers combine this with the blob's absolute offset
// to locate the body region for lazy bitmap reads.
func (m *MetaV1) HeaderBytes() int32 { return m.headerBytes }

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}
