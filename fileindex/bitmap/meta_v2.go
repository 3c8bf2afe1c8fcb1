package bitmap

import (
	"fmt"
	"io"
	"sort"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// block is one fixed-size packed group of entries (spec §3.6), lazily
// deserialized on first FindEntry (mirrors BitmapIndexBlock::TryDeserialize
// in original_source/).
type block struct {
	firstKey string
	offset   int32 // offset into the index-block region

	deserialized bool
	entries      []Entry  // sorted ascending by key
	keys         []string // parallel sorted key strings, for binary search
}

// MetaV2 is the two-level sparse block-index layout of spec §3.6.
type MetaV2 struct {
	fieldType  literal.FieldType
	rowCount   int32
	hasNull    bool
	nullEntry  Entry
	blocks     []*block
	blockStart int32 // absolute offset (within the index body reader) of the index-block region
	bodyStart  int32 // absolute offset of the bitmap-body region
	src        blockReaderAt
}

var _ Meta = (*MetaV2)(nil)

func (m *MetaV2) RowCount() int32 { return m.rowCount }

// BodyStart reports the absolute offset (relative to this index's own blob)
// of the bitmap-bodies region, for lazy roaring-bitmap reads.
func (m *MetaV2) BodyStart() int32 { return m.bodyStart }

func (m *MetaV2) FindEntry(id literal.Literal) (*Entry, error) {
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
	b := m.findBlock(key)
	if b == nil {
		return nil, nil
	}
	if err := m.deserializeBlock(b); err != nil {
		return nil, err
	}
	i := sort.SearchStrings(b.keys, key)
	if i < len(b.keys) && b.keys[i] == key {
		e := b.entries[i]
		return &e, nil
	}
	return nil, nil
}

// findBlock implements BitmapFileIndexMetaV2::FindBlock: lower_bound on
// block first-keys, then step back one position unless the exact key was
// found — i.e. the greatest block whose first_key <= target.
func (m *MetaV2) findBlock(key string) *block {
	if len(m.blocks) == 0 {
		return nil
	}
	i := sort.Search(len(m.blocks), func(i int) bool { return m.blocks[i].firstKey >= key })
	if i == 0 && m.blocks[0].firstKey != key {
		return nil
	}
	if i == len(m.blocks) || m.blocks[i].firstKey != key {
		i--
	}
	return m.blocks[i]
}

// blockReaderAt is satisfied by the same io.ReaderAt the fileindex
// container passes to every reader factory.
type blockReaderAt interface {
	io.ReaderAt
}

// DeserializeV2 parses a V2 head per spec §3.6. blobOffset is this index's
// own absolute start offset within src, used to seek to each block's
// entries and, later, to bitmap bodies.
func DeserializeV2(fieldType literal.FieldType, blobOffset int32, src blockReaderAt) (*MetaV2, error) {
	sr := io.NewSectionReader(src, int64(blobOffset), 1<<62)
	cr := &countingReader{r: sr}
	version, err := readByte(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v2 version: %w", err)
	}
	if version != 2 {
		return nil, fmt.Errorf("unexpected bitmap index version %d, want 2", version)
	}
	rowCount, err := readInt32(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v2 row_count: %w", err)
	}
	if _, err := readInt32(cr); err != nil { // non_null_bitmap_number, unused by the reader
		return nil, fmt.Errorf("reading bitmap v2 non_null_bitmap_number: %w", err)
	}
	hasNull, err := readBool(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v2 has_null: %w", err)
	}
	var nullEntry Entry
	if hasNull {
		offset, err := readInt32(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v2 null_offset: %w", err)
		}
		length, err := readInt32(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v2 null_length: %w", err)
		}
		nullEntry = Entry{Key: literal.Null(fieldType), Offset: offset, Length: length}
	}
	blockCount, err := readInt32(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v2 bitmap_block_count: %w", err)
	}
	valueReaderFn, err := valueReader(fieldType)
	if err != nil {
		return nil, err
	}
	blocks := make([]*block, 0, blockCount)
	for i := int32(0); i < blockCount; i++ {
		key, err := valueReaderFn(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v2 block %d key: %w", i, err)
		}
		offset, err := readInt32(cr)
		if err != nil {
			return nil, fmt.Errorf("reading bitmap v2 block %d offset: %w", i, err)
		}
		ks, err := keyString(fieldType, key)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &block{firstKey: ks, offset: offset})
	}
	bitmapBodyOffset, err := readInt32(cr)
	if err != nil {
		return nil, fmt.Errorf("reading bitmap v2 bitmap_body_offset: %w", err)
	}

	indexBlockStart := cr.n // index blocks start right after this fixed head, relative to blobOffset
	m := &MetaV2{
		fieldType:  fieldType,
		rowCount:   rowCount,
		hasNull:    hasNull,
		nullEntry:  nullEntry,
		blocks:     blocks,
		blockStart: blobOffset + indexBlockStart,
		bodyStart:  blobOffset + indexBlockStart + bitmapBodyOffset,
		src:        src,
	}
	return m, nil
}

func (m *MetaV2) deserializeBlock(b *block) error {
	if b.deserialized {
		return nil
	}
	sr := io.NewSectionReader(m.src, int64(m.blockStart+b.offset), 1<<62)
	valueReaderFn, err := valueReader(m.fieldType)
	if err != nil {
		return err
	}
	entryCount, err := readInt32(sr)
	if err != nil {
		return fmt.Errorf("reading bitmap v2 block entry_count: %w", err)
	}
	entries := make([]Entry, 0, entryCount)
	keys := make([]string, 0, entryCount)
	for i := int32(0); i < entryCount; i++ {
		key, err := valueReaderFn(sr)
		if err != nil {
			return fmt.Errorf("reading bitmap v2 block entry %d key: %w", i, err)
		}
		offset, err := readInt32(sr)
		if err != nil {
			return fmt.Errorf("reading bitmap v2 block entry %d offset: %w", i, err)
		}
		length, err := readInt32(sr)
		if err != nil {
			return fmt.Errorf("reading bitmap v2 block entry %d length: %w", i, err)
		}
		ks, err := keyString(m.fieldType, key)
		if err != nil {
			return err
		}
		if offset < 0 {
			length = -1 // inline singleton
		}
		entries = append(entries, Entry{Key: key, Offset: offset, Length: length})
		keys = append(keys, ks)
	}
	b.entries = entries
	b.keys = keys
	b.deserialized = true
	return nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
