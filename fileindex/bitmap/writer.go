package bitmap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/options"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

const (
	// OptionVersion selects V1 (monolithic) or V2 (block-indexed, default).
	OptionVersion = "version"
	// OptionIndexBlockSize is the MemorySize-grammar option bounding V2
	// block size (spec §3.6, default 16 KiB).
	OptionIndexBlockSize = "index-block-size"

	defaultBlockSizeLimit = 16 * 1024
)

// Writer accumulates (row, value) pairs and produces the serialized body of
// spec §3.5/§3.6 (Writer contract of spec §4.1).
type Writer struct {
	fieldType literal.FieldType
	version   int
	blockSize int64

	idToBitmap map[string]*roaringwrap.Bitmap
	keyLiteral map[string]literal.Literal
	nullBitmap *roaringwrap.Bitmap
	rowCount   int32
}

// NewWriter builds a Writer from the options map of spec §4.1: {version:
// "1"|"2" (default 2), index-block-size: byte-size string}.
func NewWriter(fieldType literal.FieldType, opts map[string]string) (*Writer, error) {
	version := 2
	if v, ok := opts[OptionVersion]; ok {
		switch v {
		case "1":
			version = 1
		case "2":
			version = 2
		default:
			return nil, fmt.Errorf("invalid bitmap index version %q", v)
		}
	}
	blockSize := int64(defaultBlockSizeLimit)
	if v, ok := opts[OptionIndexBlockSize]; ok {
		parsed, err := options.ParseMemorySize(v)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", OptionIndexBlockSize, err)
		}
		blockSize = parsed
	}
	return &Writer{
		fieldType:  fieldType,
		version:    version,
		blockSize:  blockSize,
		idToBitmap: make(map[string]*roaringwrap.Bitmap),
		keyLiteral: make(map[string]literal.Literal),
		nullBitmap: roaringwrap.New(),
	}, nil
}

// Add records one row's value at the given row number; a null value goes to
// the null bitmap.
func (w *Writer) Add(rowNumber uint32, value literal.Literal) error {
	w.rowCount++
	if value.IsNull() {
		w.nullBitmap.Add(rowNumber)
		return nil
	}
	key, err := keyString(w.fieldType, value)
	if err != nil {
		return err
	}
	bm, ok := w.idToBitmap[key]
	if !ok {
		bm = roaringwrap.New()
		w.idToBitmap[key] = bm
		w.keyLiteral[key] = value
	}
	bm.Add(rowNumber)
	return nil
}

// SerializedBytes produces the body of spec §3.5 (version 1) or §3.6
// (version 2), per the writer contract of spec §4.1.
func (w *Writer) SerializedBytes() ([]byte, error) {
	if w.version == 1 {
		return w.serializeV1()
	}
	return w.serializeV2()
}

func (w *Writer) sortedKeys() []string {
	keys := make([]string, 0, len(w.idToBitmap))
	for k := range w.idToBitmap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (w *Writer) serializeV1() ([]byte, error) {
	keys := w.sortedKeys()
	type bodyEntry struct {
		key  string
		body []byte
	}
	var bodies []bodyEntry
	hasNull := w.nullBitmap.Cardinality() > 0
	nullSingleton := hasNull && w.nullBitmap.Cardinality() == 1
	nullOffset := int32(-1)

	var head bytes.Buffer
	head.WriteByte(1)
	var headBody bytes.Buffer
	headBody2 := &headBody

	writeInt32(headBody2, w.rowCount)
	writeInt32(headBody2, int32(len(keys)))
	writeBool(headBody2, hasNull)

	offset := int32(0)
	if hasNull {
		if nullSingleton {
			it := w.nullBitmap.ToArray()
			nullOffset = -1 - int32(it[0])
		} else {
			ser, err := w.nullBitmap.Serialize()
			if err != nil {
				return nil, err
			}
			nullOffset = offset
			offset += int32(len(ser))
			bodies = append(bodies, bodyEntry{key: "\x00null", body: ser})
		}
		writeInt32(headBody2, nullOffset)
	}

	valWriter, err := valueWriter(w.fieldType)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		lit := w.keyLiteral[k]
		bm := w.idToBitmap[k]
		if err := valWriter(headBody2, lit); err != nil {
			return nil, err
		}
		if bm.Cardinality() == 1 {
			arr := bm.ToArray()
			writeInt32(headBody2, -1-int32(arr[0]))
			continue
		}
		ser, err := bm.Serialize()
		if err != nil {
			return nil, err
		}
		writeInt32(headBody2, offset)
		offset += int32(len(ser))
		bodies = append(bodies, bodyEntry{key: k, body: ser})
	}

	head.Write(headBody.Bytes())
	for _, b := range bodies {
		head.Write(b.body)
	}
	return head.Bytes(), nil
}

// blockBuilder packs sorted entries into fixed-size blocks greedily, per
// BitmapFileIndexMetaV2::Serialize in original_source/.
type blockBuilder struct {
	limit   int64
	blocks  [][]string // each inner slice is the ordered keys in that block
	current []string
	size    int64
}

func (bb *blockBuilder) tryAdd(key string, entryBytes int64) bool {
	if bb.size+entryBytes > bb.limit {
		return false
	}
	bb.current = append(bb.current, key)
	bb.size += entryBytes
	return true
}

func (bb *blockBuilder) startNewBlock() {
	if len(bb.current) > 0 {
		bb.blocks = append(bb.blocks, bb.current)
	}
	bb.current = nil
	bb.size = 0
}

func (w *Writer) serializeV2() ([]byte, error) {
	keys := w.sortedKeys()

	bb := &blockBuilder{limit: w.blockSize}
	for _, k := range keys {
		lit := w.keyLiteral[k]
		kb, err := keyBytes(lit)
		if err != nil {
			return nil, err
		}
		entryBytes := int64(8 + kb)
		if entryBytes > bb.limit {
			return nil, fmt.Errorf("add entry to BitmapIndexBlock failed")
		}
		if !bb.tryAdd(k, entryBytes) {
			bb.startNewBlock()
			if !bb.tryAdd(k, entryBytes) {
				return nil, fmt.Errorf("add entry to BitmapIndexBlock failed")
			}
		}
	}
	bb.startNewBlock()

	var headBody bytes.Buffer
	writeInt32(&headBody, w.rowCount)
	writeInt32(&headBody, int32(len(keys)))
	hasNull := w.nullBitmap.Cardinality() > 0
	writeBool(&headBody, hasNull)

	var bodies [][]byte
	bodyOffset := int32(0)
	if hasNull {
		ser, err := w.nullBitmap.Serialize()
		if err != nil {
			return nil, err
		}
		writeInt32(&headBody, bodyOffset)
		writeInt32(&headBody, int32(len(ser)))
		bodyOffset += int32(len(ser))
		bodies = append(bodies, ser)
	}

	writeInt32(&headBody, int32(len(bb.blocks)))

	valWriter, err := valueWriter(w.fieldType)
	if err != nil {
		return nil, err
	}
	blockOffset := int32(0)
	blockSerializedSizes := make([]int32, len(bb.blocks))
	for bi, blk := range bb.blocks {
		firstKey := w.keyLiteral[blk[0]]
		if err := valWriter(&headBody, firstKey); err != nil {
			return nil, err
		}
		writeInt32(&headBody, blockOffset)
		size := int32(4) // entry_count
		for _, k := range blk {
			kb, err := keyBytes(w.keyLiteral[k])
			if err != nil {
				return nil, err
			}
			size += 8 + kb
		}
		blockSerializedSizes[bi] = size
		blockOffset += size
	}
	writeInt32(&headBody, blockOffset) // bitmap_body_offset, relative to index-block region start

	for bi, blk := range bb.blocks {
		writeInt32(&headBody, int32(len(blk)))
		for _, k := range blk {
			lit := w.keyLiteral[k]
			bm := w.idToBitmap[k]
			if err := valWriter(&headBody, lit); err != nil {
				return nil, err
			}
			if bm.Cardinality() == 1 {
				arr := bm.ToArray()
				writeInt32(&headBody, -1-int32(arr[0]))
				writeInt32(&headBody, 0)
				continue
			}
			ser, err := bm.Serialize()
			if err != nil {
				return nil, err
			}
			writeInt32(&headBody, bodyOffset)
			writeInt32(&headBody, int32(len(ser)))
			bodyOffset += int32(len(ser))
			bodies = append(bodies, ser)
		}
		_ = blockSerializedSizes[bi]
	}

	var out bytes.Buffer
	out.WriteByte(2)
	out.Write(headBody.Bytes())
	for _, b := range bodies {
		out.Write(b)
	}
	return out.Bytes(), nil
}
