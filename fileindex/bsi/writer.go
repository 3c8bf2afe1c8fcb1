package bsi

import (
	"bytes"
	"encoding/binary"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// Writer buffers (row, value) pairs and builds the positive/negative
// RoaringBitmap split on SerializedBytes, since each side's Appender must
// know its min/max before the first Append (spec §4.3's writer contract).
type Writer struct {
	fieldType literal.FieldType
	mapper    ValueMapper
	rowNumber int32
	positive  []rowValue
	negative  []rowValue
}

type rowValue struct {
	rid   uint32
	value int64
}

// NewWriter builds a Writer for fieldType; it takes no options, matching
// BitSliceIndexBitmapFileIndex's empty options constructor.
func NewWriter(fieldType literal.FieldType) (*Writer, error) {
	mapper, err := ValueMapperFor(fieldType)
	if err != nil {
		return nil, err
	}
	return &Writer{fieldType: fieldType, mapper: mapper}, nil
}

// Add records one row's value; a null value only advances the row count, it
// is never represented in either slice set (spec §4.3: IS_NULL is derived
// from the complement of the existence bitmaps, not stored directly).
func (w *Writer) Add(rowNumber uint32, value literal.Literal) error {
	w.rowNumber++
	if value.IsNull() {
		return nil
	}
	v, err := w.mapper(value)
	if err != nil {
		return err
	}
	if v < 0 {
		w.negative = append(w.negative, rowValue{rid: rowNumber, value: -v})
	} else {
		w.positive = append(w.positive, rowValue{rid: rowNumber, value: v})
	}
	return nil
}

func buildSide(values []rowValue) (*RoaringBitmap, error) {
	if len(values) == 0 {
		return nil, nil
	}
	min, max := values[0].value, values[0].value
	for _, rv := range values[1:] {
		if rv.value < min {
			min = rv.value
		}
		if rv.value > max {
			max = rv.value
		}
	}
	appender := NewAppender(min, max)
	for _, rv := range values {
		if err := appender.Append(rv.rid, rv.value); err != nil {
			return nil, err
		}
	}
	return appender.Build(), nil
}

// SerializedBytes produces the on-disk body of spec §3.8: version, row
// count, then an optional positive side and an optional negative side.
func (w *Writer) SerializedBytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(version1))
	var i32 [4]byte
	binary.BigEndian.PutUint32(i32[:], uint32(w.rowNumber))
	buf.Write(i32[:])

	positive, err := buildSide(w.positive)
	if err != nil {
		return nil, err
	}
	if err := writeSide(&buf, positive); err != nil {
		return nil, err
	}
	negative, err := buildSide(w.negative)
	if err != nil {
		return nil, err
	}
	if err := writeSide(&buf, negative); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSide(buf *bytes.Buffer, side *RoaringBitmap) error {
	if side == nil {
		buf.WriteByte(0)
		return nil
	}
	buf.WriteByte(1)
	appender := &Appender{bsi: side}
	ser, err := appender.Serialize()
	if err != nil {
		return err
	}
	buf.Write(ser)
	return nil
}
