package bsi

import (
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/fileindex"
	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// IndexKind is the directory string this reader factory registers under.
const IndexKind = "bsi"

func init() {
	fileindex.Register(IndexKind, func(ft literal.FieldType, offset, length int32, src io.ReaderAt) (fileindex.Reader, error) {
		return Open(ft, offset, length, src)
	})
}

// ValueMapper widens a non-null literal to the int64 domain the bit-sliced
// index stores values in (spec §4.3: TINYINT/SMALLINT/INT/DATE/BIGINT widen
// directly, TIMESTAMP widens to millis or micros depending on precision).
type ValueMapper func(l literal.Literal) (int64, error)

// ValueMapperFor returns the mapper for a field type, or an error for types
// the BSI index does not support.
func ValueMapperFor(t literal.FieldType) (ValueMapper, error) {
	switch t {
	case literal.TINYINT, literal.SMALLINT, literal.INT, literal.DATE, literal.BIGINT:
		return func(l literal.Literal) (int64, error) { return l.AsInt64() }, nil
	case literal.TIMESTAMP:
		return func(l literal.Literal) (int64, error) {
			if l.IsNull() {
				return 0, fmt.Errorf("literal cannot be null when mapping a BSI index value")
			}
			ts := l.TimestampValue()
			if ts.Precision <= 3 {
				return ts.Millisecond, nil
			}
			return ts.Millisecond*1000 + ts.NanoOfMillisecond/1000, nil
		}, nil
	default:
		return nil, fmt.Errorf("BitSliceIndexBitmapFileIndex only supports TINYINT/SMALLINT/INT/BIGINT/DATE/TIMESTAMP")
	}
}

// Reader answers range and equality predicates against a bit-sliced index
// body, split into a positive and a negative RoaringBitmap so every slice
// comparison stays sign-free (spec §4.3).
type Reader struct {
	fileindex.BaseReader
	rowNumber int32
	mapper    ValueMapper
	positive  *RoaringBitmap
	negative  *RoaringBitmap
}

var _ fileindex.Visitor = (*Reader)(nil)

// Open reads the fixed head (version, row_number, has_positive[,
// positive body], has_negative[, negative body]) per
// original_source/bit_slice_index_bitmap_file_index.cpp.
func Open(fieldType literal.FieldType, offset, length int32, src io.ReaderAt) (*Reader, error) {
	sr := io.NewSectionReader(src, int64(offset), int64(length))
	var versionByte [1]byte
	if _, err := io.ReadFull(sr, versionByte[:]); err != nil {
		return nil, fmt.Errorf("reading bsi index version: %w", err)
	}
	if int8(versionByte[0]) > version1 {
		return nil, fmt.Errorf("read bsi index file fail, do not support version %d, please update plugin version", versionByte[0])
	}
	rowNumber, err := readInt32(sr)
	if err != nil {
		return nil, fmt.Errorf("reading bsi index row_number: %w", err)
	}
	hasPositive, err := readBool(sr)
	if err != nil {
		return nil, fmt.Errorf("reading bsi index has_positive: %w", err)
	}
	positive := Empty()
	if hasPositive {
		positive, err = Create(sr)
		if err != nil {
			return nil, fmt.Errorf("reading bsi index positive: %w", err)
		}
	}
	hasNegative, err := readBool(sr)
	if err != nil {
		return nil, fmt.Errorf("reading bsi index has_negative: %w", err)
	}
	negative := Empty()
	if hasNegative {
		negative, err = Create(sr)
		if err != nil {
			return nil, fmt.Errorf("reading bsi index negative: %w", err)
		}
	}
	mapper, err := ValueMapperFor(fieldType)
	if err != nil {
		return nil, err
	}
	return &Reader{
		rowNumber: rowNumber,
		mapper:    mapper,
		positive:  positive,
		negative:  negative,
	}, nil
}

func (r *Reader) Close() error { return nil }

func (r *Reader) Evaluate(p predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Dispatch(r, p)
}

func (r *Reader) equalOne(l literal.Literal) (*roaringwrap.Bitmap, error) {
	value, err := r.mapper(l)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return r.negative.Equal(-value)
	}
	return r.positive.Equal(value)
}

func (r *Reader) VisitGreaterThan(p predicate.LeafPredicate) (fileindex.Result, error) {
	l := p.Literals[0]
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		value, err := r.mapper(l)
		if err != nil {
			return nil, err
		}
		if value >= 0 {
			return r.positive.GreaterThan(value)
		}
		b1, err := r.negative.LessThan(-value)
		if err != nil {
			return nil, err
		}
		return b1.Or(r.positive.IsNotNull()), nil
	}), nil
}

func (r *Reader) VisitGreaterOrEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	l := p.Literals[0]
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		value, err := r.mapper(l)
		if err != nil {
			return nil, err
		}
		if value >= 0 {
			return r.positive.GreaterOrEqual(value)
		}
		b1, err := r.negative.LessOrEqual(-value)
		if err != nil {
			return nil, err
		}
		return b1.Or(r.positive.IsNotNull()), nil
	}), nil
}

func (r *Reader) VisitLessThan(p predicate.LeafPredicate) (fileindex.Result, error) {
	l := p.Literals[0]
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		value, err := r.mapper(l)
		if err != nil {
			return nil, err
		}
		if value < 0 {
			return r.negative.GreaterThan(-value)
		}
		b1, err := r.positive.LessThan(value)
		if err != nil {
			return nil, err
		}
		return b1.Or(r.negative.IsNotNull()), nil
	}), nil
}

func (r *Reader) VisitLessOrEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	l := p.Literals[0]
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		value, err := r.mapper(l)
		if err != nil {
			return nil, err
		}
		if value < 0 {
			return r.negative.GreaterOrEqual(-value)
		}
		b1, err := r.positive.LessOrEqual(value)
		if err != nil {
			return nil, err
		}
		return b1.Or(r.negative.IsNotNull()), nil
	}), nil
}

func (r *Reader) VisitEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	return r.VisitIn(p)
}

func (r *Reader) VisitNotEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	return r.VisitNotIn(p)
}

func (r *Reader) VisitIn(p predicate.LeafPredicate) (fileindex.Result, error) {
	lits := p.Literals
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		bitmaps := make([]*roaringwrap.Bitmap, 0, len(lits))
		for _, l := range lits {
			bm, err := r.equalOne(l)
			if err != nil {
				return nil, err
			}
			bitmaps = append(bitmaps, bm)
		}
		return roaringwrap.FastUnion(bitmaps...), nil
	}), nil
}

func (r *Reader) VisitNotIn(p predicate.LeafPredicate) (fileindex.Result, error) {
	lits := p.Literals
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		ebm := r.positive.IsNotNull().Or(r.negative.IsNotNull())
		bitmaps := make([]*roaringwrap.Bitmap, 0, len(lits))
		for _, l := range lits {
			bm, err := r.equalOne(l)
			if err != nil {
				return nil, err
			}
			bitmaps = append(bitmaps, bm)
		}
		in := roaringwrap.FastUnion(bitmaps...)
		return ebm.AndNot(in), nil
	}), nil
}

func (r *Reader) VisitIsNull(predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		notNull := r.positive.IsNotNull().Or(r.negative.IsNotNull())
		return notNull.Flip(0, uint64(r.rowNumber)), nil
	}), nil
}

func (r *Reader) VisitIsNotNull(predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		return r.positive.IsNotNull().Or(r.negative.IsNotNull()), nil
	}), nil
}

func readInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
}

func readBool(r io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return false, err
	}
	return b[0] != 0, nil
}
