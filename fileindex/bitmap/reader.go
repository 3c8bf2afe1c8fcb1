package bitmap

import (
	"fmt"
	"io"

	"github.com/paimon-io/paimon-fileindex-go/fileindex"
	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// IndexKind is the directory string this reader factory registers under
// (spec §3.4: index_kind strings like "bitmap").
const IndexKind = "bitmap"

func init() {
	fileindex.Register(IndexKind, func(ft literal.FieldType, offset, length int32, src io.ReaderAt) (fileindex.Reader, error) {
		return Open(ft, offset, length, src)
	})
}

// Reader answers leaf predicates against a bitmap-index body (spec §4.1).
// Per-literal bitmaps are deserialized lazily on first touch and cached by
// encoded key, matching "results are cached in a per-reader map keyed by
// literal" in spec §4.1.
type Reader struct {
	fileindex.BaseReader
	fieldType literal.FieldType
	src       io.ReaderAt
	blobStart int32
	blobLen   int32

	meta       Meta
	bodyStart  int32 // absolute offset of the bitmap-body region
	v1Header   bool  // true if meta is MetaV1 (offsets relative to bodyStart, unlike MetaV2's absolute bodyStart)

	cache map[string]*roaringwrap.Bitmap
}

var _ fileindex.Visitor = (*Reader)(nil)

// Open lazily parses the head of a bitmap-index blob located at
// [offset, offset+length) within src. The version byte selects V1 or V2.
func Open(fieldType literal.FieldType, offset, length int32, src io.ReaderAt) (*Reader, error) {
	var versionByte [1]byte
	if _, err := src.ReadAt(versionByte[:], int64(offset)); err != nil {
		return nil, fmt.Errorf("reading bitmap index version byte: %w", err)
	}
	r := &Reader{
		fieldType: fieldType,
		src:       src,
		blobStart: offset,
		blobLen:   length,
		cache:     make(map[string]*roaringwrap.Bitmap),
	}
	switch versionByte[0] {
	case 1:
		sr := io.NewSectionReader(src, int64(offset)+1, int64(length)-1)
		meta, err := DeserializeV1(fieldType, length-1, sr)
		if err != nil {
			return nil, err
		}
		r.meta = meta
		r.bodyStart = offset + 1 + meta.HeaderBytes()
		r.v1Header = true
	case 2:
		meta, err := DeserializeV2(fieldType, offset, src)
		if err != nil {
			return nil, err
		}
		r.meta = meta
		r.bodyStart = meta.BodyStart()
		r.v1Header = false
	default:
		return nil, fmt.Errorf("unsupported bitmap index version byte %d", versionByte[0])
	}
	return r, nil
}

func (r *Reader) Close() error { return nil }

func (r *Reader) Evaluate(p predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Dispatch(r, p)
}

// bitmapFor returns the cached or lazily-deserialized bitmap for one
// literal, or an empty bitmap if the literal has no dictionary entry.
func (r *Reader) bitmapFor(l literal.Literal) (*roaringwrap.Bitmap, error) {
	key, err := keyString(r.fieldType, l)
	if l.IsNull() {
		key = "\x00null"
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}
	entry, err := r.meta.FindEntry(l)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		bm := roaringwrap.New()
		r.cache[key] = bm
		return bm, nil
	}
	var bm *roaringwrap.Bitmap
	if entry.Length == -1 {
		bm = roaringwrap.New()
		bm.Add(uint32(-1 - entry.Offset))
	} else {
		// V1's bodyStart already folds in the header length, and V2's
		// bodyStart is the absolute bitmap-bodies region start, so both
		// reduce to the same "bodyStart + offset" computation.
		abs := r.bodyStart + entry.Offset
		buf := make([]byte, entry.Length)
		if _, err := r.src.ReadAt(buf, int64(abs)); err != nil {
			return nil, fmt.Errorf("reading bitmap body for entry: %w", err)
		}
		bm, err = roaringwrap.Deserialize(buf)
		if err != nil {
			return nil, fmt.Errorf("deserializing bitmap body: %w", err)
		}
	}
	r.cache[key] = bm
	return bm, nil
}

func (r *Reader) visitIn(lits []literal.Literal) (fileindex.Result, error) {
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		bitmaps := make([]*roaringwrap.Bitmap, 0, len(lits))
		for _, l := range lits {
			bm, err := r.bitmapFor(l)
			if err != nil {
				return nil, err
			}
			bitmaps = append(bitmaps, bm)
		}
		return roaringwrap.FastUnion(bitmaps...), nil
	}), nil
}

// VisitEqual = VisitIn([l]) per spec §4.1.
func (r *Reader) VisitEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	return r.visitIn(p.Literals)
}

func (r *Reader) VisitIn(p predicate.LeafPredicate) (fileindex.Result, error) {
	return r.visitIn(p.Literals)
}

// VisitNotIn computes ¬VisitIn(literals) ∩ ¬null_bitmap: flip the union
// against [0, row_count) then subtract nulls, so NOT_IN never includes
// null-valued rows (spec §4.1, §8.1 "Null semantics").
func (r *Reader) VisitNotIn(p predicate.LeafPredicate) (fileindex.Result, error) {
	return fileindex.Bitmap(func() (*roaringwrap.Bitmap, error) {
		bitmaps := make([]*roaringwrap.Bitmap, 0, len(p.Literals))
		for _, l := range p.Literals {
			bm, err := r.bitmapFor(l)
			if err != nil {
				return nil, err
			}
			bitmaps = append(bitmaps, bm)
		}
		union := roaringwrap.FastUnion(bitmaps...)
		flipped := union.Flip(0, uint64(r.meta.RowCount()))
		nullBm, err := r.bitmapFor(literal.Null(r.fieldType))
		if err != nil {
			return nil, err
		}
		return flipped.AndNot(nullBm), nil
	}), nil
}

// VisitNotEqual = VisitNotIn([l]) per spec §4.1.
func (r *Reader) VisitNotEqual(p predicate.LeafPredicate) (fileindex.Result, error) {
	return r.VisitNotIn(p)
}

// VisitIsNull = VisitIn([null]).
func (r *Reader) VisitIsNull(predicate.LeafPredicate) (fileindex.Result, error) {
	return r.visitIn([]literal.Literal{literal.Null(r.fieldType)})
}

// VisitIsNotNull = VisitNotIn([null]).
func (r *Reader) VisitIsNotNull(p predicate.LeafPredicate) (fileindex.Result, error) {
	synthetic := p
	synthetic.Literals = []literal.Literal{literal.Null(r.fieldType)}
	return r.VisitNotIn(synthetic)
}
