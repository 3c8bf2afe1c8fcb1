// Package roaringwrap wraps github.com/RoaringBitmap/roaring/v2 with the
// exact surface the rest of the file-index engine needs (spec §4.4): no
// example repo in the retrieved corpus depends on a roaring-bitmap library
// directly, so this dependency is new relative to the teacher — see
// DESIGN.md for the justification. Everything else in this module reaches
// row-id sets only through this package, never the upstream library
// directly, so the dependency boundary stays in one place.
package roaringwrap

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is a mutable set of non-negative 32-bit row-ids.
type Bitmap struct {
	bm *roaring.Bitmap
}

func New() *Bitmap { return &Bitmap{bm: roaring.New()} }

func FromSlice(ids []uint32) *Bitmap {
	return &Bitmap{bm: roaring.BitmapOf(ids...)}
}

func (b *Bitmap) Add(x uint32) { b.bm.Add(x) }

// AddRange adds every id in the half-open range [lo, hi).
func (b *Bitmap) AddRange(lo, hi uint64) { b.bm.AddRange(lo, hi) }

func (b *Bitmap) Contains(x uint32) bool { return b.bm.Contains(x) }

func (b *Bitmap) Cardinality() uint64 { return b.bm.GetCardinality() }

func (b *Bitmap) IsEmpty() bool { return b.bm.IsEmpty() }

func (b *Bitmap) Clone() *Bitmap { return &Bitmap{bm: b.bm.Clone()} }

// And returns a new bitmap holding the intersection of b and o.
func (b *Bitmap) And(o *Bitmap) *Bitmap { return &Bitmap{bm: roaring.And(b.bm, o.bm)} }

// Or returns a new bitmap holding the union of b and o.
func (b *Bitmap) Or(o *Bitmap) *Bitmap { return &Bitmap{bm: roaring.Or(b.bm, o.bm)} }

// AndNot returns a new bitmap holding the elements of b not present in o.
func (b *Bitmap) AndNot(o *Bitmap) *Bitmap { return &Bitmap{bm: roaring.AndNot(b.bm, o.bm)} }

func (b *Bitmap) AndInPlace(o *Bitmap) { b.bm.And(o.bm) }
func (b *Bitmap) OrInPlace(o *Bitmap)  { b.bm.Or(o.bm) }

// FastUnion computes the n-ary union of bitmaps in time linear in total
// cardinality, matching the C++ source's FastUnion helper used to fold many
// per-literal bitmaps from VisitIn/VisitNotIn.
func FastUnion(bitmaps ...*Bitmap) *Bitmap {
	rbs := make([]*roaring.Bitmap, len(bitmaps))
	for i, b := range bitmaps {
		rbs[i] = b.bm
	}
	return &Bitmap{bm: roaring.FastOr(rbs...)}
}

// Flip returns a new bitmap holding b complemented over the half-open range
// [lo, hi); b itself is unchanged.
func (b *Bitmap) Flip(lo, hi uint64) *Bitmap {
	return &Bitmap{bm: roaring.FlipInt(b.bm, int(lo), int(hi))}
}

// ToArray materializes every row-id, ascending.
func (b *Bitmap) ToArray() []uint32 { return b.bm.ToArray() }

// Iterator returns a forward iterator over row-ids, ascending.
func (b *Bitmap) Iterator() roaring.IntPeekable { return b.bm.Iterator() }

// EqualOrLarger returns an iterator positioned so that its next Next()
// yields the first element >= k, or an exhausted iterator if none exists.
func (b *Bitmap) EqualOrLarger(k uint32) roaring.IntPeekable {
	it := b.bm.Iterator()
	it.AdvanceIfNeeded(k)
	return it
}

// Serialize writes the bitmap in roaring's own portable little-endian frame
// format (spec §6: "little endian by that library's own rules").
func (b *Bitmap) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.bm.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize parses the portable roaring frame produced by Serialize.
func Deserialize(data []byte) (*Bitmap, error) {
	bm := roaring.New()
	if _, err := bm.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &Bitmap{bm: bm}, nil
}

// Equals reports whether two bitmaps contain the same elements.
func (b *Bitmap) Equals(o *Bitmap) bool { return b.bm.Equals(o.bm) }
