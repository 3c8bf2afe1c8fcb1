// Package fileindex implements the file-index container format (spec §3.4),
// the uniform FileIndexReader visitor interface, and the per-kind reader
// factory registry (spec §4.5).
package fileindex

import "github.com/paimon-io/paimon-fileindex-go/roaringwrap"

// verdict is the tag of a Result: Skip, Remain, or a lazily-produced bitmap.
type verdict int

const (
	verdictSkip verdict = iota
	verdictRemain
	verdictBitmap
)

// Thunk lazily produces a row-id bitmap; forcing performs I/O on demand
// (spec §9 "Lazy bitmap production") so AND/OR composition can fold
// multiple readers without forcing branches proved unnecessary by a Skip.
type Thunk func() (*roaringwrap.Bitmap, error)

// Result is the outcome of visiting a single index reader with a leaf
// predicate (spec §3.3): Skip, Remain, or a deferred bitmap.
type Result struct {
	v       verdict
	thunk   Thunk
	forced  *roaringwrap.Bitmap
	forcedE error
	done    bool
}

func Skip() Result   { return Result{v: verdictSkip} }
func Remain() Result { return Result{v: verdictRemain} }

// Bitmap wraps a thunk as a deferred-bitmap result.
func Bitmap(t Thunk) Result { return Result{v: verdictBitmap, thunk: t} }

// Concrete wraps an already-materialized bitmap as a deferred-bitmap result.
func Concrete(b *roaringwrap.Bitmap) Result {
	return Result{v: verdictBitmap, thunk: func() (*roaringwrap.Bitmap, error) { return b, nil }}
}

func (r Result) IsSkip() bool   { return r.v == verdictSkip }
func (r Result) IsRemain() bool { return r.v == verdictRemain }
func (r Result) IsBitmap() bool { return r.v == verdictBitmap }

// Force memoizes and returns the underlying bitmap; only valid when
// IsBitmap() is true.
func (r *Result) Force() (*roaringwrap.Bitmap, error) {
	if r.v != verdictBitmap {
		return nil, nil
	}
	if !r.done {
		r.forced, r.forcedE = r.thunk()
		r.done = true
	}
	return r.forced, r.forcedE
}

// And composes two results per spec §3.3: Skip absorbs; Remain is the
// identity; two bitmaps intersect.
func And(a, b Result) Result {
	if a.IsSkip() || b.IsSkip() {
		return Skip()
	}
	if a.IsRemain() {
		return b
	}
	if b.IsRemain() {
		return a
	}
	return Bitmap(func() (*roaringwrap.Bitmap, error) {
		ba, err := a.Force()
		if err != nil {
			return nil, err
		}
		bb, err := b.Force()
		if err != nil {
			return nil, err
		}
		return ba.And(bb), nil
	})
}

// Or composes two results per spec §3.3: Remain absorbs; Skip is the
// identity; two bitmaps union.
func Or(a, b Result) Result {
	if a.IsRemain() || b.IsRemain() {
		return Remain()
	}
	if a.IsSkip() {
		return b
	}
	if b.IsSkip() {
		return a
	}
	return Bitmap(func() (*roaringwrap.Bitmap, error) {
		ba, err := a.Force()
		if err != nil {
			return nil, err
		}
		bb, err := b.Force()
		if err != nil {
			return nil, err
		}
		return ba.Or(bb), nil
	})
}
