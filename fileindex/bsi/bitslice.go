// Package bsi implements the bit-slice index file index (spec §3.8, §4.3):
// a set of per-bit roaring bitmaps over (value - min), split into a
// positive and a negative BitSliceIndexRoaringBitmap so O'Neil's compare
// algorithm never has to reason about sign.
package bsi

import (
	"fmt"

	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// Op is the closed set of comparisons ONeilCompare accepts, grounded on
// Function::Type in original_source/bit_slice_index_roaring_bitmap.h.
type Op int

const (
	OpEqual Op = iota
	OpNotEqual
	OpLessThan
	OpLessOrEqual
	OpGreaterThan
	OpGreaterOrEqual
)

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "EQUAL"
	case OpNotEqual:
		return "NOT_EQUAL"
	case OpLessThan:
		return "LESS_THAN"
	case OpLessOrEqual:
		return "LESS_OR_EQUAL"
	case OpGreaterThan:
		return "GREATER_THAN"
	case OpGreaterOrEqual:
		return "GREATER_OR_EQUAL"
	default:
		return "UNKNOWN"
	}
}

// RoaringBitmap is a bit-slice index over (value - min): ebm marks rows with
// a non-null value, and slices[i] marks rows whose i-th bit of (value - min)
// is 1 (BitSliceIndexRoaringBitmap of original_source/).
type RoaringBitmap struct {
	min    int64
	max    int64
	ebm    *roaringwrap.Bitmap
	slices []*roaringwrap.Bitmap
}

// Empty is the shared zero-value index used when a column carries no
// positive (or no negative) values at all.
func Empty() *RoaringBitmap {
	return &RoaringBitmap{ebm: roaringwrap.New()}
}

func bitCountFor(min, max int64) int {
	span := max - min
	n := 0
	for span > 0 {
		n++
		span >>= 1
	}
	if n == 0 {
		n = 1
	}
	return n
}

// IsNotNull reports every row with a value recorded in this index.
func (b *RoaringBitmap) IsNotNull() *roaringwrap.Bitmap { return b.ebm }

// Equal evaluates O'Neil's compare for = literal.
func (b *RoaringBitmap) Equal(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpEqual, literal)
}

// NotEqual evaluates O'Neil's compare for <> literal.
func (b *RoaringBitmap) NotEqual(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpNotEqual, literal)
}

// LessThan evaluates O'Neil's compare for < literal.
func (b *RoaringBitmap) LessThan(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpLessThan, literal)
}

// LessOrEqual evaluates O'Neil's compare for <= literal.
func (b *RoaringBitmap) LessOrEqual(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpLessOrEqual, literal)
}

// GreaterThan evaluates O'Neil's compare for > literal.
func (b *RoaringBitmap) GreaterThan(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpGreaterThan, literal)
}

// GreaterOrEqual evaluates O'Neil's compare for >= literal.
func (b *RoaringBitmap) GreaterOrEqual(literal int64) (*roaringwrap.Bitmap, error) {
	return b.compareMinMaxThenONeil(OpGreaterOrEqual, literal)
}

func (b *RoaringBitmap) compareMinMaxThenONeil(op Op, literal int64) (*roaringwrap.Bitmap, error) {
	if shortcut := b.compareUsingMinMax(op, literal); shortcut != nil {
		return shortcut, nil
	}
	return b.oNeilCompare(op, literal-b.min)
}

// compareUsingMinMax answers a comparison without touching any slice when
// the literal falls entirely outside [min, max], matching
// BitSliceIndexRoaringBitmap::CompareUsingMinMax; returns nil when the
// literal is in-range and a full ONeilCompare is required.
func (b *RoaringBitmap) compareUsingMinMax(op Op, literal int64) *roaringwrap.Bitmap {
	switch op {
	case OpEqual:
		if literal < b.min || literal > b.max {
			return roaringwrap.New()
		}
	case OpNotEqual:
		if literal < b.min || literal > b.max {
			return b.ebm
		}
	case OpLessThan:
		if literal <= b.min {
			return roaringwrap.New()
		}
		if literal > b.max {
			return b.ebm
		}
	case OpLessOrEqual:
		if literal < b.min {
			return roaringwrap.New()
		}
		if literal >= b.max {
			return b.ebm
		}
	case OpGreaterThan:
		if literal >= b.max {
			return roaringwrap.New()
		}
		if literal < b.min {
			return b.ebm
		}
	case OpGreaterOrEqual:
		if literal > b.max {
			return roaringwrap.New()
		}
		if literal <= b.min {
			return b.ebm
		}
	}
	return nil
}

// oNeilCompare is O'Neil's bit-sliced index compare algorithm: scan bits
// from most- to least-significant, tracking the candidate set still tied
// with the target value (eq) and peeling rows off into lt/gt as each bit
// resolves the comparison one way or the other.
//
// https://dl.acm.org/doi/10.1145/253262.253268
func (b *RoaringBitmap) oNeilCompare(op Op, v int64) (*roaringwrap.Bitmap, error) {
	switch op {
	case OpEqual, OpNotEqual, OpGreaterOrEqual, OpGreaterThan, OpLessOrEqual, OpLessThan:
	default:
		return nil, fmt.Errorf("invalid operation %s in ONeilCompare of BitSliceIndex, only support EQUAL/NOT_EQUAL/GREATER_OR_EQUAL/GREATER_THAN/LESS_OR_EQUAL/LESS_THAN", op)
	}

	eq := b.ebm.Clone()
	lt := roaringwrap.New()
	gt := roaringwrap.New()

	for i := len(b.slices) - 1; i >= 0; i-- {
		bit := (v >> uint(i)) & 1
		slice := b.slices[i]
		if bit == 1 {
			lt.OrInPlace(eq.AndNot(slice))
			eq.AndInPlace(slice)
		} else {
			gt.OrInPlace(eq.And(slice))
			eq = eq.AndNot(slice)
		}
	}

	switch op {
	case OpEqual:
		return eq, nil
	case OpNotEqual:
		return b.ebm.AndNot(eq), nil
	case OpLessThan:
		return lt, nil
	case OpLessOrEqual:
		return lt.Or(eq), nil
	case OpGreaterThan:
		return gt, nil
	case OpGreaterOrEqual:
		return gt.Or(eq), nil
	default:
		return nil, fmt.Errorf("unreachable")
	}
}
