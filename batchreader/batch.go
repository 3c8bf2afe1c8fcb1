// Package batchreader implements the batch-reader combinators of spec §3.9
// and §4.6: the uniform reader contract, and the five combinators that
// apply a predicate-derived row-id bitmap to a columnar batch stream
// (ApplyBitmapIndexBatchReader, PredicateBatchReader, ConcatBatchReader,
// DataEvolutionFileReader, CompleteRowKindBatchReader).
package batchreader

import (
	"github.com/paimon-io/paimon-fileindex-go/literal"
)

// Array is one column's worth of values, addressed by in-batch position.
// Concrete columnar engines (arrow, parquet) would back this with a typed
// vector; this module only needs random-access read, so one interface
// covers every backing representation a caller supplies.
type Array interface {
	Len() int
	Get(i int) literal.Literal
}

// SliceArray is an Array backed by a plain literal slice.
type SliceArray struct {
	Values []literal.Literal
}

func (a SliceArray) Len() int                 { return len(a.Values) }
func (a SliceArray) Get(i int) literal.Literal { return a.Values[i] }

// ConstantArray is an Array where every position holds the same value;
// CompleteRowKindBatchReader reuses one of these instead of materializing a
// full-length column of identical values (spec §4.6: "reuses a
// scalar-backed constant array whenever possible").
type ConstantArray struct {
	Value  literal.Literal
	Length int
}

func (a ConstantArray) Len() int               { return a.Length }
func (a ConstantArray) Get(int) literal.Literal { return a.Value }

// Batch is one window of rows: parallel named columns plus the row number
// of its first row within the underlying file, needed to intersect a
// file-level bitmap against a batch-local window (spec §4.6
// ApplyBitmapIndexBatchReader).
type Batch struct {
	FirstRowNumber int64
	Names          []string
	Columns        []Array
	Length         int
}

// Column returns the named column, or false if absent.
func (b *Batch) Column(name string) (Array, bool) {
	for i, n := range b.Names {
		if n == name {
			return b.Columns[i], true
		}
	}
	return nil, false
}

// ColumnIndex returns the position of name among b.Names, or -1.
func (b *Batch) ColumnIndex(name string) int {
	for i, n := range b.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// selectRows builds a new Batch containing only the rows at the given
// local positions (ascending), preserving column order and names. Used by
// every combinator that narrows a batch to a subset of its rows.
func selectRows(b *Batch, positions []int) *Batch {
	names := append([]string(nil), b.Names...)
	columns := make([]Array, len(b.Columns))
	for i, col := range b.Columns {
		values := make([]literal.Literal, len(positions))
		for j, p := range positions {
			values[j] = col.Get(p)
		}
		columns[i] = SliceArray{Values: values}
	}
	return &Batch{
		FirstRowNumber: b.FirstRowNumber,
		Names:          names,
		Columns:        columns,
		Length:         len(positions),
	}
}
