package batchreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
	"github.com/paimon-io/paimon-fileindex-go/roaringwrap"
)

// fakeReader replays a fixed list of batches, then returns EOF forever.
type fakeReader struct {
	batches []*Batch
	idx     int
	closed  bool
}

func intColumn(values ...int32) Array {
	lits := make([]literal.Literal, len(values))
	for i, v := range values {
		lits[i] = literal.Int(v)
	}
	return SliceArray{Values: lits}
}

func newFakeReader(batches ...*Batch) *fakeReader {
	return &fakeReader{batches: batches}
}

func (f *fakeReader) NextBatch() (*Batch, error) {
	if f.idx >= len(f.batches) {
		return nil, EOF
	}
	b := f.batches[f.idx]
	f.idx++
	return b, nil
}

func (f *fakeReader) GetReaderMetrics() *metrics.MetricsImpl { return metrics.NewMetricsImpl() }

func (f *fakeReader) Close() error { f.closed = true; return nil }

func TestApplyBitmapIndexBatchReaderFiltersWindow(t *testing.T) {
	batch := &Batch{
		FirstRowNumber: 0,
		Names:          []string{"f1"},
		Columns:        []Array{intColumn(0, 1, 2, 3, 4)},
		Length:         5,
	}
	inner := newFakeReader(batch)
	bm := roaringwrap.FromSlice([]uint32{1, 3})
	r := NewApplyBitmapIndexBatchReader(inner, bm)

	out, err := r.NextBatch()
	require.NoError(t, err)
	col, ok := out.Column("f1")
	require.True(t, ok)
	assert.Equal(t, 2, col.Len())
	assert.Equal(t, int64(1), mustInt64(col.Get(0)))
	assert.Equal(t, int64(3), mustInt64(col.Get(1)))

	_, err = r.NextBatch()
	assert.Equal(t, EOF, err)
}

func TestApplyBitmapIndexBatchReaderDropsEmptyIntersection(t *testing.T) {
	b1 := &Batch{FirstRowNumber: 0, Names: []string{"f1"}, Columns: []Array{intColumn(0, 1)}, Length: 2}
	b2 := &Batch{FirstRowNumber: 2, Names: []string{"f1"}, Columns: []Array{intColumn(2, 3)}, Length: 2}
	inner := newFakeReader(b1, b2)
	bm := roaringwrap.FromSlice([]uint32{3})
	r := NewApplyBitmapIndexBatchReader(inner, bm)

	out, err := r.NextBatch()
	require.NoError(t, err)
	col, _ := out.Column("f1")
	assert.Equal(t, 1, col.Len())
	assert.Equal(t, int64(3), mustInt64(col.Get(0)))
}

func mustInt64(l literal.Literal) int64 {
	v, err := l.AsInt64()
	if err != nil {
		panic(err)
	}
	return v
}

func TestPredicateBatchReaderFiltersRows(t *testing.T) {
	batch := &Batch{
		FirstRowNumber: 0,
		Names:          []string{"f1"},
		Columns:        []Array{intColumn(0, 10, 20, 30, 40)},
		Length:         5,
	}
	leaf, err := predicate.NewLeaf(0, "f1", literal.INT, predicate.LT, literal.Int(24))
	require.NoError(t, err)
	r := NewPredicateBatchReader(newFakeReader(batch), predicate.FromLeaf(leaf), nil)

	out, err := r.NextBatch()
	require.NoError(t, err)
	col, _ := out.Column("f1")
	assert.Equal(t, 3, col.Len())
	assert.Equal(t, int64(0), mustInt64(col.Get(0)))
	assert.Equal(t, int64(10), mustInt64(col.Get(1)))
	assert.Equal(t, int64(20), mustInt64(col.Get(2)))
}

func TestConcatBatchReaderPreservesOrderAndCloses(t *testing.T) {
	b1 := &Batch{Names: []string{"f1"}, Columns: []Array{intColumn(1)}, Length: 1}
	b2 := &Batch{Names: []string{"f1"}, Columns: []Array{intColumn(2)}, Length: 1}
	r1 := newFakeReader(b1)
	r2 := newFakeReader(b2)
	c := NewConcatBatchReader(r1, r2)

	out1, err := c.NextBatch()
	require.NoError(t, err)
	col, _ := out1.Column("f1")
	assert.Equal(t, int64(1), mustInt64(col.Get(0)))
	assert.False(t, r1.closed)

	out2, err := c.NextBatch()
	require.NoError(t, err)
	col, _ = out2.Column("f1")
	assert.Equal(t, int64(2), mustInt64(col.Get(0)))
	assert.True(t, r1.closed)

	_, err = c.NextBatch()
	assert.Equal(t, EOF, err)
}

func TestCompleteRowKindBatchReaderPrependsConstantColumn(t *testing.T) {
	batch := &Batch{Names: []string{"f1"}, Columns: []Array{intColumn(1, 2, 3)}, Length: 3}
	r := NewCompleteRowKindBatchReader(newFakeReader(batch))

	out, err := r.NextBatch()
	require.NoError(t, err)
	require.Equal(t, RowKindColumn, out.Names[0])
	rk, ok := out.Column(RowKindColumn)
	require.True(t, ok)
	assert.Equal(t, 3, rk.Len())
	assert.Equal(t, int64(RowKindInsert), mustInt64(rk.Get(0)))
	assert.Equal(t, int64(RowKindInsert), mustInt64(rk.Get(2)))
}

func TestCompleteRowKindBatchReaderPassesThroughExisting(t *testing.T) {
	batch := &Batch{
		Names: []string{RowKindColumn, "f1"},
		Columns: []Array{
			intColumn(int32(RowKindDelete)),
			intColumn(5),
		},
		Length: 1,
	}
	r := NewCompleteRowKindBatchReader(newFakeReader(batch))
	out, err := r.NextBatch()
	require.NoError(t, err)
	assert.Equal(t, []string{RowKindColumn, "f1"}, out.Names)
}

func TestDataEvolutionFileReaderAssemblesFields(t *testing.T) {
	childA := newFakeReader(&Batch{Names: []string{"a1"}, Columns: []Array{intColumn(1, 2)}, Length: 2})
	childB := newFakeReader(&Batch{Names: []string{"b1"}, Columns: []Array{intColumn(10, 20)}, Length: 2})

	r, err := NewDataEvolutionFileReader(
		[]Reader{childA, childB},
		[]int{0, 1, -1},
		[]int{0, 0, 0},
		[]string{"a1", "b1", "missing"},
		[]literal.FieldType{literal.INT, literal.INT, literal.INT},
		10,
	)
	require.NoError(t, err)

	out, err := r.NextBatch()
	require.NoError(t, err)
	assert.Equal(t, 2, out.Length)
	col, _ := out.Column("a1")
	assert.Equal(t, int64(1), mustInt64(col.Get(0)))
	col, _ = out.Column("b1")
	assert.Equal(t, int64(10), mustInt64(col.Get(0)))
	col, _ = out.Column("missing")
	assert.True(t, col.Get(0).IsNull())

	_, err = r.NextBatch()
	assert.Equal(t, EOF, err)
}

func TestDataEvolutionFileReaderRejectsRowCountMismatch(t *testing.T) {
	childA := newFakeReader(&Batch{Names: []string{"a1"}, Columns: []Array{intColumn(1, 2)}, Length: 2})
	childB := newFakeReader(&Batch{Names: []string{"b1"}, Columns: []Array{intColumn(10)}, Length: 1})

	r, err := NewDataEvolutionFileReader(
		[]Reader{childA, childB},
		[]int{0, 1},
		[]int{0, 0},
		[]string{"a1", "b1"},
		[]literal.FieldType{literal.INT, literal.INT},
		10,
	)
	require.NoError(t, err)

	_, err = r.NextBatch()
	assert.Error(t, err)
}
