package bsi

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
)

type sliceReaderAt struct{ b []byte }

func (s sliceReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(s.b)) {
		return 0, io.EOF
	}
	n := copy(p, s.b[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func buildRoaringBitmap(t *testing.T, min, max int64, values map[uint32]int64) *RoaringBitmap {
	t.Helper()
	a := NewAppender(min, max)
	for rid, v := range values {
		require.NoError(t, a.Append(rid, v))
	}
	return a.Build()
}

func TestAppenderRejectsOutOfRangeValues(t *testing.T) {
	a := NewAppender(0, 10)
	assert.Error(t, a.Append(0, 11))
	assert.Error(t, a.Append(0, -1))
}

func TestAppenderRejectsDuplicateRid(t *testing.T) {
	a := NewAppender(0, 10)
	require.NoError(t, a.Append(1, 5))
	assert.Error(t, a.Append(1, 6))
}

func TestAppenderIsNotEmpty(t *testing.T) {
	a := NewAppender(0, 10)
	assert.False(t, a.IsNotEmpty())
	require.NoError(t, a.Append(0, 5))
	assert.True(t, a.IsNotEmpty())
}

func TestAppenderSerializeCreateRoundTrips(t *testing.T) {
	a := NewAppender(0, 100)
	require.NoError(t, a.Append(0, 5))
	require.NoError(t, a.Append(1, 100))
	require.NoError(t, a.Append(2, 0))

	data, err := a.Serialize()
	require.NoError(t, err)

	back, err := Create(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(0), back.min)
	assert.Equal(t, int64(100), back.max)

	bm, err := back.Equal(5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0}, bm.ToArray())
}

func TestCreateRejectsFutureVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(99)
	_, err := Create(&buf)
	assert.Error(t, err)
}

func TestCompareUsingMinMaxShortCircuitsOutOfRange(t *testing.T) {
	b := buildRoaringBitmap(t, 10, 20, map[uint32]int64{0: 10, 1: 15, 2: 20})

	bm, err := b.Equal(5)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())

	bm, err = b.NotEqual(5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0, 1, 2}, bm.ToArray())

	bm, err = b.LessThan(5)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())

	bm, err = b.GreaterThan(25)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())

	bm, err = b.GreaterOrEqual(25)
	require.NoError(t, err)
	assert.True(t, bm.IsEmpty())
}

func TestONeilCompareEqualAndRange(t *testing.T) {
	b := buildRoaringBitmap(t, 0, 100, map[uint32]int64{0: 10, 1: 50, 2: 90, 3: 50})

	bm, err := b.Equal(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{1, 3}, bm.ToArray())

	bm, err = b.LessThan(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0}, bm.ToArray())

	bm, err = b.LessOrEqual(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0, 1, 3}, bm.ToArray())

	bm, err = b.GreaterThan(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{2}, bm.ToArray())

	bm, err = b.GreaterOrEqual(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{1, 2, 3}, bm.ToArray())

	bm, err = b.NotEqual(50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0, 2}, bm.ToArray())
}

func TestEmptyRoaringBitmapHasNoNotNullRows(t *testing.T) {
	assert.True(t, Empty().IsNotNull().IsEmpty())
}

func writerToReader(t *testing.T, ft literal.FieldType, rows map[uint32]literal.Literal, rowCount uint32) *Reader {
	t.Helper()
	w, err := NewWriter(ft)
	require.NoError(t, err)
	for i := uint32(0); i < rowCount; i++ {
		v, ok := rows[i]
		if !ok {
			v = literal.Null(ft)
		}
		require.NoError(t, w.Add(i, v))
	}
	body, err := w.SerializedBytes()
	require.NoError(t, err)
	r, err := Open(ft, 0, int32(len(body)), sliceReaderAt{b: body})
	require.NoError(t, err)
	return r
}

func TestReaderHandlesMixedSignValuesAndNulls(t *testing.T) {
	rows := map[uint32]literal.Literal{
		0: literal.BigInt(-5),
		1: literal.BigInt(10),
		2: literal.BigInt(-5),
	}
	r := writerToReader(t, literal.BIGINT, rows, 4) // row 3 is null

	leaf, err := predicate.NewLeaf(0, "c", literal.BIGINT, predicate.EQ, literal.BigInt(-5))
	require.NoError(t, err)
	res, err := r.Evaluate(leaf)
	require.NoError(t, err)
	bm, err := res.Force()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0, 2}, bm.ToArray())

	leaf, err = predicate.NewLeaf(0, "c", literal.BIGINT, predicate.GT, literal.BigInt(-10))
	require.NoError(t, err)
	res, err = r.Evaluate(leaf)
	require.NoError(t, err)
	bm, err = res.Force()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{0, 1, 2}, bm.ToArray())

	leaf, err = predicate.NewLeaf(0, "c", literal.BIGINT, predicate.IS_NULL)
	require.NoError(t, err)
	res, err = r.Evaluate(leaf)
	require.NoError(t, err)
	bm, err = res.Force()
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{3}, bm.ToArray())
}

func TestValueMapperForRejectsUnsupportedType(t *testing.T) {
	_, err := ValueMapperFor(literal.STRING)
	assert.Error(t, err)
}
