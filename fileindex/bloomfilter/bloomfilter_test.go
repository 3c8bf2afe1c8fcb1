package bloomfilter

import (
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

func TestLongHashIsDeterministic(t *testing.T) {
	assert.Equal(t, longHash(42), longHash(42))
	assert.NotEqual(t, longHash(42), longHash(43))
}

func TestHashFunctionForRejectsUnsupportedType(t *testing.T) {
	_, err := HashFunctionFor(literal.ARRAY)
	assert.Error(t, err)
}

func TestHashFunctionForStringUsesXXHash(t *testing.T) {
	hash, err := HashFunctionFor(literal.STRING)
	require.NoError(t, err)
	h1, err := hash(literal.Str("abc"))
	require.NoError(t, err)
	h2, err := hash(literal.Str("abc"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestBitSetSetAndGetWithOffset(t *testing.T) {
	data := make([]byte, 8)
	bs := newBitSet(data, 4)
	bs.Set(3)
	assert.True(t, bs.Get(3))
	assert.False(t, bs.Get(4))
}

func TestFilterAddAndTestHashNoFalseNegatives(t *testing.T) {
	f := newFilterForCapacity(100, 0.01)
	hash, err := HashFunctionFor(literal.INT)
	require.NoError(t, err)

	for i := int32(0); i < 100; i++ {
		h, err := hash(literal.Int(i))
		require.NoError(t, err)
		f.AddHash(h)
	}
	for i := int32(0); i < 100; i++ {
		h, err := hash(literal.Int(i))
		require.NoError(t, err)
		assert.True(t, f.TestHash(h), "value %d must not be a false negative", i)
	}
}

func buildBloomReader(t *testing.T, ft literal.FieldType, values []literal.Literal) *Reader {
	t.Helper()
	w, err := NewWriter(ft, map[string]string{OptionItems: "1000", OptionFpp: "0.001"})
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, w.Add(v))
	}
	body := w.SerializedBytes()
	r, err := Open(ft, 0, int32(len(body)), sliceReaderAt{b: body})
	require.NoError(t, err)
	return r
}

func TestBloomFilterVisitEqualRemainsForPresentValue(t *testing.T) {
	r := buildBloomReader(t, literal.INT, []literal.Literal{literal.Int(7), literal.Int(99)})
	leaf, err := predicate.NewLeaf(0, "c", literal.INT, predicate.EQ, literal.Int(7))
	require.NoError(t, err)
	res, err := r.Evaluate(leaf)
	require.NoError(t, err)
	assert.True(t, res.IsRemain())
}

func TestBloomFilterVisitEqualSkipsDefinitelyAbsentValue(t *testing.T) {
	r := buildBloomReader(t, literal.STRING, []literal.Literal{literal.Str("alpha"), literal.Str("beta")})
	leaf, err := predicate.NewLeaf(0, "c", literal.STRING, predicate.EQ, literal.Str("definitely-not-in-the-set-zzz"))
	require.NoError(t, err)
	res, err := r.Evaluate(leaf)
	require.NoError(t, err)
	assert.True(t, res.IsSkip())
}

func TestBloomFilterVisitEqualNullRemains(t *testing.T) {
	r := buildBloomReader(t, literal.INT, []literal.Literal{literal.Int(1)})
	leaf, err := predicate.NewLeaf(0, "c", literal.INT, predicate.EQ, literal.Null(literal.INT))
	require.NoError(t, err)
	res, err := r.Evaluate(leaf)
	require.NoError(t, err)
	assert.True(t, res.IsRemain())
}

func TestBloomFilterOpenRejectsTooShortBlob(t *testing.T) {
	_, err := Open(literal.INT, 0, 2, sliceReaderAt{b: []byte{1, 2}})
	assert.Error(t, err)
}

func TestBloomFilterNonEqualPredicateDefaultsToRemain(t *testing.T) {
	r := buildBloomReader(t, literal.INT, []literal.Literal{literal.Int(1)})
	leaf, err := predicate.NewLeaf(0, "c", literal.INT, predicate.LT, literal.Int(5))
	require.NoError(t, err)
	res, err := r.Evaluate(leaf)
	require.NoError(t, err)
	assert.True(t, res.IsRemain())
}
