package fileindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
)

func TestEmptyReaderSkipsPositivePredicates(t *testing.T) {
	r := NewEmptyReader()
	positive := []predicate.Kind{
		predicate.EQ, predicate.IS_NOT_NULL, predicate.STARTS_WITH,
		predicate.ENDS_WITH, predicate.CONTAINS, predicate.LT,
		predicate.GE, predicate.LE, predicate.GT, predicate.IN,
	}
	for _, k := range positive {
		lit, err := leafOfKind(k)
		require.NoError(t, err)
		res, err := r.Evaluate(lit)
		require.NoError(t, err)
		assert.True(t, res.IsSkip(), "%s should Skip on an empty index", k)
	}
}

func TestEmptyReaderRemainsOnNegativePredicates(t *testing.T) {
	r := NewEmptyReader()
	negative := []predicate.Kind{predicate.NEQ, predicate.IS_NULL, predicate.NOT_IN}
	for _, k := range negative {
		lit, err := leafOfKind(k)
		require.NoError(t, err)
		res, err := r.Evaluate(lit)
		require.NoError(t, err)
		assert.True(t, res.IsRemain(), "%s should Remain on an empty index", k)
	}
}

func TestEmptyReaderCloseIsNoop(t *testing.T) {
	assert.NoError(t, NewEmptyReader().Close())
}

func leafOfKind(k predicate.Kind) (predicate.LeafPredicate, error) {
	switch k {
	case predicate.IS_NULL, predicate.IS_NOT_NULL:
		return predicate.NewLeaf(0, "a", literal.INT, k)
	case predicate.IN, predicate.NOT_IN:
		return predicate.NewLeaf(0, "a", literal.INT, k, literal.Int(1))
	default:
		return predicate.NewLeaf(0, "a", literal.INT, k, literal.Int(1))
	}
}
