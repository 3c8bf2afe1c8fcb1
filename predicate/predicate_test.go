package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paimon-io/paimon-fileindex-go/literal"
)

func TestNewLeafValidatesArity(t *testing.T) {
	_, err := NewLeaf(0, "a", literal.INT, EQ)
	assert.Error(t, err, "EQ with zero literals should fail")

	_, err = NewLeaf(0, "a", literal.INT, EQ, literal.Int(1), literal.Int(2))
	assert.Error(t, err, "EQ with two literals should fail")

	_, err = NewLeaf(0, "a", literal.INT, IS_NULL, literal.Int(1))
	assert.Error(t, err, "IS_NULL takes no literals")

	_, err = NewLeaf(0, "a", literal.INT, IN)
	assert.Error(t, err, "IN requires at least one literal")
}

func TestNewLeafRejectsNullLiteral(t *testing.T) {
	_, err := NewLeaf(0, "a", literal.INT, EQ, literal.Null(literal.INT))
	assert.Error(t, err)
}

func TestNewLeafRejectsTypeMismatch(t *testing.T) {
	_, err := NewLeaf(0, "a", literal.INT, EQ, literal.Str("x"))
	assert.Error(t, err)
}

func TestNewLeafAcceptsValidLeaf(t *testing.T) {
	l, err := NewLeaf(2, "col", literal.BIGINT, GT, literal.BigInt(5))
	require.NoError(t, err)
	assert.Equal(t, 2, l.FieldIndex)
	assert.Equal(t, GT, l.Kind)
}

func TestLeafNegateCoversAllKinds(t *testing.T) {
	cases := map[Kind]Kind{
		EQ: NEQ, NEQ: EQ, LT: GE, LE: GT, GT: LE, GE: LT,
		IN: NOT_IN, NOT_IN: IN, IS_NULL: IS_NOT_NULL, IS_NOT_NULL: IS_NULL,
	}
	for k, want := range cases {
		p := LeafPredicate{Kind: k}
		n, err := p.Negate()
		require.NoError(t, err)
		assert.Equal(t, want, n.Kind, "negate(%s)", k)
	}
}

func TestLeafNegateRejectsUnnegatableKinds(t *testing.T) {
	for _, k := range []Kind{STARTS_WITH, ENDS_WITH, CONTAINS} {
		_, err := (LeafPredicate{Kind: k}).Negate()
		assert.Error(t, err, "%s should have no leaf-level negation", k)
	}
}

func TestNotOnLeafNegatesKind(t *testing.T) {
	leaf, err := NewLeaf(0, "a", literal.INT, EQ, literal.Int(1))
	require.NoError(t, err)
	negated, err := Not(FromLeaf(leaf))
	require.NoError(t, err)
	require.True(t, negated.IsLeaf())
	assert.Equal(t, NEQ, negated.Leaf.Kind)
}

func TestNotOnAndProducesOrOfNegatedChildren(t *testing.T) {
	l1, _ := NewLeaf(0, "a", literal.INT, EQ, literal.Int(1))
	l2, _ := NewLeaf(1, "b", literal.INT, LT, literal.Int(2))
	and := And(FromLeaf(l1), FromLeaf(l2))

	negated, err := Not(and)
	require.NoError(t, err)
	require.NotNil(t, negated.Compound)
	assert.Equal(t, OR, negated.Compound.Op)
	assert.Equal(t, NEQ, negated.Compound.Children[0].Leaf.Kind)
	assert.Equal(t, GE, negated.Compound.Children[1].Leaf.Kind)
}

func TestNotOnOrProducesAndOfNegatedChildren(t *testing.T) {
	l1, _ := NewLeaf(0, "a", literal.INT, EQ, literal.Int(1))
	or := Or(FromLeaf(l1))

	negated, err := Not(or)
	require.NoError(t, err)
	require.NotNil(t, negated.Compound)
	assert.Equal(t, AND, negated.Compound.Op)
}

func TestNotIsRecursiveAcrossNestedCompounds(t *testing.T) {
	l1, _ := NewLeaf(0, "a", literal.INT, EQ, literal.Int(1))
	l2, _ := NewLeaf(1, "b", literal.INT, EQ, literal.Int(2))
	nested := And(Or(FromLeaf(l1), FromLeaf(l2)))

	negated, err := Not(nested)
	require.NoError(t, err)
	assert.Equal(t, OR, negated.Compound.Op)
	inner := negated.Compound.Children[0]
	require.NotNil(t, inner.Compound)
	assert.Equal(t, AND, inner.Compound.Op)
}

func TestKindStringCoversKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "EQ", EQ.String())
	assert.Equal(t, "UNKNOWN", Kind(999).String())
}
