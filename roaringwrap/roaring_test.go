package roaringwrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndContains(t *testing.T) {
	b := New()
	b.Add(5)
	assert.True(t, b.Contains(5))
	assert.False(t, b.Contains(6))
	assert.Equal(t, uint64(1), b.Cardinality())
}

func TestAddRangeCoversHalfOpenInterval(t *testing.T) {
	b := New()
	b.AddRange(2, 5)
	assert.True(t, b.Contains(2))
	assert.True(t, b.Contains(4))
	assert.False(t, b.Contains(5))
}

func TestFromSliceMatchesIndividualAdds(t *testing.T) {
	b := FromSlice([]uint32{1, 3, 5})
	assert.ElementsMatch(t, []uint32{1, 3, 5}, b.ToArray())
}

func TestIsEmpty(t *testing.T) {
	b := New()
	assert.True(t, b.IsEmpty())
	b.Add(1)
	assert.False(t, b.IsEmpty())
}

func TestAndOrAndNot(t *testing.T) {
	a := FromSlice([]uint32{1, 2, 3})
	b := FromSlice([]uint32{2, 3, 4})

	assert.ElementsMatch(t, []uint32{2, 3}, a.And(b).ToArray())
	assert.ElementsMatch(t, []uint32{1, 2, 3, 4}, a.Or(b).ToArray())
	assert.ElementsMatch(t, []uint32{1}, a.AndNot(b).ToArray())
}

func TestAndInPlaceAndOrInPlaceMutateReceiver(t *testing.T) {
	a := FromSlice([]uint32{1, 2, 3})
	b := FromSlice([]uint32{2, 3})
	a.AndInPlace(b)
	assert.ElementsMatch(t, []uint32{2, 3}, a.ToArray())

	c := FromSlice([]uint32{1})
	c.OrInPlace(FromSlice([]uint32{2}))
	assert.ElementsMatch(t, []uint32{1, 2}, c.ToArray())
}

func TestCloneIsIndependent(t *testing.T) {
	a := FromSlice([]uint32{1, 2})
	clone := a.Clone()
	clone.Add(3)
	assert.False(t, a.Contains(3))
	assert.True(t, clone.Contains(3))
}

func TestFastUnionFoldsManyBitmaps(t *testing.T) {
	a := FromSlice([]uint32{1})
	b := FromSlice([]uint32{2})
	c := FromSlice([]uint32{3})
	assert.ElementsMatch(t, []uint32{1, 2, 3}, FastUnion(a, b, c).ToArray())
}

func TestFlipComplementsRange(t *testing.T) {
	a := FromSlice([]uint32{1})
	flipped := a.Flip(0, 3)
	assert.ElementsMatch(t, []uint32{0, 2}, flipped.ToArray())
}

func TestEqualOrLargerPositionsAtFirstMatch(t *testing.T) {
	b := FromSlice([]uint32{1, 5, 9})
	it := b.EqualOrLarger(4)
	require.True(t, it.HasNext())
	assert.Equal(t, uint32(5), it.Next())
}

func TestEqualOrLargerExhaustedWhenNoneMatch(t *testing.T) {
	b := FromSlice([]uint32{1, 2})
	it := b.EqualOrLarger(10)
	assert.False(t, it.HasNext())
}

func TestSerializeDeserializeRoundTrips(t *testing.T) {
	b := FromSlice([]uint32{1, 100, 1000})
	data, err := b.Serialize()
	require.NoError(t, err)

	back, err := Deserialize(data)
	require.NoError(t, err)
	assert.True(t, b.Equals(back))
}

func TestEqualsDistinguishesDifferentContent(t *testing.T) {
	a := FromSlice([]uint32{1})
	b := FromSlice([]uint32{2})
	assert.False(t, a.Equals(b))
}
