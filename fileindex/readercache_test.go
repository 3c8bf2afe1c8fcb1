package fileindex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilReaderCacheAlwaysBuilds(t *testing.T) {
	var rc *ReaderCache
	calls := 0
	build := func() (Reader, error) {
		calls++
		return NewEmptyReader(), nil
	}
	_, err := rc.getOrBuild("blob", "col", "kind", build)
	require.NoError(t, err)
	_, err = rc.getOrBuild("blob", "col", "kind", build)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReaderCacheReusesBuiltReader(t *testing.T) {
	rc := NewReaderCache(time.Minute)
	defer rc.Stop()

	calls := 0
	build := func() (Reader, error) {
		calls++
		return NewEmptyReader(), nil
	}
	_, err := rc.getOrBuild("blob", "col", "kind", build)
	require.NoError(t, err)
	_, err = rc.getOrBuild("blob", "col", "kind", build)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestReaderCacheDistinguishesKeys(t *testing.T) {
	rc := NewReaderCache(time.Minute)
	defer rc.Stop()

	calls := 0
	build := func() (Reader, error) {
		calls++
		return NewEmptyReader(), nil
	}
	_, err := rc.getOrBuild("blob1", "col", "kind", build)
	require.NoError(t, err)
	_, err = rc.getOrBuild("blob2", "col", "kind", build)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReaderCacheKeyJoinsWithNullByte(t *testing.T) {
	assert.Equal(t, "a\x00b\x00c", readerCacheKey("a", "b", "c"))
}
