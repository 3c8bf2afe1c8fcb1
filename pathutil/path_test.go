package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemeDetection(t *testing.T) {
	assert.Equal(t, "file", New("file:///tmp/x").Scheme())
	assert.Equal(t, "https", New("https://example.com/a").Scheme())
	assert.Equal(t, "", New("/tmp/x").Scheme())
	assert.Equal(t, "", New("C:\\tmp\\x").Scheme())
}

func TestAuthorityAndCleanPath(t *testing.T) {
	p := New("s3://my-bucket/a//b///c")
	assert.Equal(t, "my-bucket", p.Authority())
	assert.Equal(t, "/a/b/c", p.CleanPath())
}

func TestCleanPathCollapsesDoubleSlash(t *testing.T) {
	assert.Equal(t, "/a/b", New("/a//b").CleanPath())
}

func TestIsLocalAndIsWeb(t *testing.T) {
	assert.True(t, New("/var/data/file.bin").IsLocal())
	assert.True(t, New("file:///var/data/file.bin").IsLocal())
	assert.False(t, New("https://example.com/x").IsLocal())
	assert.True(t, New("https://example.com/x").IsWeb())
	assert.True(t, New("http://example.com/x").IsWeb())
}

func TestNameAndParent(t *testing.T) {
	p := New("/a/b/c.txt")
	assert.Equal(t, "c.txt", p.Name())
	assert.Equal(t, Path("/a/b"), p.Parent())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, Path("/a/b"), New("/a").Join("b"))
	assert.Equal(t, Path("/a/b"), New("/a/").Join("b"))
}

func TestCreateTempPathShape(t *testing.T) {
	tmp := CreateTempPath(New("/a/b/data.bin"))
	s := tmp.String()
	assert.True(t, strings.HasPrefix(s, "/a/b/.data.bin."))
	assert.True(t, strings.HasSuffix(s, ".tmp"))
}

func TestCreateTempPathIsRandomized(t *testing.T) {
	p := New("/a/b/data.bin")
	assert.NotEqual(t, CreateTempPath(p), CreateTempPath(p))
}

func TestListSetAndString(t *testing.T) {
	var l List
	a := assert.New(t)
	a.NoError(l.Set("/a"))
	a.NoError(l.Set("/b"))
	a.NoError(l.Set(""))
	a.Equal("/a,/b", l.String())
}
