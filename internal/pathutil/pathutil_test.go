package pathutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("/"))
	assert.True(t, IsValid("/a/"))
	assert.True(t, IsValid("/a/bc/"))

	assert.False(t, IsValid(""))
	assert.False(t, IsValid("a/"))
	assert.False(t, IsValid("/a"))
	assert.False(t, IsValid("/A/"))
	assert.False(t, IsValid("/a//b/"))
	assert.False(t, IsValid("/"+strings.Repeat("a", MaxComponentLen+1)+"/"))
	assert.False(t, IsValid("/"+strings.Repeat("a/", MaxPathLen)))
}

func TestSplit(t *testing.T) {
	component, rest, ok := Split("/a/b/")
	assert.True(t, ok)
	assert.Equal(t, "a", component)
	assert.Equal(t, "/b/", rest)

	_, _, ok = Split("/")
	assert.False(t, ok)
}

func TestParentOf(t *testing.T) {
	parent, last := ParentOf("/a/b/")
	assert.Equal(t, "/a/", parent)
	assert.Equal(t, "b", last)

	parent, last = ParentOf("/a/")
	assert.Equal(t, "/", parent)
	assert.Equal(t, "a", last)

	assert.Panics(t, func() { ParentOf("/") })
}

func TestLongestCommonPath(t *testing.T) {
	assert.Equal(t, "/a/", LongestCommonPath("/a/b/", "/a/c/"))
	assert.Equal(t, "/", LongestCommonPath("/a/", "/b/"))
	assert.Equal(t, "/a/b/", LongestCommonPath("/a/b/", "/a/b/"))
}

func TestRemovePrefix(t *testing.T) {
	assert.Equal(t, "/b/", RemovePrefix("/a/", "/a/b/"))
	assert.Equal(t, "/", RemovePrefix("/a/", "/a/"))
}

func TestIsSubdirectory(t *testing.T) {
	assert.True(t, IsSubdirectory("/a/", "/a/b/"))
	assert.True(t, IsSubdirectory("/a/", "/a/"))
	assert.False(t, IsSubdirectory("/a/", "/b/"))
	assert.False(t, IsSubdirectory("/a/b/", "/a/"))
}
