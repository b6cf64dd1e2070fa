package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandImpliedReads(t *testing.T) {
	set := NewPermissionSet("campaigns:read", "campaigns:write", "segments:read")

	expanded := ExpandImpliedReads(set)

	// write隐含read，但segments没有write所以不扩展
	assert.True(t, expanded.Has("campaigns:read"))
	assert.True(t, expanded.Has("campaigns:write"))
	assert.True(t, expanded.Has("segments:read"))
	assert.Equal(t, 3, expanded.Len())

	// 原集合不被修改
	assert.Equal(t, 3, set.Len())
}

func TestExpandImpliedReadsAddsMissingRead(t *testing.T) {
	set := NewPermissionSet("billing:write")

	expanded := ExpandImpliedReads(set)

	assert.True(t, expanded.Has("billing:read"))
	assert.True(t, expanded.Has("billing:write"))
}

func TestPermissionMatches(t *testing.T) {
	effective := NewPermissionSet("campaigns:write", "reports:read")

	// 直接命中
	assert.True(t, PermissionMatches(effective, "campaigns:write"))
	assert.True(t, PermissionMatches(effective, "reports:read"))

	// 请求时推导：持有write即满足read要求，无论read是否单独物化
	assert.True(t, PermissionMatches(effective, "campaigns:read"))

	// 反向不成立：read不隐含write
	assert.False(t, PermissionMatches(effective, "reports:write"))
	assert.False(t, PermissionMatches(effective, "billing:read"))
}

func TestImpliedReadKey(t *testing.T) {
	readKey, ok := ImpliedReadKey("segments:write")
	assert.True(t, ok)
	assert.Equal(t, "segments:read", readKey)

	_, ok = ImpliedReadKey("segments:read")
	assert.False(t, ok)

	_, ok = ImpliedReadKey("roles:manage")
	assert.False(t, ok)
}

func TestPermissionSetKeysSorted(t *testing.T) {
	set := NewPermissionSet("b:read", "a:read", "c:read")
	assert.Equal(t, []string{"a:read", "b:read", "c:read"}, set.Keys())
}
