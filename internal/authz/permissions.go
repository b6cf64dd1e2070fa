package authz

import (
	"sort"
	"strings"
)

// PermissionSet 权限key集合（集合语义，无重复）
type PermissionSet map[string]struct{}

// NewPermissionSet 由权限key列表构造集合
func NewPermissionSet(keys ...string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Has 是否包含指定权限key
func (s PermissionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Add 加入权限key
func (s PermissionSet) Add(key string) {
	s[key] = struct{}{}
}

// Remove 移除权限key
func (s PermissionSet) Remove(key string) {
	delete(s, key)
}

// Len 集合大小
func (s PermissionSet) Len() int {
	return len(s)
}

// Keys 返回排序后的权限key列表（序列化用，集合本身无序）
func (s PermissionSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone 复制集合
func (s PermissionSet) Clone() PermissionSet {
	cloned := make(PermissionSet, len(s))
	for key := range s {
		cloned[key] = struct{}{}
	}
	return cloned
}

// 写权限隐含读权限的推导规则
// 解析器物化和请求时校验共用同一份实现，避免两处漂移
const (
	actionWriteSuffix = ":write"
	actionReadSuffix  = ":read"
)

// ImpliedReadKey 若key为写权限，返回其隐含的读权限key
func ImpliedReadKey(key string) (string, bool) {
	if module, ok := strings.CutSuffix(key, actionWriteSuffix); ok {
		return module + actionReadSuffix, true
	}
	return "", false
}

// ExpandImpliedReads 返回补全隐含读权限后的新集合
// 推导结果不落库，每次解析时重新计算
func ExpandImpliedReads(set PermissionSet) PermissionSet {
	expanded := set.Clone()
	for key := range set {
		if readKey, ok := ImpliedReadKey(key); ok {
			expanded.Add(readKey)
		}
	}
	return expanded
}

// PermissionMatches 请求时权限匹配
// 直接命中，或所需为读权限且持有对应写权限（推导规则的请求时实例）
func PermissionMatches(effective PermissionSet, required string) bool {
	if effective.Has(required) {
		return true
	}
	if module, ok := strings.CutSuffix(required, actionReadSuffix); ok {
		return effective.Has(module + actionWriteSuffix)
	}
	return false
}
