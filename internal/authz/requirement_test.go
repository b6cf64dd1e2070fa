package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequirementEmptyAlwaysSatisfied(t *testing.T) {
	effective := NewPermissionSet()

	// 空要求对任意已认证主体满足，哪怕权限集合为空
	assert.True(t, Requirement{}.Satisfies(effective, nil))
	assert.True(t, Requirement{AnyOf: []string{}, AllOf: []string{}, Roles: []string{}}.Satisfies(effective, nil))
}

func TestRequirementAnyOf(t *testing.T) {
	effective := NewPermissionSet("segments:read")

	// 命中任意一个即可
	req := Requirement{AnyOf: []string{"campaigns:read", "segments:read"}}
	assert.True(t, req.Satisfies(effective, nil))

	// 一个都不命中则失败
	req = Requirement{AnyOf: []string{"campaigns:read", "billing:read"}}
	assert.False(t, req.Satisfies(effective, nil))
}

func TestRequirementAllOf(t *testing.T) {
	effective := NewPermissionSet("campaigns:read", "segments:read")

	req := Requirement{AllOf: []string{"campaigns:read", "segments:read"}}
	assert.True(t, req.Satisfies(effective, nil))

	// 缺任意一个即失败
	req = Requirement{AllOf: []string{"campaigns:read", "segments:read", "billing:read"}}
	assert.False(t, req.Satisfies(effective, nil))
}

func TestRequirementRoles(t *testing.T) {
	effective := NewPermissionSet("campaigns:read")

	req := Requirement{Roles: []string{"admin", "marketer"}}
	assert.True(t, req.Satisfies(effective, []string{"marketer"}))
	assert.False(t, req.Satisfies(effective, []string{"analyst"}))
	assert.False(t, req.Satisfies(effective, nil))
}

func TestRequirementClausesAreAnded(t *testing.T) {
	effective := NewPermissionSet("campaigns:read", "segments:read")

	// 三个子句独立满足才整体满足
	req := Requirement{
		Roles: []string{"marketer"},
		AnyOf: []string{"campaigns:read"},
		AllOf: []string{"segments:read"},
	}
	assert.True(t, req.Satisfies(effective, []string{"marketer"}))

	// 权限子句满足但角色子句不满足
	assert.False(t, req.Satisfies(effective, []string{"analyst"}))

	// 角色子句满足但AllOf不满足
	req.AllOf = []string{"billing:read"}
	assert.False(t, req.Satisfies(effective, []string{"marketer"}))
}

func TestRequirementWriteImpliesReadAtCheckTime(t *testing.T) {
	// 有效集合只物化了write，read要求也应满足
	effective := NewPermissionSet("campaigns:write")

	req := Requirement{AnyOf: []string{"campaigns:read"}}
	assert.True(t, req.Satisfies(effective, nil))

	req = Requirement{AllOf: []string{"campaigns:read", "campaigns:write"}}
	assert.True(t, req.Satisfies(effective, nil))
}
