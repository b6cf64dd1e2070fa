package services

import (
	"testing"

	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAccessMarketerRole(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db,
		"campaigns:read", "campaigns:write", "segments:read", "reports:read")

	marketer := createTestRole(t, db, nil, "marketer", true,
		perms["campaigns:read"], perms["campaigns:write"], perms["segments:read"])
	user := createTestUser(t, db, org.ID, "alice")
	assignTestRole(t, db, user.ID, marketer.ID)

	service := NewAuthzServiceWithDB(db)
	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"marketer"}, access.RoleKeys)
	assert.True(t, access.Permissions.Has("campaigns:read"))
	assert.True(t, access.Permissions.Has("campaigns:write"))
	assert.True(t, access.Permissions.Has("segments:read"))
	assert.False(t, access.Permissions.Has("reports:read"))
}

func TestResolveAccessWriteImpliesRead(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db, "campaigns:write")

	// 角色只授予write，read由推导补全
	editor := createTestRole(t, db, nil, "editor", false, perms["campaigns:write"])
	user := createTestUser(t, db, org.ID, "bob")
	assignTestRole(t, db, user.ID, editor.ID)

	service := NewAuthzServiceWithDB(db)
	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.True(t, access.Permissions.Has("campaigns:write"))
	assert.True(t, access.Permissions.Has("campaigns:read"))
}

func TestResolveAccessDenyOverrideWins(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db,
		"campaigns:read", "campaigns:write", "segments:read")

	marketer := createTestRole(t, db, nil, "marketer", true,
		perms["campaigns:read"], perms["campaigns:write"], perms["segments:read"])
	user := createTestUser(t, db, org.ID, "carol")
	assignTestRole(t, db, user.ID, marketer.ID)

	service := NewAuthzServiceWithDB(db)
	_, err := service.SetOverride(1, user.ID, "campaigns:write", false)
	require.NoError(t, err)

	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	// 否定例外收回write，角色直接授予的read不受影响
	assert.False(t, access.Permissions.Has("campaigns:write"))
	assert.True(t, access.Permissions.Has("campaigns:read"))
	assert.True(t, access.Permissions.Has("segments:read"))
}

func TestResolveAccessDenyWriteSuppressesDerivedRead(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db, "campaigns:write")

	// read仅由write推导而来：否定write时派生read一并消失
	editor := createTestRole(t, db, nil, "editor", false, perms["campaigns:write"])
	user := createTestUser(t, db, org.ID, "dave")
	assignTestRole(t, db, user.ID, editor.ID)

	service := NewAuthzServiceWithDB(db)
	_, err := service.SetOverride(1, user.ID, "campaigns:write", false)
	require.NoError(t, err)

	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.False(t, access.Permissions.Has("campaigns:write"))
	assert.False(t, access.Permissions.Has("campaigns:read"))
}

func TestResolveAccessAllowOverrideExpands(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db, "reports:read", "contacts:write")

	analyst := createTestRole(t, db, nil, "analyst", true, perms["reports:read"])
	user := createTestUser(t, db, org.ID, "erin")
	assignTestRole(t, db, user.ID, analyst.ID)

	service := NewAuthzServiceWithDB(db)
	_, err := service.SetOverride(1, user.ID, "contacts:write", true)
	require.NoError(t, err)

	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	// 肯定例外并入后同样参与写隐含读的推导
	assert.True(t, access.Permissions.Has("contacts:write"))
	assert.True(t, access.Permissions.Has("contacts:read"))
	assert.True(t, access.Permissions.Has("reports:read"))
}

func TestResolveAccessZeroRolesWithOverride(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	createTestPermissions(t, db, "reports:read")

	user := createTestUser(t, db, org.ID, "frank")

	service := NewAuthzServiceWithDB(db)

	// 无角色主体的基础集合为空
	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)
	assert.Empty(t, access.RoleKeys)
	assert.Equal(t, 0, access.Permissions.Len())

	// 肯定例外可以在空基础集合上放行
	_, err = service.SetOverride(1, user.ID, "reports:read", true)
	require.NoError(t, err)

	access, err = service.ResolveAccess(user.ID)
	require.NoError(t, err)
	assert.True(t, access.Permissions.Has("reports:read"))
}

func TestResolveAccessFiltersInvisibleRoles(t *testing.T) {
	db := setupTestDB(t)
	orgA := createTestOrg(t, db, "acme")
	orgB := createTestOrg(t, db, "globex")
	perms := createTestPermissions(t, db, "campaigns:read", "billing:read")

	// 他组织的私有角色即便出现在分配表里也不参与解析
	ownRole := createTestRole(t, db, &orgA.ID, "own_role", false, perms["campaigns:read"])
	foreignRole := createTestRole(t, db, &orgB.ID, "foreign_role", false, perms["billing:read"])

	user := createTestUser(t, db, orgA.ID, "grace")
	assignTestRole(t, db, user.ID, ownRole.ID)
	assignTestRole(t, db, user.ID, foreignRole.ID)

	service := NewAuthzServiceWithDB(db)
	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"own_role"}, access.RoleKeys)
	assert.True(t, access.Permissions.Has("campaigns:read"))
	assert.False(t, access.Permissions.Has("billing:read"))
}

func TestResolveAccessMergesLegacyRoleColumn(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db, "campaigns:read", "segments:read")

	legacy := createTestRole(t, db, nil, "legacy_role", false, perms["campaigns:read"])
	assigned := createTestRole(t, db, nil, "assigned_role", false, perms["segments:read"])

	user := createTestUser(t, db, org.ID, "henry")
	user.RoleID = &legacy.ID
	require.NoError(t, db.Save(user).Error)
	assignTestRole(t, db, user.ID, assigned.ID)

	service := NewAuthzServiceWithDB(db)
	access, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"legacy_role", "assigned_role"}, access.RoleKeys)
	assert.True(t, access.Permissions.Has("campaigns:read"))
	assert.True(t, access.Permissions.Has("segments:read"))
}

func TestResolveAccessIdempotent(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	perms := createTestPermissions(t, db, "campaigns:write", "segments:read")

	role := createTestRole(t, db, nil, "marketer", true, perms["campaigns:write"], perms["segments:read"])
	user := createTestUser(t, db, org.ID, "iris")
	assignTestRole(t, db, user.ID, role.ID)

	service := NewAuthzServiceWithDB(db)

	first, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)
	second, err := service.ResolveAccess(user.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Permissions.Keys(), second.Permissions.Keys())
	assert.Equal(t, first.RoleKeys, second.RoleKeys)
}

func TestResolveAccessUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	service := NewAuthzServiceWithDB(db)
	_, err := service.ResolveAccess(999)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

// ========== 权限例外管理 ==========

func TestSetOverrideValidatesPermissionKey(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	createTestPermissions(t, db, "campaigns:read")
	user := createTestUser(t, db, org.ID, "judy")

	service := NewAuthzServiceWithDB(db)

	_, err := service.SetOverride(1, user.ID, "nonexistent:key", true)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = service.SetOverride(1, 999, "campaigns:read", true)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSetOverrideUpsert(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	createTestPermissions(t, db, "campaigns:read")
	user := createTestUser(t, db, org.ID, "kate")

	service := NewAuthzServiceWithDB(db)

	first, err := service.SetOverride(1, user.ID, "campaigns:read", true)
	require.NoError(t, err)
	assert.True(t, first.IsAllowed)

	// 同一key重复设置走更新而非新增
	second, err := service.SetOverride(2, user.ID, "campaigns:read", false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsAllowed)
	assert.Equal(t, uint(2), second.CreatedBy)

	var count int64
	db.Model(&models.PermissionOverride{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRemoveOverride(t *testing.T) {
	db := setupTestDB(t)
	org := createTestOrg(t, db, "acme")
	createTestPermissions(t, db, "campaigns:read")
	user := createTestUser(t, db, org.ID, "leo")

	service := NewAuthzServiceWithDB(db)

	_, err := service.SetOverride(1, user.ID, "campaigns:read", false)
	require.NoError(t, err)

	require.NoError(t, service.RemoveOverride(user.ID, "campaigns:read"))

	// 移除后恢复为角色推导结果
	overrides, err := service.ListOverrides(user.ID)
	require.NoError(t, err)
	assert.Empty(t, overrides)

	err = service.RemoveOverride(user.ID, "campaigns:read")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
