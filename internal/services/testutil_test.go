package services

import (
	"strings"
	"testing"

	"engage/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 创建内存数据库并迁移全部模型
// 按测试名隔离DSN，避免连接池的不同连接拿到不同的空库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.PermissionOverride{},
		&models.Segment{},
		&models.Contact{},
		&models.Campaign{},
		&models.SyncJob{},
	)
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	return db
}

// ========== 测试数据构造 ==========

func createTestOrg(t *testing.T, db *gorm.DB, slug string) *models.Organization {
	t.Helper()
	org := &models.Organization{
		Name:   "测试组织 " + slug,
		Slug:   slug,
		Status: models.OrgStatusActive,
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("创建组织失败: %v", err)
	}
	return org
}

func createTestUser(t *testing.T, db *gorm.DB, orgID uint, username string) *models.User {
	t.Helper()
	user := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          username + "@example.com",
		Name:           "测试用户" + username,
		Status:         models.UserStatusActive,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("设置密码失败: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

// createTestPermissions 按key批量创建权限目录项
func createTestPermissions(t *testing.T, db *gorm.DB, keys ...string) map[string]*models.Permission {
	t.Helper()
	result := make(map[string]*models.Permission, len(keys))
	for _, key := range keys {
		module, action, ok := strings.Cut(key, ":")
		if !ok {
			t.Fatalf("权限key格式错误: %s", key)
		}

		perm := &models.Permission{
			Key:    key,
			Name:   key,
			Module: module,
			Action: action,
		}
		if err := db.Create(perm).Error; err != nil {
			t.Fatalf("创建权限失败: %v", err)
		}
		result[key] = perm
	}
	return result
}

// createTestRole 创建角色并授予权限。orgID为nil时创建全局系统角色
func createTestRole(t *testing.T, db *gorm.DB, orgID *uint, key string, isSystem bool, perms ...*models.Permission) *models.Role {
	t.Helper()
	role := &models.Role{
		OrganizationID: orgID,
		Key:            key,
		Name:           "角色" + key,
		IsSystem:       isSystem,
	}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("创建角色失败: %v", err)
	}
	for _, p := range perms {
		rp := &models.RolePermission{RoleID: role.ID, PermissionID: p.ID}
		if err := db.Create(rp).Error; err != nil {
			t.Fatalf("授予权限失败: %v", err)
		}
	}
	return role
}

func assignTestRole(t *testing.T, db *gorm.DB, userID, roleID uint) {
	t.Helper()
	assignment := &models.UserRole{UserID: userID, RoleID: roleID}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("分配角色失败: %v", err)
	}
}
