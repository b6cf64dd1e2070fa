package main

import (
	"engage/internal/models"
	"engage/pkg/logger"

	"gorm.io/gorm"
)

// seedPermission 权限目录种子项
type seedPermission struct {
	Key         string
	Name        string
	Description string
	Module      string
	Action      string
}

// 权限目录（全局，只由种子数据维护）
var permissionCatalog = []seedPermission{
	{Key: "campaigns:read", Name: "查看活动", Module: models.ModuleCampaigns, Action: models.ActionRead},
	{Key: "campaigns:write", Name: "编辑活动", Description: "隐含查看活动", Module: models.ModuleCampaigns, Action: models.ActionWrite},
	{Key: "campaigns:send", Name: "投递活动", Module: models.ModuleCampaigns, Action: models.ActionSend},
	{Key: "campaigns:export", Name: "导出活动数据", Module: models.ModuleCampaigns, Action: models.ActionExport},
	{Key: "segments:read", Name: "查看分群", Module: models.ModuleSegments, Action: models.ActionRead},
	{Key: "segments:write", Name: "编辑分群", Description: "隐含查看分群", Module: models.ModuleSegments, Action: models.ActionWrite},
	{Key: "contacts:read", Name: "查看联系人", Module: models.ModuleContacts, Action: models.ActionRead},
	{Key: "contacts:write", Name: "编辑联系人", Description: "隐含查看联系人", Module: models.ModuleContacts, Action: models.ActionWrite},
	{Key: "contacts:export", Name: "导出联系人", Module: models.ModuleContacts, Action: models.ActionExport},
	{Key: "reports:read", Name: "查看报表", Module: models.ModuleReports, Action: models.ActionRead},
	{Key: "reports:export", Name: "导出报表", Module: models.ModuleReports, Action: models.ActionExport},
	{Key: "billing:read", Name: "查看账单", Module: models.ModuleBilling, Action: models.ActionRead},
	{Key: "billing:manage", Name: "管理账单", Module: models.ModuleBilling, Action: models.ActionManage},
	{Key: "settings:read", Name: "查看设置", Module: models.ModuleSettings, Action: models.ActionRead},
	{Key: "settings:manage", Name: "管理设置", Module: models.ModuleSettings, Action: models.ActionManage},
	{Key: "roles:read", Name: "查看角色", Module: models.ModuleRoles, Action: models.ActionRead},
	{Key: "roles:manage", Name: "管理角色", Module: models.ModuleRoles, Action: models.ActionManage},
	{Key: "users:read", Name: "查看用户", Module: models.ModuleUsers, Action: models.ActionRead},
	{Key: "users:manage", Name: "管理用户", Module: models.ModuleUsers, Action: models.ActionManage},
	{Key: "orgs:read", Name: "查看组织", Module: models.ModuleOrgs, Action: models.ActionRead},
	{Key: "orgs:manage", Name: "管理组织", Module: models.ModuleOrgs, Action: models.ActionManage},
	{Key: "sync:trigger", Name: "触发数据同步", Module: models.ModuleSync, Action: models.ActionTrigger},
}

// 系统角色的权限分配（admin获得全部权限，单独处理）
var systemRolePermissions = map[string][]string{
	models.RoleMarketer: {"campaigns:read", "campaigns:write", "segments:read"},
	models.RoleAnalyst:  {"reports:read", "segments:read"},
}

var systemRoleNames = map[string]string{
	models.RoleAdmin:    "管理员",
	models.RoleMarketer: "营销专员",
	models.RoleAnalyst:  "分析师",
}

// seedData 初始化种子数据，可重复执行
func seedData(db *gorm.DB) error {
	appLogger := logger.GetLogger()

	// 1. 权限目录
	for _, p := range permissionCatalog {
		permission := models.Permission{
			Key:         p.Key,
			Name:        p.Name,
			Description: p.Description,
			Module:      p.Module,
			Action:      p.Action,
		}
		if err := db.Where("key = ?", p.Key).FirstOrCreate(&permission).Error; err != nil {
			return err
		}
	}

	var allPermissions []models.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		return err
	}
	permByKey := make(map[string]models.Permission, len(allPermissions))
	for _, p := range allPermissions {
		permByKey[p.Key] = p
	}

	// 2. 系统角色（全局作用域，organization_id为空）
	for _, key := range []string{models.RoleAdmin, models.RoleMarketer, models.RoleAnalyst} {
		role := models.Role{
			Key:      key,
			Name:     systemRoleNames[key],
			IsSystem: true,
		}
		err := db.Where("key = ? AND organization_id IS NULL", key).FirstOrCreate(&role).Error
		if err != nil {
			return err
		}

		var grant []models.Permission
		if key == models.RoleAdmin {
			grant = allPermissions
		} else {
			for _, permKey := range systemRolePermissions[key] {
				if p, ok := permByKey[permKey]; ok {
					grant = append(grant, p)
				}
			}
		}
		if err := db.Model(&role).Association("Permissions").Replace(grant); err != nil {
			return err
		}
	}

	// 3. 默认组织
	org := models.Organization{
		Name:   "默认组织",
		Slug:   "default",
		Status: models.OrgStatusActive,
	}
	if err := db.Where("slug = ?", org.Slug).FirstOrCreate(&org).Error; err != nil {
		return err
	}

	// 4. 默认管理员（已存在则跳过）
	var adminCount int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&adminCount)
	if adminCount == 0 {
		var adminRole models.Role
		if err := db.Where("key = ? AND organization_id IS NULL", models.RoleAdmin).First(&adminRole).Error; err != nil {
			return err
		}

		admin := models.User{
			OrganizationID: org.ID,
			Username:       "admin",
			Email:          "admin@example.com",
			Name:           "系统管理员",
			Status:         models.UserStatusActive,
			RoleID:         &adminRole.ID,
		}
		if err := admin.SetPassword("admin123456"); err != nil {
			return err
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			assignment := models.UserRole{UserID: admin.ID, RoleID: adminRole.ID}
			return tx.Create(&assignment).Error
		})
		if err != nil {
			return err
		}
		appLogger.Warn("已创建默认管理员账号 admin，首次登录后请立即修改密码")
	}

	appLogger.Info("种子数据初始化完成")
	return nil
}
