package models

import "time"

// Role 角色模型
// OrganizationID为空表示全局/系统角色，对所有组织可见；
// 非空表示该组织私有的自定义角色。用可空外键而非0值哨兵，
// 使可见性规则在类型上显式（见RoleScope）
type Role struct {
	BaseModel
	OrganizationID *uint  `gorm:"index;uniqueIndex:idx_org_role_key" json:"organization_id"`
	Key            string `gorm:"size:100;not null;uniqueIndex:idx_org_role_key" json:"key"` // 角色key，如 "marketer"
	Name           string `gorm:"size:100;not null" json:"name"`                             // 角色名称，如 "营销专员"
	Description    string `gorm:"size:255" json:"description"`                               // 角色描述
	IsSystem       bool   `gorm:"default:false" json:"is_system"`                            // 系统角色：key与作用域不可变，不可删除

	// 关联关系
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Permissions  []Permission  `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// RoleScope 角色作用域
type RoleScope string

const (
	RoleScopeGlobal RoleScope = "global" // 系统角色，所有组织可见
	RoleScopeOrg    RoleScope = "org"    // 组织私有自定义角色
)

// Scope 返回角色作用域
func (r *Role) Scope() RoleScope {
	if r.OrganizationID == nil {
		return RoleScopeGlobal
	}
	return RoleScopeOrg
}

// VisibleTo 角色对指定组织是否可见（全局或同组织）
func (r *Role) VisibleTo(organizationID uint) bool {
	return r.OrganizationID == nil || *r.OrganizationID == organizationID
}

// PermissionKeys 返回角色授予的权限key列表
func (r *Role) PermissionKeys() []string {
	keys := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		keys = append(keys, p.Key)
	}
	return keys
}

// 系统预定义角色常量
const (
	RoleAdmin    = "admin"    // 管理员（唯一允许跨组织操作的角色）
	RoleMarketer = "marketer" // 营销专员
	RoleAnalyst  = "analyst"  // 分析师
)

// RolePermission 角色权限关联表
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	PermissionID uint      `gorm:"not null;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}
