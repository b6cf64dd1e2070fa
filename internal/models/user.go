package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型
// 主体 = (用户, 所属组织)。RoleID是历史单角色列，
// 解析权限时与user_roles多角色关联合并为一个角色集合
type User struct {
	BaseModel
	OrganizationID uint       `json:"organization_id" gorm:"not null;index"`
	Username       string     `json:"username" gorm:"unique;not null;size:50;index"`
	Email          string     `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash   string     `json:"-" gorm:"not null;size:255"`
	Name           string     `json:"name" gorm:"not null;size:100"`
	Status         string     `json:"status" gorm:"default:'active';size:20"`
	RoleID         *uint      `json:"role_id" gorm:"index"` // 历史单角色列
	LastLoginAt    *time.Time `json:"last_login_at"`

	// 关联关系
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Role         *Role         `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Roles        []Role        `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// UserRole 用户角色关联表
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_role" json:"user_id"`
	RoleID    uint      `gorm:"not null;index;uniqueIndex:idx_user_role" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uint      `json:"created_by"` // 谁分配的角色
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// AssignedRoles 获取用户的角色集合
// 历史单角色列与多角色关联合并去重，单角色视为退化的单元素集合
func (u *User) AssignedRoles(db *gorm.DB) ([]Role, error) {
	var roles []Role
	err := db.Preload("Permissions").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", u.ID).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	if u.RoleID != nil {
		found := false
		for _, r := range roles {
			if r.ID == *u.RoleID {
				found = true
				break
			}
		}
		if !found {
			var legacy Role
			if err := db.Preload("Permissions").First(&legacy, *u.RoleID).Error; err == nil {
				roles = append(roles, legacy)
			}
		}
	}

	return roles, nil
}
