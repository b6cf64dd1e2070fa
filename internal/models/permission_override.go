package models

import "time"

// PermissionOverride 用户级权限例外
// IsAllowed=true 无视角色授予直接放行；false 无视角色授予直接收回。
// 不存在记录表示完全由角色推导决定
type PermissionOverride struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index;uniqueIndex:idx_user_perm_key" json:"user_id"`
	PermissionKey string    `gorm:"size:100;not null;uniqueIndex:idx_user_perm_key" json:"permission_key"`
	IsAllowed     bool      `gorm:"not null" json:"is_allowed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CreatedBy     uint      `json:"created_by"` // 操作的管理员ID
}

// TableName 表名
func (PermissionOverride) TableName() string {
	return "permission_overrides"
}
