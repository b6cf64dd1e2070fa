package models

// Permission 权限模型（全局目录，仅由种子数据维护）
type Permission struct {
	BaseModel
	Key         string `gorm:"uniqueIndex;size:100;not null" json:"key"` // 权限key，如 "campaigns:write"
	Name        string `gorm:"size:100;not null" json:"name"`            // 权限名称，如 "编辑活动"
	Description string `gorm:"size:255" json:"description"`              // 权限描述
	Module      string `gorm:"size:50;not null" json:"module"`           // 所属模块，如 "campaigns"
	Action      string `gorm:"size:50;not null" json:"action"`           // 操作类型，如 "read", "write"
}

// 权限模块常量
const (
	ModuleCampaigns = "campaigns" // 活动管理
	ModuleSegments  = "segments"  // 分群管理
	ModuleContacts  = "contacts"  // 联系人管理
	ModuleReports   = "reports"   // 报表
	ModuleBilling   = "billing"   // 账单
	ModuleSettings  = "settings"  // 设置
	ModuleRoles     = "roles"     // 角色管理
	ModuleUsers     = "users"     // 用户管理
	ModuleOrgs      = "orgs"      // 组织管理
	ModuleSync      = "sync"      // 数据同步
)

// 权限操作常量
const (
	ActionRead    = "read"    // 读取
	ActionWrite   = "write"   // 写入（隐含read）
	ActionManage  = "manage"  // 管理
	ActionExport  = "export"  // 导出
	ActionSend    = "send"    // 发送
	ActionTrigger = "trigger" // 触发
)
