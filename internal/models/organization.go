package models

// Organization 组织模型（租户边界）- 贫血模型，只包含数据结构
type Organization struct {
	BaseModel
	Name      string `json:"name" gorm:"not null;size:100"`
	Slug      string `json:"slug" gorm:"unique;not null;size:50;index"`
	Status    string `json:"status" gorm:"default:'active';size:20"`
	UserCount int    `json:"user_count" gorm:"-"` // 用户数量，不存储在数据库中
}

// TableName 表名
func (o *Organization) TableName() string {
	return "organizations"
}

// 组织状态常量
// 组织从不物理删除，只能置为disabled
const (
	OrgStatusActive   = "active"
	OrgStatusDisabled = "disabled"
)
