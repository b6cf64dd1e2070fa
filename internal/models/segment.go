package models

import "gorm.io/datatypes"

// Segment 联系人分群模型
type Segment struct {
	BaseModel
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null;size:100"`
	Description    string         `json:"description" gorm:"size:255"`
	Rules          datatypes.JSON `json:"rules" gorm:"type:json"` // 分群规则定义
	ContactCount   int64          `json:"contact_count" gorm:"default:0"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TableName 表名
func (s *Segment) TableName() string {
	return "segments"
}
