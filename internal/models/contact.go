package models

import "gorm.io/datatypes"

// Contact 联系人模型
type Contact struct {
	BaseModel
	OrganizationID uint           `json:"organization_id" gorm:"not null;index;uniqueIndex:idx_org_contact_email"`
	Email          string         `json:"email" gorm:"not null;size:100;uniqueIndex:idx_org_contact_email"`
	Name           string         `json:"name" gorm:"size:100"`
	Attributes     datatypes.JSON `json:"attributes" gorm:"type:json"` // 自定义属性
	Subscribed     bool           `json:"subscribed" gorm:"default:true"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TableName 表名
func (c *Contact) TableName() string {
	return "contacts"
}
