package models

import (
	"time"

	"gorm.io/datatypes"
)

// Campaign 营销活动模型
type Campaign struct {
	BaseModel
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null;size:100"`
	Subject        string         `json:"subject" gorm:"size:200"`
	Content        datatypes.JSON `json:"content" gorm:"type:json"` // 活动内容（渠道、模板变量等）
	Status         string         `json:"status" gorm:"default:'draft';size:20"`
	SegmentID      *uint          `json:"segment_id" gorm:"index"`
	ScheduledAt    *time.Time     `json:"scheduled_at"` // 定时投递时间
	SentAt         *time.Time     `json:"sent_at"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Segment      *Segment      `gorm:"foreignKey:SegmentID" json:"segment,omitempty"`
}

// TableName 表名
func (c *Campaign) TableName() string {
	return "campaigns"
}

// 活动状态常量
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusSending   = "sending"
	CampaignStatusSent      = "sent"
)
