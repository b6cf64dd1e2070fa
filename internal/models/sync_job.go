package models

// SyncJob 数据同步任务记录
// 由全局管理员跨组织触发或组织内自行触发，实际执行在队列消费端
type SyncJob struct {
	BaseModel
	JobID          string `json:"job_id" gorm:"uniqueIndex;size:36;not null"` // 队列任务UUID
	OrganizationID uint   `json:"organization_id" gorm:"not null;index"`
	Kind           string `json:"kind" gorm:"size:50;not null"` // contacts / campaign_stats
	Status         string `json:"status" gorm:"default:'queued';size:20"`
	TriggeredBy    uint   `json:"triggered_by"` // 发起人用户ID

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TableName 表名
func (s *SyncJob) TableName() string {
	return "sync_jobs"
}

// 同步任务状态常量
const (
	SyncJobStatusQueued  = "queued"
	SyncJobStatusRunning = "running"
	SyncJobStatusSuccess = "success"
	SyncJobStatusFailed  = "failed"
)
