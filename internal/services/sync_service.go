package services

import (
	"errors"

	"engage/internal/models"
	apperrors "engage/pkg/errors"
	"engage/pkg/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncService 数据同步服务
// 同步任务可由全局管理员代其他组织触发（跨组织白名单见中间件），
// 本服务只负责落库和入队，实际执行在队列消费端
type SyncService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

func NewSyncService(db *gorm.DB, q *queue.RedisQueue) *SyncService {
	return &SyncService{db: db, queue: q}
}

// 支持的同步类型
const (
	SyncKindContacts      = "contacts"
	SyncKindCampaignStats = "campaign_stats"
)

// Trigger 触发同步任务
func (s *SyncService) Trigger(organizationID, userID uint, username, kind string) (*models.SyncJob, error) {
	if kind != SyncKindContacts && kind != SyncKindCampaignStats {
		return nil, apperrors.Validation("不支持的同步类型: %s", kind)
	}

	var orgCount int64
	s.db.Model(&models.Organization{}).Where("id = ?", organizationID).Count(&orgCount)
	if orgCount == 0 {
		return nil, apperrors.NotFound("组织不存在")
	}

	job := &models.SyncJob{
		JobID:          uuid.New().String(),
		OrganizationID: organizationID,
		Kind:           kind,
		Status:         models.SyncJobStatusQueued,
		TriggeredBy:    userID,
	}

	if err := s.db.Create(job).Error; err != nil {
		return nil, err
	}

	err := s.queue.Enqueue(job.JobID, queue.JobTypeDataSync, organizationID, userID, username, "api", map[string]interface{}{
		"kind": kind,
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}

// GetByJobID 根据任务UUID获取同步任务
func (s *SyncService) GetByJobID(organizationID uint, jobID string) (*models.SyncJob, error) {
	var job models.SyncJob
	err := s.db.Where("organization_id = ? AND job_id = ?", organizationID, jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("同步任务不存在")
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetWithPage 分页获取组织的同步任务列表
func (s *SyncService) GetWithPage(organizationID uint, page, pageSize int) ([]*models.SyncJob, int64, error) {
	var jobs []*models.SyncJob
	var total int64

	query := s.db.Model(&models.SyncJob{}).Where("organization_id = ?", organizationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}
