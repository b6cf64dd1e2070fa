package services

import (
	"errors"
	"time"

	"engage/internal/models"
	apperrors "engage/pkg/errors"
	"engage/pkg/queue"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CampaignService 营销活动服务
type CampaignService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

func NewCampaignService(db *gorm.DB, q *queue.RedisQueue) *CampaignService {
	return &CampaignService{db: db, queue: q}
}

// ========== 基础CRUD方法 ==========

// Create 创建活动（草稿状态）
func (s *CampaignService) Create(organizationID uint, name, subject string, content datatypes.JSON, segmentID *uint) (*models.Campaign, error) {
	if name == "" {
		return nil, apperrors.Validation("活动名称不能为空")
	}

	// 分群必须属于同一组织
	if segmentID != nil {
		var count int64
		s.db.Model(&models.Segment{}).
			Where("id = ? AND organization_id = ?", *segmentID, organizationID).
			Count(&count)
		if count == 0 {
			return nil, apperrors.NotFound("分群不存在")
		}
	}

	campaign := &models.Campaign{
		OrganizationID: organizationID,
		Name:           name,
		Subject:        subject,
		Content:        content,
		Status:         models.CampaignStatusDraft,
		SegmentID:      segmentID,
	}

	if err := s.db.Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetByID 获取活动（组织隔离：他组织的活动视为不存在）
func (s *CampaignService) GetByID(organizationID, id uint) (*models.Campaign, error) {
	var campaign models.Campaign
	err := s.db.Preload("Segment").
		Where("organization_id = ?", organizationID).
		First(&campaign, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("活动不存在")
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetWithPage 分页获取组织的活动列表
func (s *CampaignService) GetWithPage(organizationID uint, status string, page, pageSize int) ([]*models.Campaign, int64, error) {
	var campaigns []*models.Campaign
	var total int64

	query := s.db.Model(&models.Campaign{}).Where("organization_id = ?", organizationID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&campaigns).Error
	if err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// Update 更新活动（仅草稿可编辑）
func (s *CampaignService) Update(organizationID, id uint, name, subject string, content datatypes.JSON) (*models.Campaign, error) {
	campaign, err := s.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}

	if campaign.Status != models.CampaignStatusDraft {
		return nil, apperrors.Validation("只有草稿状态的活动可以编辑")
	}

	campaign.Name = name
	campaign.Subject = subject
	campaign.Content = content

	if err := s.db.Save(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// Schedule 设置定时投递
func (s *CampaignService) Schedule(organizationID, id uint, at time.Time) (*models.Campaign, error) {
	campaign, err := s.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}

	if campaign.Status != models.CampaignStatusDraft {
		return nil, apperrors.Validation("只有草稿状态的活动可以定时")
	}
	if at.Before(time.Now()) {
		return nil, apperrors.Validation("定时投递时间必须晚于当前时间")
	}

	campaign.Status = models.CampaignStatusScheduled
	campaign.ScheduledAt = &at

	if err := s.db.Save(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

// Dispatch 立即投递：置为发送中并入队投递任务
func (s *CampaignService) Dispatch(organizationID, id, userID uint, username, source string) (*models.Campaign, error) {
	campaign, err := s.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}

	if campaign.Status == models.CampaignStatusSending || campaign.Status == models.CampaignStatusSent {
		return nil, apperrors.Validation("活动已投递")
	}

	now := time.Now()
	campaign.Status = models.CampaignStatusSending
	campaign.SentAt = &now
	if err := s.db.Save(campaign).Error; err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	params := map[string]interface{}{
		"campaign_id": campaign.ID,
	}
	if campaign.SegmentID != nil {
		params["segment_id"] = *campaign.SegmentID
	}
	if err := s.queue.Enqueue(jobID, queue.JobTypeCampaignDispatch, organizationID, userID, username, source, params); err != nil {
		return nil, err
	}

	return campaign, nil
}

// Delete 删除活动（发送中/已发送的不可删除）
func (s *CampaignService) Delete(organizationID, id uint) error {
	campaign, err := s.GetByID(organizationID, id)
	if err != nil {
		return err
	}

	if campaign.Status == models.CampaignStatusSending || campaign.Status == models.CampaignStatusSent {
		return apperrors.Validation("已投递的活动不可删除")
	}

	return s.db.Delete(campaign).Error
}
