package services

import (
	"fmt"
	"time"

	"engage/internal/models"
	"engage/pkg/logger"
	"engage/pkg/queue"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CampaignScheduler 定时投递调度器
// 周期扫描到期的scheduled活动并入队投递任务
type CampaignScheduler struct {
	db      *gorm.DB
	queue   *queue.RedisQueue
	cron    *cron.Cron
	spec    string
	running bool
}

// NewCampaignScheduler 创建定时投递调度器
func NewCampaignScheduler(db *gorm.DB, q *queue.RedisQueue, spec string) *CampaignScheduler {
	return &CampaignScheduler{
		db:    db,
		queue: q,
		cron:  cron.New(),
		spec:  spec,
	}
}

// Start 启动调度器
func (s *CampaignScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	if _, err := s.cron.AddFunc(s.spec, s.dispatchDue); err != nil {
		return fmt.Errorf("无效的cron表达式: %s", s.spec)
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Infof("定时投递调度器已启动，扫描周期: %s", s.spec)
	return nil
}

// Stop 停止调度器
func (s *CampaignScheduler) Stop() {
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	logger.GetLogger().Info("定时投递调度器已停止")
}

// dispatchDue 扫描并投递到期活动
func (s *CampaignScheduler) dispatchDue() {
	appLogger := logger.GetLogger()

	var campaigns []models.Campaign
	err := s.db.Where("status = ? AND scheduled_at <= ?", models.CampaignStatusScheduled, time.Now()).
		Find(&campaigns).Error
	if err != nil {
		appLogger.Errorf("扫描到期活动失败: %v", err)
		return
	}

	for _, campaign := range campaigns {
		now := time.Now()
		// 先抢占状态再入队，避免下个扫描周期重复投递
		result := s.db.Model(&models.Campaign{}).
			Where("id = ? AND status = ?", campaign.ID, models.CampaignStatusScheduled).
			Updates(map[string]interface{}{"status": models.CampaignStatusSending, "sent_at": now})
		if result.Error != nil {
			appLogger.Errorf("更新活动 %d 状态失败: %v", campaign.ID, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}

		jobID := uuid.New().String()
		params := map[string]interface{}{
			"campaign_id": campaign.ID,
		}
		if campaign.SegmentID != nil {
			params["segment_id"] = *campaign.SegmentID
		}
		if err := s.queue.Enqueue(jobID, queue.JobTypeCampaignDispatch, campaign.OrganizationID, 0, "scheduler", "scheduler", params); err != nil {
			appLogger.Errorf("活动 %d 入队失败: %v", campaign.ID, err)
			continue
		}

		appLogger.Infof("定时活动 %d 已入队投递，任务ID: %s", campaign.ID, jobID)
	}
}
