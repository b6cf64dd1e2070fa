package services

import (
	"errors"

	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SegmentService 联系人分群服务
type SegmentService struct {
	db *gorm.DB
}

func NewSegmentService(db *gorm.DB) *SegmentService {
	return &SegmentService{db: db}
}

// Create 创建分群
func (s *SegmentService) Create(organizationID uint, name, description string, rules datatypes.JSON) (*models.Segment, error) {
	if name == "" {
		return nil, apperrors.Validation("分群名称不能为空")
	}

	segment := &models.Segment{
		OrganizationID: organizationID,
		Name:           name,
		Description:    description,
		Rules:          rules,
	}

	if err := s.db.Create(segment).Error; err != nil {
		return nil, err
	}
	return segment, nil
}

// GetByID 获取分群（组织隔离）
func (s *SegmentService) GetByID(organizationID, id uint) (*models.Segment, error) {
	var segment models.Segment
	err := s.db.Where("organization_id = ?", organizationID).First(&segment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("分群不存在")
	}
	if err != nil {
		return nil, err
	}
	return &segment, nil
}

// GetWithPage 分页获取组织的分群列表
func (s *SegmentService) GetWithPage(organizationID uint, page, pageSize int) ([]*models.Segment, int64, error) {
	var segments []*models.Segment
	var total int64

	query := s.db.Model(&models.Segment{}).Where("organization_id = ?", organizationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&segments).Error
	if err != nil {
		return nil, 0, err
	}

	return segments, total, nil
}

// Update 更新分群
func (s *SegmentService) Update(organizationID, id uint, name, description string, rules datatypes.JSON) (*models.Segment, error) {
	segment, err := s.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, apperrors.Validation("分群名称不能为空")
	}

	segment.Name = name
	segment.Description = description
	segment.Rules = rules

	if err := s.db.Save(segment).Error; err != nil {
		return nil, err
	}
	return segment, nil
}

// Delete 删除分群（被活动引用的不可删除）
func (s *SegmentService) Delete(organizationID, id uint) error {
	segment, err := s.GetByID(organizationID, id)
	if err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.Campaign{}).Where("segment_id = ?", id).Count(&count)
	if count > 0 {
		return apperrors.Validation("分群已被活动引用，不可删除")
	}

	return s.db.Delete(segment).Error
}
