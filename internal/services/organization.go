package services

import (
	"errors"
	"unicode/utf8"

	"engage/internal/database"
	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/gorm"
)

// OrganizationService 组织服务 - 业务逻辑层
type OrganizationService struct {
	db *gorm.DB
}

func NewOrganizationService() *OrganizationService {
	return &OrganizationService{
		db: database.GetDB(),
	}
}

// NewOrganizationServiceWithDB 指定数据库实例创建（测试用）
func NewOrganizationServiceWithDB(db *gorm.DB) *OrganizationService {
	return &OrganizationService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建组织
func (s *OrganizationService) Create(name, slug string) (*models.Organization, error) {
	if err := s.ValidateCreateParams(name, slug); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("组织slug已存在")
	}

	org := &models.Organization{
		Name:   name,
		Slug:   slug,
		Status: models.OrgStatusActive,
	}

	if err := s.db.Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// GetByID 根据ID获取组织
func (s *OrganizationService) GetByID(id uint) (*models.Organization, error) {
	var org models.Organization
	err := s.db.First(&org, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("组织不存在")
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetWithPage 分页获取组织列表
func (s *OrganizationService) GetWithPage(status string, page, pageSize int) ([]*models.Organization, int64, error) {
	var orgs []*models.Organization
	var total int64

	query := s.db.Model(&models.Organization{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&orgs).Error
	if err != nil {
		return nil, 0, err
	}

	return orgs, total, nil
}

// Update 更新组织名称
func (s *OrganizationService) Update(id uint, name string) (*models.Organization, error) {
	org, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100 {
		return nil, apperrors.Validation("组织名称长度必须在2-100个字符之间")
	}

	org.Name = name
	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// SetStatus 设置组织状态
// 组织从不物理删除，下线即置disabled
func (s *OrganizationService) SetStatus(id uint, status string) (*models.Organization, error) {
	if status != models.OrgStatusActive && status != models.OrgStatusDisabled {
		return nil, apperrors.Validation("状态只能是active或disabled")
	}

	org, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	org.Status = status
	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// ========== 验证方法 ==========

// ValidateCreateParams 验证创建组织的参数
func (s *OrganizationService) ValidateCreateParams(name, slug string) error {
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100 {
		return apperrors.Validation("组织名称长度必须在2-100个字符之间")
	}
	if len(slug) < 2 || len(slug) > 50 {
		return apperrors.Validation("组织slug长度必须在2-50个字符之间")
	}
	for _, r := range slug {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return apperrors.Validation("组织slug只能包含小写字母、数字和连字符")
		}
	}
	return nil
}
