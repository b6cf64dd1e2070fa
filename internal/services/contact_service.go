package services

import (
	"errors"
	"fmt"
	"strings"

	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContactService 联系人服务
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// Create 创建联系人（邮箱组织内唯一）
func (s *ContactService) Create(organizationID uint, email, name string, attributes datatypes.JSON) (*models.Contact, error) {
	if !strings.Contains(email, "@") {
		return nil, apperrors.Validation("邮箱格式错误")
	}

	var count int64
	s.db.Model(&models.Contact{}).
		Where("organization_id = ? AND email = ?", organizationID, email).
		Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("联系人邮箱已存在")
	}

	contact := &models.Contact{
		OrganizationID: organizationID,
		Email:          email,
		Name:           name,
		Attributes:     attributes,
		Subscribed:     true,
	}

	if err := s.db.Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// GetByID 获取联系人（组织隔离）
func (s *ContactService) GetByID(organizationID, id uint) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.Where("organization_id = ?", organizationID).First(&contact, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("联系人不存在")
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetWithPage 分页获取组织的联系人列表
func (s *ContactService) GetWithPage(organizationID uint, keyword string, page, pageSize int) ([]*models.Contact, int64, error) {
	var contacts []*models.Contact
	var total int64

	query := s.db.Model(&models.Contact{}).Where("organization_id = ?", organizationID)
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("email LIKE ? OR name LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

// Update 更新联系人
func (s *ContactService) Update(organizationID, id uint, name string, attributes datatypes.JSON, subscribed bool) (*models.Contact, error) {
	contact, err := s.GetByID(organizationID, id)
	if err != nil {
		return nil, err
	}

	contact.Name = name
	contact.Attributes = attributes
	contact.Subscribed = subscribed

	if err := s.db.Save(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete 删除联系人
func (s *ContactService) Delete(organizationID, id uint) error {
	contact, err := s.GetByID(organizationID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(contact).Error
}
