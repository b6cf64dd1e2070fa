package services

import (
	"engage/internal/database"
	"engage/internal/models"

	"gorm.io/gorm"
)

// PermissionService 权限目录服务
// 目录是封闭集合，只由种子数据写入，对外只读
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService() *PermissionService {
	return &PermissionService{
		db: database.GetDB(),
	}
}

// NewPermissionServiceWithDB 指定数据库实例创建（测试用）
func NewPermissionServiceWithDB(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// GetWithPage 分页获取权限目录
func (s *PermissionService) GetWithPage(module string, page, pageSize int) ([]*models.Permission, int64, error) {
	var permissions []*models.Permission
	var total int64

	query := s.db.Model(&models.Permission{})

	// 按模块筛选
	if module != "" {
		query = query.Where("module = ?", module)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("module, action").Offset(offset).Limit(pageSize).Find(&permissions).Error
	if err != nil {
		return nil, 0, err
	}

	return permissions, total, nil
}

// GetByModule 获取指定模块的权限
func (s *PermissionService) GetByModule(module string) ([]*models.Permission, error) {
	var permissions []*models.Permission
	err := s.db.Where("module = ?", module).Order("action").Find(&permissions).Error
	return permissions, err
}
