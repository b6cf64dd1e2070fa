package services

import (
	"errors"
	"unicode/utf8"

	"engage/internal/database"
	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService() *RoleService {
	return &RoleService{
		db: database.GetDB(),
	}
}

// NewRoleServiceWithDB 指定数据库实例创建（测试用）
func NewRoleServiceWithDB(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建自定义角色（组织私有）
// 系统角色只能由种子数据创建，不走这里
func (s *RoleService) Create(organizationID uint, key, name, description string) (*models.Role, error) {
	if err := s.ValidateCreateParams(key, name); err != nil {
		return nil, err
	}

	// key在作用域内唯一；同时禁止遮蔽全局系统角色的key，
	// 否则跨组织白名单按key匹配时会被自定义角色冒充
	var count int64
	s.db.Model(&models.Role{}).
		Where("key = ? AND (organization_id = ? OR organization_id IS NULL)", key, organizationID).
		Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("角色key已存在: %s", key)
	}

	role := &models.Role{
		OrganizationID: &organizationID,
		Key:            key,
		Name:           name,
		Description:    description,
		IsSystem:       false,
	}

	if err := s.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// GetByID 根据ID获取角色
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("角色不存在")
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetVisibleToOrg 获取对指定组织可见的角色列表（全局系统角色 + 本组织自定义角色）
func (s *RoleService) GetVisibleToOrg(organizationID uint, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	query := s.db.Model(&models.Role{}).
		Where("organization_id IS NULL OR organization_id = ?", organizationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Permissions").
		Order("is_system DESC, key").
		Offset(offset).Limit(pageSize).
		Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update 更新角色
// 系统角色的key与作用域不可变，改key直接拒绝
func (s *RoleService) Update(id uint, key, name, description string) (*models.Role, error) {
	if err := s.ValidateCreateParams(key, name); err != nil {
		return nil, err
	}

	var role models.Role
	err := s.db.First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("角色不存在")
	}
	if err != nil {
		return nil, err
	}

	if role.IsSystem && key != role.Key {
		return nil, apperrors.Forbidden("系统角色不允许修改key")
	}

	// key变更时在作用域内查重
	if key != role.Key {
		var count int64
		query := s.db.Model(&models.Role{}).Where("key = ? AND id != ?", key, id)
		if role.OrganizationID != nil {
			query = query.Where("organization_id = ? OR organization_id IS NULL", *role.OrganizationID)
		} else {
			query = query.Where("organization_id IS NULL")
		}
		query.Count(&count)
		if count > 0 {
			return nil, apperrors.Conflict("角色key已存在: %s", key)
		}
	}

	role.Key = key
	role.Name = name
	role.Description = description

	if err := s.db.Save(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Delete 删除角色
func (s *RoleService) Delete(id uint) error {
	var role models.Role
	err := s.db.First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("角色不存在")
	}
	if err != nil {
		return err
	}

	if role.IsSystem {
		return apperrors.Forbidden("系统角色不允许删除")
	}

	// 关联边随角色一并清除
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
}

// ========== 权限管理方法 ==========

// ReplacePermissions 整体替换角色的权限集合
// 删除+插入在同一事务内提交，避免并发解析读到角色权限为空的窗口
func (s *RoleService) ReplacePermissions(roleID uint, permissionIDs []uint) error {
	var role models.Role
	err := s.db.First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("角色不存在")
	}
	if err != nil {
		return err
	}

	// 所有权限ID必须有效
	var permissions []models.Permission
	if len(permissionIDs) > 0 {
		if err := s.db.Where("id IN ?", permissionIDs).Find(&permissions).Error; err != nil {
			return err
		}
		if len(permissions) != len(uniqueIDs(permissionIDs)) {
			return apperrors.BadRequest("权限ID列表包含无效ID")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&role).Association("Permissions").Replace(permissions)
	})
}

// GetRolePermissions 获取角色的权限
func (s *RoleService) GetRolePermissions(roleID uint) ([]models.Permission, error) {
	role, err := s.GetByID(roleID)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// ========== 验证方法 ==========

// ValidateKey 验证角色key：2-50个字符，只允许小写字母、数字和下划线
func (s *RoleService) ValidateKey(key string) bool {
	if len(key) < 2 || len(key) > 50 {
		return false
	}
	for _, r := range key {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// ValidateName 验证角色名称
func (s *RoleService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateCreateParams 验证角色参数
func (s *RoleService) ValidateCreateParams(key, name string) error {
	if !s.ValidateKey(key) {
		return apperrors.Validation("角色key长度必须在2-50个字符之间，且只能包含小写字母、数字和下划线")
	}
	if !s.ValidateName(name) {
		return apperrors.Validation("角色名称长度必须在2-50个字符之间")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
