package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"engage/internal/database"
	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService() *UserService {
	return &UserService{
		db: database.GetDB(),
	}
}

// NewUserServiceWithDB 指定数据库实例创建（测试用）
func NewUserServiceWithDB(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
// roleID可空；指定时必须对用户所在组织可见（全局或同组织角色）
func (s *UserService) Create(organizationID uint, username, email, password, name string, roleID *uint) (*models.User, error) {
	if err := s.ValidateCreateParams(username, email, password, name); err != nil {
		return nil, err
	}

	var orgCount int64
	s.db.Model(&models.Organization{}).Where("id = ?", organizationID).Count(&orgCount)
	if orgCount == 0 {
		return nil, apperrors.NotFound("组织不存在")
	}

	var usernameCount int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&usernameCount)
	if usernameCount > 0 {
		return nil, apperrors.Conflict("用户名已存在")
	}

	var emailCount int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&emailCount)
	if emailCount > 0 {
		return nil, apperrors.Conflict("邮箱已存在")
	}

	if roleID != nil {
		if err := s.checkRoleVisible(*roleID, organizationID); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		OrganizationID: organizationID,
		Username:       username,
		Email:          email,
		Name:           name,
		Status:         models.UserStatusActive,
		RoleID:         roleID,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("密码加密失败: %v", err)
	}

	// 用户与初始角色分配在同一事务内落库
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if roleID != nil {
			assignment := &models.UserRole{UserID: user.ID, RoleID: *roleID}
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Organization").Preload("Role").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Organization").Preload("Role").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *UserService) GetWithFiltersAndPage(organizationID *uint, status, keyword string, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{})

	if organizationID != nil {
		query = query.Where("organization_id = ?", *organizationID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("username LIKE ? OR email LIKE ? OR name LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Organization").Preload("Role").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户基础信息
func (s *UserService) Update(id uint, name, email string) (*models.User, error) {
	if err := s.ValidateUpdateParams(name, email); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}

	if user.Email != email {
		var emailCount int64
		s.db.Model(&models.User{}).Where("email = ? AND id != ?", email, id).Count(&emailCount)
		if emailCount > 0 {
			return nil, apperrors.Conflict("邮箱已存在")
		}
	}

	user.Name = name
	user.Email = email

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateStatus 更新用户状态
// 禁止操作者停用自己的账号
func (s *UserService) UpdateStatus(actorID, id uint, status string) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusDisabled {
		return nil, apperrors.Validation("状态只能是active或disabled")
	}

	if actorID == id && status == models.UserStatusDisabled {
		return nil, apperrors.Forbidden("不能停用自己的账号")
	}

	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin 更新最后登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", &now).Error
}

// IsActive 用户是否处于激活状态
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// ========== 角色分配方法 ==========

// AssignRoles 整体替换用户的角色分配
// 每个角色必须对用户所在组织可见：跨组织分配他组织的私有角色直接拒绝
func (s *UserService) AssignRoles(actorID, userID uint, roleIDs []uint) error {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return err
	}

	for _, roleID := range roleIDs {
		if err := s.checkRoleVisible(roleID, user.OrganizationID); err != nil {
			return err
		}
	}

	// 删除+插入在同一事务内提交
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			assignment := &models.UserRole{UserID: userID, RoleID: roleID, CreatedBy: actorID}
			if err := tx.Create(assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveRole 移除用户的单个角色分配
func (s *UserService) RemoveRole(userID, roleID uint) error {
	result := s.db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("角色分配不存在")
	}
	return nil
}

// GetUserRoles 获取用户的角色列表（含历史单角色列，对组织不可见的已过滤）
func (s *UserService) GetUserRoles(userID uint) ([]models.Role, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("用户不存在")
	}
	if err != nil {
		return nil, err
	}

	roles, err := user.AssignedRoles(s.db)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Role, 0, len(roles))
	for _, role := range roles {
		if role.VisibleTo(user.OrganizationID) {
			visible = append(visible, role)
		}
	}
	return visible, nil
}

// checkRoleVisible 校验角色对组织可见（全局角色或同组织角色）
func (s *UserService) checkRoleVisible(roleID, organizationID uint) error {
	var role models.Role
	err := s.db.First(&role, roleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("角色不存在")
	}
	if err != nil {
		return err
	}

	if !role.VisibleTo(organizationID) {
		return apperrors.Validation("角色属于其他组织，不能分配")
	}
	return nil
}

// ========== 验证方法 ==========

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(username, email, password, name string) error {
	if len(username) < 3 || len(username) > 50 {
		return apperrors.Validation("用户名长度必须在3-50个字符之间")
	}
	if !strings.Contains(email, "@") {
		return apperrors.Validation("邮箱格式错误")
	}
	if len(password) < 8 {
		return apperrors.Validation("密码长度不能少于8个字符")
	}
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 50 {
		return apperrors.Validation("姓名长度必须在2-50个字符之间")
	}
	return nil
}

// ValidateUpdateParams 验证更新用户的参数
func (s *UserService) ValidateUpdateParams(name, email string) error {
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 50 {
		return apperrors.Validation("姓名长度必须在2-50个字符之间")
	}
	if !strings.Contains(email, "@") {
		return apperrors.Validation("邮箱格式错误")
	}
	return nil
}
