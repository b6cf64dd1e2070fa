package services

import (
	"errors"

	"engage/internal/authz"
	"engage/internal/database"
	"engage/internal/models"
	apperrors "engage/pkg/errors"

	"gorm.io/gorm"
)

// AuthzService 授权解析服务
// 负责把主体的角色分配与权限例外解析为有效权限集合。
// 解析是只读无副作用的纯计算，每次请求重新执行，结果只在请求上下文内复用
type AuthzService struct {
	db *gorm.DB
}

func NewAuthzService() *AuthzService {
	return &AuthzService{
		db: database.GetDB(),
	}
}

// NewAuthzServiceWithDB 指定数据库实例创建（测试用）
func NewAuthzServiceWithDB(db *gorm.DB) *AuthzService {
	return &AuthzService{db: db}
}

// PrincipalAccess 主体的解析结果：角色key集合与有效权限集合
type PrincipalAccess struct {
	RoleKeys    []string
	Permissions authz.PermissionSet
}

// HasRole 主体是否持有指定角色
func (a *PrincipalAccess) HasRole(roleKey string) bool {
	for _, key := range a.RoleKeys {
		if key == roleKey {
			return true
		}
	}
	return false
}

// ResolveAccess 解析主体的角色集合与有效权限集合
//
// 算法：
//  1. 取主体全部角色分配，过滤为对主体组织可见的角色（全局或同组织）
//  2. 合并角色授予为基础集合
//  3. 先减去否定例外，再并入肯定例外
//  4. 补全写隐含读的推导权限
//  5. 再次减去否定例外——否定例外无条件胜出，
//     对X:write的否定在推导前剔除write，由此派生的X:read也不会保留
func (s *AuthzService) ResolveAccess(userID uint) (*PrincipalAccess, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("用户不存在")
		}
		return nil, err
	}

	roles, err := user.AssignedRoles(s.db)
	if err != nil {
		return nil, err
	}

	// 角色可见性过滤：分配了不可见角色属于写入期应当拦截的数据完整性问题，
	// 解析器只做过滤不做报错
	base := authz.NewPermissionSet()
	roleKeys := make([]string, 0, len(roles))
	for _, role := range roles {
		if !role.VisibleTo(user.OrganizationID) {
			continue
		}
		roleKeys = append(roleKeys, role.Key)
		for _, permission := range role.Permissions {
			base.Add(permission.Key)
		}
	}

	// 权限例外
	var overrides []models.PermissionOverride
	if err := s.db.Where("user_id = ?", userID).Find(&overrides).Error; err != nil {
		return nil, err
	}

	work := base.Clone()
	for _, override := range overrides {
		if !override.IsAllowed {
			work.Remove(override.PermissionKey)
		}
	}
	for _, override := range overrides {
		if override.IsAllowed {
			work.Add(override.PermissionKey)
		}
	}

	effective := authz.ExpandImpliedReads(work)

	for _, override := range overrides {
		if !override.IsAllowed {
			effective.Remove(override.PermissionKey)
		}
	}

	return &PrincipalAccess{
		RoleKeys:    roleKeys,
		Permissions: effective,
	}, nil
}

// ResolveEffectivePermissions 解析主体的有效权限集合
func (s *AuthzService) ResolveEffectivePermissions(userID uint) (authz.PermissionSet, error) {
	access, err := s.ResolveAccess(userID)
	if err != nil {
		return nil, err
	}
	return access.Permissions, nil
}

// ========== 权限例外管理 ==========

// SetOverride 设置用户权限例外（存在则更新）
func (s *AuthzService) SetOverride(actorID, userID uint, permissionKey string, isAllowed bool) (*models.PermissionOverride, error) {
	var userCount int64
	s.db.Model(&models.User{}).Where("id = ?", userID).Count(&userCount)
	if userCount == 0 {
		return nil, apperrors.NotFound("用户不存在")
	}

	// 例外必须指向目录中存在的权限key
	var permCount int64
	s.db.Model(&models.Permission{}).Where("key = ?", permissionKey).Count(&permCount)
	if permCount == 0 {
		return nil, apperrors.Validation("权限key不存在: %s", permissionKey)
	}

	var override models.PermissionOverride
	err := s.db.Where("user_id = ? AND permission_key = ?", userID, permissionKey).First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		override = models.PermissionOverride{
			UserID:        userID,
			PermissionKey: permissionKey,
			IsAllowed:     isAllowed,
			CreatedBy:     actorID,
		}
		if err := s.db.Create(&override).Error; err != nil {
			return nil, err
		}
		return &override, nil
	}
	if err != nil {
		return nil, err
	}

	override.IsAllowed = isAllowed
	override.CreatedBy = actorID
	if err := s.db.Save(&override).Error; err != nil {
		return nil, err
	}
	return &override, nil
}

// RemoveOverride 移除用户权限例外，恢复为角色推导结果
func (s *AuthzService) RemoveOverride(userID uint, permissionKey string) error {
	result := s.db.Where("user_id = ? AND permission_key = ?", userID, permissionKey).
		Delete(&models.PermissionOverride{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("权限例外不存在")
	}
	return nil
}

// ListOverrides 获取用户的全部权限例外
func (s *AuthzService) ListOverrides(userID uint) ([]models.PermissionOverride, error) {
	var overrides []models.PermissionOverride
	err := s.db.Where("user_id = ?", userID).Order("permission_key").Find(&overrides).Error
	return overrides, err
}
