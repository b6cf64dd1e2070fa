package handlers

import (
	"strconv"

	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	RoleID   *uint  `json:"role_id"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AssignRolesRequest struct {
	RoleIDs []uint `json:"role_ids"`
}

type SetOverrideRequest struct {
	PermissionKey string `json:"permission_key" binding:"required,permkey"`
	IsAllowed     *bool  `json:"is_allowed" binding:"required"`
}

type UserHandler struct {
	service      *services.UserService
	authzService *services.AuthzService
}

func NewUserHandler(service *services.UserService, authzService *services.AuthzService) *UserHandler {
	return &UserHandler{
		service:      service,
		authzService: authzService,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户（归属调用者所在组织）
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	user, err := h.service.Create(organizationID, req.Username, req.Email, req.Password, req.Name, req.RoleID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, user)
}

// GetAll 分页获取调用者组织的用户列表
func (h *UserHandler) GetAll(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")
	keyword := c.Query("keyword")

	users, total, err := h.service.GetWithFiltersAndPage(&organizationID, status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	user, err := h.service.GetByID(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, user)
}

// Update 更新用户基础信息
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.service.Update(uint(id), req.Name, req.Email)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, user)
}

// UpdateStatus 更新用户状态（禁止自己停用自己）
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	actorID, _ := c.Get(middleware.ContextKeyUserID)

	user, err := h.service.UpdateStatus(actorID.(uint), uint(id), req.Status)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, user)
}

// ========== 角色与权限管理 ==========

// AssignRoles 整体替换用户的角色分配
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	actorID, _ := c.Get(middleware.ContextKeyUserID)

	if err := h.service.AssignRoles(actorID.(uint), uint(id), req.RoleIDs); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色分配成功", nil)
}

// RemoveRole 移除用户的单个角色
func (h *UserHandler) RemoveRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}
	roleID, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "角色ID格式错误")
		return
	}

	if err := h.service.RemoveRole(uint(id), uint(roleID)); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色移除成功", nil)
}

// GetUserRoles 获取用户的角色列表
func (h *UserHandler) GetUserRoles(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	roles, err := h.service.GetUserRoles(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, roles)
}

// GetUserPermissions 获取用户解析后的有效权限集合
func (h *UserHandler) GetUserPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	access, err := h.authzService.ResolveAccess(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, gin.H{
		"roles":       access.RoleKeys,
		"permissions": access.Permissions.Keys(),
	})
}

// ========== 权限例外管理 ==========

// SetOverride 设置用户权限例外
func (h *UserHandler) SetOverride(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	actorID, _ := c.Get(middleware.ContextKeyUserID)

	override, err := h.authzService.SetOverride(actorID.(uint), uint(id), req.PermissionKey, *req.IsAllowed)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, override)
}

// RemoveOverride 移除用户权限例外
func (h *UserHandler) RemoveOverride(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	permissionKey := c.Param("permission_key")

	if err := h.authzService.RemoveOverride(uint(id), permissionKey); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "权限例外已移除", nil)
}

// ListOverrides 获取用户的权限例外列表
func (h *UserHandler) ListOverrides(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	overrides, err := h.authzService.ListOverrides(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, overrides)
}
