package handlers

import (
	"strconv"

	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	Key         string `json:"key" binding:"required,rolekey"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Key         string `json:"key" binding:"required,rolekey"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type ReplacePermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// RoleView 角色视图（带权限key列表）
type RoleView struct {
	ID             uint     `json:"id"`
	OrganizationID *uint    `json:"organization_id"`
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	IsSystem       bool     `json:"is_system"`
	PermissionKeys []string `json:"permission_keys"`
}

// ========== 基础CRUD方法 ==========

// Create 创建自定义角色（归属调用者所在组织）
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	role, err := h.service.Create(organizationID, req.Key, req.Name, req.Description)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, role)
}

// GetByID 获取角色
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	role, err := h.service.GetByID(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, RoleView{
		ID:             role.ID,
		OrganizationID: role.OrganizationID,
		Key:            role.Key,
		Name:           role.Name,
		Description:    role.Description,
		IsSystem:       role.IsSystem,
		PermissionKeys: role.PermissionKeys(),
	})
}

// List 获取对调用者组织可见的角色列表（支持分页）
func (h *RoleHandler) List(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)

	roles, total, err := h.service.GetVisibleToOrg(organizationID, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, RoleView{
			ID:             role.ID,
			OrganizationID: role.OrganizationID,
			Key:            role.Key,
			Name:           role.Name,
			Description:    role.Description,
			IsSystem:       role.IsSystem,
			PermissionKeys: role.PermissionKeys(),
		})
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, views, pageInfo)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Update(uint(id), req.Key, req.Name, req.Description)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ========== 权限管理方法 ==========

// ReplacePermissions 整体替换角色的权限集合
func (h *RoleHandler) ReplacePermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.ReplacePermissions(uint(id), req.PermissionIDs); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "权限分配成功", nil)
}

// GetPermissions 获取角色的权限
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	permissions, err := h.service.GetRolePermissions(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, permissions)
}
