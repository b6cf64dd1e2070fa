package handlers

import (
	"strconv"

	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type UpdateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateOrganizationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrganizationHandler struct {
	service *services.OrganizationService
}

func NewOrganizationHandler(service *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
	}
}

// Create 创建组织
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	org, err := h.service.Create(req.Name, req.Slug)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, org)
}

// GetByID 获取组织
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	org, err := h.service.GetByID(uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, org)
}

// GetAll 分页获取组织列表
func (h *OrganizationHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	orgs, total, err := h.service.GetWithPage(status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, orgs, pageInfo)
}

// Update 更新组织名称
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	org, err := h.service.Update(uint(id), req.Name)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, org)
}

// UpdateStatus 启用/停用组织（不做物理删除）
func (h *OrganizationHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateOrganizationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	org, err := h.service.SetStatus(uint(id), req.Status)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, org)
}
