package handlers

import (
	"strconv"

	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type SegmentRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Rules       datatypes.JSON `json:"rules"`
}

type SegmentHandler struct {
	service *services.SegmentService
}

func NewSegmentHandler(service *services.SegmentService) *SegmentHandler {
	return &SegmentHandler{
		service: service,
	}
}

// Create 创建分群
func (h *SegmentHandler) Create(c *gin.Context) {
	var req SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	segment, err := h.service.Create(organizationID, req.Name, req.Description, req.Rules)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, segment)
}

// GetByID 获取分群
func (h *SegmentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	segment, err := h.service.GetByID(organizationID, uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, segment)
}

// GetAll 分页获取分群列表
func (h *SegmentHandler) GetAll(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)

	segments, total, err := h.service.GetWithPage(organizationID, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, segments, pageInfo)
}

// Update 更新分群
func (h *SegmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req SegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	segment, err := h.service.Update(organizationID, uint(id), req.Name, req.Description, req.Rules)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, segment)
}

// Delete 删除分群
func (h *SegmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	if err := h.service.Delete(organizationID, uint(id)); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
