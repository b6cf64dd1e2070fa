package handlers

import (
	"strconv"
	"time"

	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type CreateCampaignRequest struct {
	Name      string         `json:"name" binding:"required"`
	Subject   string         `json:"subject"`
	Content   datatypes.JSON `json:"content"`
	SegmentID *uint          `json:"segment_id"`
}

type UpdateCampaignRequest struct {
	Name    string         `json:"name" binding:"required"`
	Subject string         `json:"subject"`
	Content datatypes.JSON `json:"content"`
}

type ScheduleCampaignRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

type CampaignHandler struct {
	service *services.CampaignService
}

func NewCampaignHandler(service *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		service: service,
	}
}

// Create 创建活动
func (h *CampaignHandler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	campaign, err := h.service.Create(organizationID, req.Name, req.Subject, req.Content, req.SegmentID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, campaign)
}

// GetByID 获取活动
func (h *CampaignHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	campaign, err := h.service.GetByID(organizationID, uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, campaign)
}

// GetAll 分页获取活动列表
func (h *CampaignHandler) GetAll(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	campaigns, total, err := h.service.GetWithPage(organizationID, status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, campaigns, pageInfo)
}

// Update 更新活动
func (h *CampaignHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	campaign, err := h.service.Update(organizationID, uint(id), req.Name, req.Subject, req.Content)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, campaign)
}

// Schedule 设置定时投递
func (h *CampaignHandler) Schedule(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ScheduleCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	campaign, err := h.service.Schedule(organizationID, uint(id), req.ScheduledAt)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, campaign)
}

// Dispatch 立即投递活动
func (h *CampaignHandler) Dispatch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)
	userID, _ := c.Get(middleware.ContextKeyUserID)
	username, _ := c.Get(middleware.ContextKeyUsername)

	campaign, err := h.service.Dispatch(organizationID, uint(id), userID.(uint), username.(string), "api")
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, campaign)
}

// Delete 删除活动
func (h *CampaignHandler) Delete(c *gin.Context) {
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
