package handlers

import (
	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type TriggerSyncRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SyncHandler 数据同步接口
// 路由上挂组织边界检查：携带organization_id且与主体组织不同时，
// 只有跨组织白名单角色可以代其他组织触发
type SyncHandler struct {
	service *services.SyncService
}

func NewSyncHandler(service *services.SyncService) *SyncHandler {
	return &SyncHandler{
		service: service,
	}
}

// Trigger 触发同步任务
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)
	userID, _ := c.Get(middleware.ContextKeyUserID)
	username, _ := c.Get(middleware.ContextKeyUsername)

	job, err := h.service.Trigger(organizationID, userID.(uint), username.(string), req.Kind)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, job)
}

// GetByJobID 获取同步任务详情
func (h *SyncHandler) GetByJobID(c *gin.Context) {
	jobID := c.Param("job_id")

	organizationID := middleware.ResolveOrgID(c)

	job, err := h.service.GetByJobID(organizationID, jobID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, job)
}

// GetAll 分页获取同步任务列表
func (h *SyncHandler) GetAll(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)

	jobs, total, err := h.service.GetWithPage(organizationID, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, jobs, pageInfo)
}
