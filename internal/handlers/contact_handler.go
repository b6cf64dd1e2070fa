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

type CreateContactRequest struct {
	Email      string         `json:"email" binding:"required,email"`
	Name       string         `json:"name"`
	Attributes datatypes.JSON `json:"attributes"`
}

type UpdateContactRequest struct {
	Name       string         `json:"name"`
	Attributes datatypes.JSON `json:"attributes"`
	Subscribed *bool          `json:"subscribed" binding:"required"`
}

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// Create 创建联系人
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	contact, err := h.service.Create(organizationID, req.Email, req.Name, req.Attributes)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, contact)
}

// GetByID 获取联系人
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	contact, err := h.service.GetByID(organizationID, uint(id))
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, contact)
}

// GetAll 分页获取联系人列表
func (h *ContactHandler) GetAll(c *gin.Context) {
	organizationID := middleware.ResolveOrgID(c)
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	contacts, total, err := h.service.GetWithPage(organizationID, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, contacts, pageInfo)
}

// Update 更新联系人
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	organizationID := middleware.ResolveOrgID(c)

	contact, err := h.service.Update(organizationID, uint(id), req.Name, req.Attributes, *req.Subscribed)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, contact)
}

// Delete 删除联系人
func (h *ContactHandler) Delete(c *gin.Context) {
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
