package handlers

import (
	"engage/internal/services"
	"engage/pkg/pagination"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		service: service,
	}
}

// GetAll 分页获取权限目录
func (h *PermissionHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	module := c.Query("module")

	permissions, total, err := h.service.GetWithPage(module, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, permissions, pageInfo)
}

// GetByModule 获取指定模块的权限
func (h *PermissionHandler) GetByModule(c *gin.Context) {
	module := c.Param("module")

	permissions, err := h.service.GetByModule(module)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}
