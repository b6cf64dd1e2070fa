package handlers

import (
	"engage/internal/authz"
	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

// NavigationHandler 导航投影
// 返回当前主体可访问的前端路由列表，供前端渲染菜单；
// 这里只是展示层投影，服务端守卫链仍对每个接口独立判定
type NavigationHandler struct {
	authzService *services.AuthzService
	routes       authz.RouteTable
}

func NewNavigationHandler(authzService *services.AuthzService) *NavigationHandler {
	return &NavigationHandler{
		authzService: authzService,
		routes:       authz.DefaultRouteTable(),
	}
}

// GetRoutes 获取当前主体可访问的路由列表
func (h *NavigationHandler) GetRoutes(c *gin.Context) {
	access, ok := middleware.GetAccess(c)
	if !ok {
		userID, exists := c.Get(middleware.ContextKeyUserID)
		if !exists {
			response.Unauthorized(c, "请先登录")
			return
		}

		resolved, err := h.authzService.ResolveAccess(userID.(uint))
		if err != nil {
			response.ServerError(c, "权限解析失败")
			return
		}
		access = resolved
	}

	allowed := h.routes.ResolveAllowedRoutes(access.Permissions, access.RoleKeys)

	response.Success(c, gin.H{
		"routes": allowed,
	})
}
