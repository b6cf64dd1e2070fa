package middleware

import (
	"strconv"
	"strings"

	"engage/internal/authz"
	"engage/internal/services"
	"engage/pkg/jwt"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

// 请求上下文键
const (
	ContextKeyUser     = "user"
	ContextKeyUserID   = "user_id"
	ContextKeyOrgID    = "organization_id"
	ContextKeyUsername = "username"
	ContextKeyAccess   = "principal_access" // 解析结果的请求级缓存
	ContextKeyScopeOrg = "scope_org_id"     // 组织边界检查的结果
)

// AuthMiddleware 权限中间件
// 守卫链：认证 → 角色 → 权限 → 组织边界，每步可独立挂载、短路失败
type AuthMiddleware struct {
	userService  *services.UserService
	authzService *services.AuthzService
	jwtManager   *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService:  services.NewUserService(),
		authzService: services.NewAuthzService(),
		jwtManager:   jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// NewAuthMiddlewareWith 注入依赖创建（测试用）
func NewAuthMiddlewareWith(userService *services.UserService, authzService *services.AuthzService, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		userService:  userService,
		authzService: authzService,
		jwtManager:   jwtManager,
	}
}

// RequireLogin 认证检查：无有效主体直接401
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将主体信息保存到上下文
		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyOrgID, user.OrganizationID)
		c.Set(ContextKeyUsername, claims.Username)

		c.Next()
	}
}

// RequireRoles 角色检查：主体角色集合与白名单无交集则403
func (m *AuthMiddleware) RequireRoles(roleKeys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := m.mustAccess(c)
		if !ok {
			return
		}

		for _, key := range roleKeys {
			if access.HasRole(key) {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "权限不足：需要 "+strings.Join(roleKeys, "/")+" 角色")
		c.Abort()
	}
}

// RequirePermissions 权限检查：按声明式要求求值有效权限集合
func (m *AuthMiddleware) RequirePermissions(req authz.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := m.mustAccess(c)
		if !ok {
			return
		}

		if !req.Satisfies(access.Permissions, access.RoleKeys) {
			response.Forbidden(c, "权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermission 单权限检查的快捷方式
func (m *AuthMiddleware) RequirePermission(permissionKey string) gin.HandlerFunc {
	return m.RequirePermissions(authz.Requirement{AnyOf: []string{permissionKey}})
}

// RequireOrgScope 组织边界检查
// 请求未携带organization_id时落到主体自己的组织（默认安全路径）；
// 携带且不同于主体组织时，只有白名单角色放行。
// 结果写入上下文供处理器使用
func (m *AuthMiddleware) RequireOrgScope(crossOrgAllowRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := m.resolveOrgScope(c, crossOrgAllowRoles)
		if !ok {
			return
		}

		c.Set(ContextKeyScopeOrg, orgID)
		c.Next()
	}
}

// ResolveOrgID 从上下文读取组织边界检查的结果，未挂载检查时返回主体组织
func ResolveOrgID(c *gin.Context) uint {
	if scoped, exists := c.Get(ContextKeyScopeOrg); exists {
		return scoped.(uint)
	}
	orgID, _ := c.Get(ContextKeyOrgID)
	return orgID.(uint)
}

// resolveOrgScope 组织边界判定，失败时已写响应并abort
func (m *AuthMiddleware) resolveOrgScope(c *gin.Context, crossOrgAllowRoles []string) (uint, bool) {
	principalOrgID, exists := c.Get(ContextKeyOrgID)
	if !exists {
		response.Unauthorized(c, "请先登录")
		c.Abort()
		return 0, false
	}
	ownOrgID := principalOrgID.(uint)

	// organization_id可出现在URL参数或查询参数
	requested := c.Param("organization_id")
	if requested == "" {
		requested = c.Query("organization_id")
	}
	if requested == "" {
		return ownOrgID, true
	}

	// 格式校验先于跨组织判定
	targetOrgID, err := strconv.ParseUint(requested, 10, 32)
	if err != nil || targetOrgID == 0 {
		response.BadRequest(c, "组织ID格式错误")
		c.Abort()
		return 0, false
	}

	if uint(targetOrgID) == ownOrgID {
		return ownOrgID, true
	}

	access, ok := m.mustAccess(c)
	if !ok {
		return 0, false
	}
	for _, key := range crossOrgAllowRoles {
		if access.HasRole(key) {
			return uint(targetOrgID), true
		}
	}

	response.Forbidden(c, "无权访问其他组织的数据")
	c.Abort()
	return 0, false
}

// mustAccess 获取主体的解析结果，带请求级缓存
// 同一请求内的角色/权限检查和处理器复查共用一次存储往返
func (m *AuthMiddleware) mustAccess(c *gin.Context) (*services.PrincipalAccess, bool) {
	if cached, exists := c.Get(ContextKeyAccess); exists {
		return cached.(*services.PrincipalAccess), true
	}

	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		response.Unauthorized(c, "请先登录")
		c.Abort()
		return nil, false
	}

	access, err := m.authzService.ResolveAccess(userID.(uint))
	if err != nil {
		response.ServerError(c, "权限解析失败")
		c.Abort()
		return nil, false
	}

	c.Set(ContextKeyAccess, access)
	return access, true
}

// GetAccess 从上下文获取已缓存的解析结果（处理器用）
func GetAccess(c *gin.Context) (*services.PrincipalAccess, bool) {
	cached, exists := c.Get(ContextKeyAccess)
	if !exists {
		return nil, false
	}
	return cached.(*services.PrincipalAccess), true
}
