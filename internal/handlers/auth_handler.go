package handlers

import (
	"time"

	"engage/internal/middleware"
	"engage/internal/services"
	"engage/pkg/jwt"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService  *services.UserService
	authzService *services.AuthzService
	jwtManager   *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, authzService *services.AuthzService) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authzService: authzService,
		jwtManager:   jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	OrganizationID uint   `json:"organization_id"`
	Role           string `json:"role"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 令牌承载主角色key（多角色从分配表解析，这里取历史单角色列）
	roleKey := ""
	if user.Role != nil {
		roleKey = user.Role.Key
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.OrganizationID, user.Username, roleKey)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间，失败不影响登录流程
	_ = h.userService.UpdateLastLogin(user.ID)

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			Name:           user.Name,
			OrganizationID: user.OrganizationID,
			Role:           roleKey,
		},
	})
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	token, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": time.Now().Add(h.jwtManager.GetTokenDuration()).Unix(),
	})
}

// Me 获取当前用户信息（含解析后的有效权限集合）
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := c.Get(middleware.ContextKeyUserID)
	if !exists {
		response.Unauthorized(c, "请先登录")
		return
	}

	user, err := h.userService.GetByID(userID.(uint))
	if err != nil {
		response.AppError(c, err)
		return
	}

	access, err := h.authzService.ResolveAccess(user.ID)
	if err != nil {
		response.AppError(c, err)
		return
	}

	roleKey := ""
	if user.Role != nil {
		roleKey = user.Role.Key
	}

	response.Success(c, gin.H{
		"user": UserInfo{
			ID:             user.ID,
			Username:       user.Username,
			Email:          user.Email,
			Name:           user.Name,
			OrganizationID: user.OrganizationID,
			Role:           roleKey,
		},
		"roles":       access.RoleKeys,
		"permissions": access.Permissions.Keys(),
	})
}
