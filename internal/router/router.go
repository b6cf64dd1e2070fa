package router

import (
	"engage/internal/authz"
	"engage/internal/database"
	"engage/internal/handlers"
	"engage/internal/middleware"
	"engage/internal/models"
	"engage/internal/services"
	"engage/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置路由
// 守卫链模式：认证 → 角色/权限 → 组织边界，按组挂载
func SetupRouter() *gin.Engine {
	r := gin.New()

	// 全局中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SetupCORS())

	// 自定义binding校验规则
	handlers.RegisterCustomValidators()

	db := database.GetDB()
	redisQueue := database.GetRedisQueue()

	// 服务实例
	userService := services.NewUserService()
	authzService := services.NewAuthzService()
	roleService := services.NewRoleService()
	permissionService := services.NewPermissionService()
	organizationService := services.NewOrganizationService()
	campaignService := services.NewCampaignService(db, redisQueue)
	segmentService := services.NewSegmentService(db)
	contactService := services.NewContactService(db)
	syncService := services.NewSyncService(db, redisQueue)

	// 处理器实例
	authHandler := handlers.NewAuthHandler(userService, authzService)
	userHandler := handlers.NewUserHandler(userService, authzService)
	roleHandler := handlers.NewRoleHandler(roleService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	organizationHandler := handlers.NewOrganizationHandler(organizationService)
	navigationHandler := handlers.NewNavigationHandler(authzService)
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	segmentHandler := handlers.NewSegmentHandler(segmentService)
	contactHandler := handlers.NewContactHandler(contactService)
	syncHandler := handlers.NewSyncHandler(syncService)

	// 中间件实例
	authMiddleware := middleware.NewAuthMiddleware()

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// 公开路由
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		// 需要登录的路由
		authenticated := api.Group("")
		authenticated.Use(authMiddleware.RequireLogin())
		{
			authenticated.GET("/auth/me", authHandler.Me)
			authenticated.GET("/navigation", navigationHandler.GetRoutes)

			// 权限目录（只读，任意已认证主体可查）
			permissions := authenticated.Group("/permissions")
			{
				permissions.GET("", permissionHandler.GetAll)
				permissions.GET("/module/:module", permissionHandler.GetByModule)
			}

			// 角色管理
			roles := authenticated.Group("/roles")
			{
				roles.GET("", authMiddleware.RequirePermission("roles:read"), roleHandler.List)
				roles.GET("/:id", authMiddleware.RequirePermission("roles:read"), roleHandler.GetByID)
				roles.GET("/:id/permissions", authMiddleware.RequirePermission("roles:read"), roleHandler.GetPermissions)

				rolesManage := roles.Group("")
				rolesManage.Use(authMiddleware.RequirePermission("roles:manage"))
				{
					rolesManage.POST("", roleHandler.Create)
					rolesManage.PUT("/:id", roleHandler.Update)
					rolesManage.DELETE("/:id", roleHandler.Delete)
					rolesManage.PUT("/:id/permissions", roleHandler.ReplacePermissions)
				}
			}

			// 用户管理
			users := authenticated.Group("/users")
			{
				users.GET("", authMiddleware.RequirePermission("users:read"), userHandler.GetAll)
				users.GET("/:id", authMiddleware.RequirePermission("users:read"), userHandler.GetByID)
				users.GET("/:id/roles", authMiddleware.RequirePermission("users:read"), userHandler.GetUserRoles)
				users.GET("/:id/permissions", authMiddleware.RequirePermission("users:read"), userHandler.GetUserPermissions)
				users.GET("/:id/overrides", authMiddleware.RequirePermission("users:read"), userHandler.ListOverrides)

				usersManage := users.Group("")
				usersManage.Use(authMiddleware.RequirePermission("users:manage"))
				{
					usersManage.POST("", userHandler.Create)
					usersManage.PUT("/:id", userHandler.Update)
					usersManage.PUT("/:id/status", userHandler.UpdateStatus)
					usersManage.PUT("/:id/roles", userHandler.AssignRoles)
					usersManage.DELETE("/:id/roles/:role_id", userHandler.RemoveRole)
					usersManage.PUT("/:id/overrides", userHandler.SetOverride)
					usersManage.DELETE("/:id/overrides/:permission_key", userHandler.RemoveOverride)
				}
			}

			// 组织管理（平台级，仅最高管理角色）
			orgs := authenticated.Group("/organizations")
			orgs.Use(authMiddleware.RequireRoles(models.RoleAdmin))
			{
				orgs.POST("", organizationHandler.Create)
				orgs.GET("", organizationHandler.GetAll)
				orgs.GET("/:id", organizationHandler.GetByID)
				orgs.PUT("/:id", organizationHandler.Update)
				orgs.PUT("/:id/status", organizationHandler.UpdateStatus)
			}

			// 活动管理
			campaigns := authenticated.Group("/campaigns")
			{
				campaigns.GET("", authMiddleware.RequirePermission("campaigns:read"), campaignHandler.GetAll)
				campaigns.GET("/:id", authMiddleware.RequirePermission("campaigns:read"), campaignHandler.GetByID)
				campaigns.POST("", authMiddleware.RequirePermission("campaigns:write"), campaignHandler.Create)
				campaigns.PUT("/:id", authMiddleware.RequirePermission("campaigns:write"), campaignHandler.Update)
				campaigns.DELETE("/:id", authMiddleware.RequirePermission("campaigns:write"), campaignHandler.Delete)
				campaigns.POST("/:id/schedule", authMiddleware.RequirePermission("campaigns:send"), campaignHandler.Schedule)
				campaigns.POST("/:id/dispatch", authMiddleware.RequirePermission("campaigns:send"), campaignHandler.Dispatch)
			}

			// 分群管理
			segments := authenticated.Group("/segments")
			{
				segments.GET("", authMiddleware.RequirePermission("segments:read"), segmentHandler.GetAll)
				segments.GET("/:id", authMiddleware.RequirePermission("segments:read"), segmentHandler.GetByID)
				segments.POST("", authMiddleware.RequirePermission("segments:write"), segmentHandler.Create)
				segments.PUT("/:id", authMiddleware.RequirePermission("segments:write"), segmentHandler.Update)
				segments.DELETE("/:id", authMiddleware.RequirePermission("segments:write"), segmentHandler.Delete)
			}

			// 联系人管理
			contacts := authenticated.Group("/contacts")
			{
				contacts.GET("", authMiddleware.RequirePermission("contacts:read"), contactHandler.GetAll)
				contacts.GET("/:id", authMiddleware.RequirePermission("contacts:read"), contactHandler.GetByID)
				contacts.POST("", authMiddleware.RequirePermission("contacts:write"), contactHandler.Create)
				contacts.PUT("/:id", authMiddleware.RequirePermission("contacts:write"), contactHandler.Update)
				contacts.DELETE("/:id", authMiddleware.RequirePermission("contacts:write"), contactHandler.Delete)
			}

			// 数据同步（可跨组织触发，组织边界检查挂在组上）
			sync := authenticated.Group("/sync")
			sync.Use(authMiddleware.RequirePermission("sync:trigger"))
			sync.Use(authMiddleware.RequireOrgScope(authz.CrossOrgAllowRoles...))
			{
				sync.POST("/jobs", syncHandler.Trigger)
				sync.GET("/jobs", syncHandler.GetAll)
				sync.GET("/jobs/:job_id", syncHandler.GetByJobID)
			}
		}
	}

	return r
}
