package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"engage/internal/authz"
	"engage/internal/models"
	"engage/internal/services"
	"engage/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试夹具：内存数据库 + 注入依赖的中间件 + JWT管理器
type guardFixture struct {
	db         *gorm.DB
	middleware *AuthMiddleware
	jwtManager *jwt.JWTManager
}

func setupGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.PermissionOverride{},
	)
	require.NoError(t, err)

	jwtManager := jwt.NewJWTManager("test-secret", time.Hour)
	m := NewAuthMiddlewareWith(
		services.NewUserServiceWithDB(db),
		services.NewAuthzServiceWithDB(db),
		jwtManager,
	)

	return &guardFixture{db: db, middleware: m, jwtManager: jwtManager}
}

func (f *guardFixture) createOrg(t *testing.T, slug string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: "组织" + slug, Slug: slug, Status: models.OrgStatusActive}
	require.NoError(t, f.db.Create(org).Error)
	return org
}

// createUser 创建用户并按key分配角色（角色与权限不存在时一并创建）
func (f *guardFixture) createUser(t *testing.T, orgID uint, username string, roleKey string, permKeys ...string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		OrganizationID: orgID,
		Username:       username,
		Email:          username + "@example.com",
		Name:           "用户" + username,
		Status:         models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, f.db.Create(user).Error)

	if roleKey != "" {
		role := &models.Role{Key: roleKey, Name: "角色" + roleKey, IsSystem: true}
		require.NoError(t, f.db.Where("key = ?", roleKey).FirstOrCreate(role).Error)
		for _, key := range permKeys {
			perm := &models.Permission{Key: key, Name: key, Module: "test", Action: "test"}
			require.NoError(t, f.db.Where("key = ?", key).FirstOrCreate(perm).Error)
			rp := &models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}
			require.NoError(t, f.db.Create(rp).Error)
		}
		require.NoError(t, f.db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	}

	token, err := f.jwtManager.GenerateToken(user.ID, orgID, username, roleKey)
	require.NoError(t, err)
	return user, token
}

func performRequest(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": 200})
}

// ========== 认证检查 ==========

func TestRequireLoginRejectsMissingToken(t *testing.T) {
	f := setupGuardFixture(t)

	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), okHandler)

	w := performRequest(r, "/probe", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 非Bearer格式
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, "/probe", "garbled-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireLoginAcceptsValidToken(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "alice", "marketer", "campaigns:read")

	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), okHandler)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireLoginRejectsDisabledUser(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	user, token := f.createUser(t, org.ID, "bob", "", "")

	require.NoError(t, f.db.Model(user).Update("status", models.UserStatusDisabled).Error)

	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), okHandler)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ========== 权限检查 ==========

func TestRequirePermissionForbidsMissing(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "carol", "analyst", "reports:read")

	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), f.middleware.RequirePermission("campaigns:write"), okHandler)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequirePermissionWriteSatisfiesRead(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "dave", "editor", "campaigns:write")

	// 持有write对read要求放行
	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), f.middleware.RequirePermission("campaigns:read"), okHandler)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionsAllOf(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "erin", "marketer", "campaigns:read", "segments:read")

	req := authz.Requirement{AllOf: []string{"campaigns:read", "segments:read"}}
	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), f.middleware.RequirePermissions(req), okHandler)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusOK, w.Code)

	// 缺一个AllOf项则拒绝
	req2 := authz.Requirement{AllOf: []string{"campaigns:read", "billing:read"}}
	r2 := gin.New()
	r2.GET("/probe", f.middleware.RequireLogin(), f.middleware.RequirePermissions(req2), okHandler)

	w = performRequest(r2, "/probe", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ========== 角色检查 ==========

func TestRequireRoles(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, adminToken := f.createUser(t, org.ID, "root", "admin", "orgs:manage")
	_, marketerToken := f.createUser(t, org.ID, "frank", "marketer", "campaigns:read")

	r := gin.New()
	r.GET("/probe", f.middleware.RequireLogin(), f.middleware.RequireRoles(models.RoleAdmin), okHandler)

	w := performRequest(r, "/probe", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, "/probe", marketerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ========== 组织边界检查 ==========

func setupOrgScopeRouter(f *guardFixture) *gin.Engine {
	r := gin.New()
	r.GET("/probe",
		f.middleware.RequireLogin(),
		f.middleware.RequireOrgScope(authz.CrossOrgAllowRoles...),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"org_id": ResolveOrgID(c)})
		})
	return r
}

func TestOrgScopeDefaultsToOwnOrg(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "grace", "marketer", "campaigns:read")

	r := setupOrgScopeRouter(f)

	w := performRequest(r, "/probe", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"org_id":1`)
}

func TestOrgScopeRejectsGarbledID(t *testing.T) {
	f := setupGuardFixture(t)
	org := f.createOrg(t, "acme")
	_, token := f.createUser(t, org.ID, "henry", "marketer", "campaigns:read")

	r := setupOrgScopeRouter(f)

	// 格式校验先于跨组织判定
	w := performRequest(r, "/probe?organization_id=abc", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, "/probe?organization_id=0", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrgScopeCrossOrgForbiddenForNonAdmin(t *testing.T) {
	f := setupGuardFixture(t)
	orgA := f.createOrg(t, "acme")
	f.createOrg(t, "globex")
	_, token := f.createUser(t, orgA.ID, "iris", "marketer", "campaigns:read")

	r := setupOrgScopeRouter(f)

	w := performRequest(r, "/probe?organization_id=2", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrgScopeCrossOrgAllowedForAdmin(t *testing.T) {
	f := setupGuardFixture(t)
	orgA := f.createOrg(t, "acme")
	f.createOrg(t, "globex")
	_, token := f.createUser(t, orgA.ID, "judy", "admin", "orgs:manage")

	r := setupOrgScopeRouter(f)

	// 白名单角色可以指定其他组织
	w := performRequest(r, "/probe?organization_id=2", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"org_id":2`)

	// 指定自己的组织始终允许
	w = performRequest(r, "/probe?organization_id=1", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"org_id":1`)
}
