package authz

// RouteEntry 前端路由与访问要求的映射项
type RouteEntry struct {
	Path    string      `json:"path"`
	Require Requirement `json:"require"`
}

// RouteTable 路由访问表
// 不可变配置对象，按部署注入而非模块级全局变量，便于替换和测试
type RouteTable []RouteEntry

// ResolveAllowedRoutes 计算主体可见的路由路径列表
// 保持表声明顺序；空要求的路由对任意已认证主体可见
func (t RouteTable) ResolveAllowedRoutes(effective PermissionSet, actualRoles []string) []string {
	allowed := make([]string, 0, len(t))
	for _, entry := range t {
		if entry.Require.Satisfies(effective, actualRoles) {
			allowed = append(allowed, entry.Path)
		}
	}
	return allowed
}

// DefaultRouteTable 默认路由访问表
func DefaultRouteTable() RouteTable {
	return RouteTable{
		{Path: "/"},
		{Path: "/campaigns", Require: Requirement{AnyOf: []string{"campaigns:read"}}},
		{Path: "/campaigns/new", Require: Requirement{AnyOf: []string{"campaigns:write"}}},
		{Path: "/segments", Require: Requirement{AnyOf: []string{"segments:read"}}},
		{Path: "/contacts", Require: Requirement{AnyOf: []string{"contacts:read"}}},
		{Path: "/reports", Require: Requirement{AnyOf: []string{"reports:read"}}},
		{Path: "/billing", Require: Requirement{AnyOf: []string{"billing:read"}}},
		{Path: "/settings", Require: Requirement{AnyOf: []string{"settings:read"}}},
		{Path: "/settings/roles", Require: Requirement{AnyOf: []string{"roles:manage"}}},
		{Path: "/settings/users", Require: Requirement{AnyOf: []string{"users:manage"}}},
		{Path: "/settings/sync", Require: Requirement{Roles: []string{RoleAdmin}, AnyOf: []string{"sync:trigger"}}},
	}
}

// CrossOrgAllowRoles 允许跨组织操作的角色白名单
// 按惯例只放开最高管理角色
var CrossOrgAllowRoles = []string{RoleAdmin}

// RoleAdmin 最高管理角色key（与models.RoleAdmin保持一致，authz包不依赖models）
const RoleAdmin = "admin"
