package authz

// Requirement 声明式访问要求
// 三个子句独立求值后取逻辑与：AnyOf内部为或，AllOf内部为与，
// Roles为角色白名单（与主体角色集合有交集即满足）。
// 空子句视为天然满足；整体为空表示"任意已认证主体"，
// 认证本身不由该代数负责，守卫链在求值前已确认主体存在
type Requirement struct {
	AnyOf []string `json:"any_of,omitempty"`
	AllOf []string `json:"all_of,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// IsEmpty 是否为空要求（任意已认证主体可通过）
func (r Requirement) IsEmpty() bool {
	return len(r.AnyOf) == 0 && len(r.AllOf) == 0 && len(r.Roles) == 0
}

// Satisfies 判断有效权限集合与主体角色是否满足要求
func (r Requirement) Satisfies(effective PermissionSet, actualRoles []string) bool {
	// 角色白名单
	if len(r.Roles) > 0 {
		matched := false
		for _, want := range r.Roles {
			for _, have := range actualRoles {
				if want == have {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}

	// AnyOf：至少命中一个
	if len(r.AnyOf) > 0 {
		matched := false
		for _, key := range r.AnyOf {
			if PermissionMatches(effective, key) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// AllOf：全部命中
	for _, key := range r.AllOf {
		if !PermissionMatches(effective, key) {
			return false
		}
	}

	return true
}
