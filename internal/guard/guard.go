// Package guard 基于会话状态与角色白名单的路由守卫
//
// 守卫只是体验层面的便利：真正的鉴权由后端再次执行。
package guard

import "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"

// PublicRoute 公共入口路由
const PublicRoute = "/login"

// dashboards 角色 → 默认仪表盘
var dashboards = map[model.Role]string{
	model.RoleAdmin:         "/dashboard",
	model.RoleSecretaire:    "/secretaire/dashboard",
	model.RoleEnseignant:    "/enseignant/dashboard",
	model.RoleFonctionnaire: "/fonctionnaire/dashboard",
}

// DashboardFor 角色的默认仪表盘；未知角色回退到公共入口
func DashboardFor(r model.Role) string {
	if route, ok := dashboards[r]; ok {
		return route
	}
	return PublicRoute
}

// State 守卫输入
type State struct {
	Loading       bool
	Authenticated bool
	User          *model.User
}

// Kind 守卫结论
type Kind int

const (
	// Render 放行
	Render Kind = iota
	// Loading 会话恢复中，展示中性加载状态，不跳转
	Loading
	// Redirect 跳转到 Location
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision 守卫结论
type Decision struct {
	Kind     Kind
	Location string
	// Unauthenticated 区分“未登录”与“角色不符”两种跳转
	Unauthenticated bool
}

// Decide 纯函数：根据会话状态与允许的角色决定渲染、加载或跳转
func Decide(s State, allowed []model.Role) Decision {
	if s.Loading {
		return Decision{Kind: Loading}
	}
	if !s.Authenticated || s.User == nil {
		return Decision{Kind: Redirect, Location: PublicRoute, Unauthenticated: true}
	}
	if len(allowed) > 0 && !s.User.Role.In(allowed...) {
		return Decision{Kind: Redirect, Location: DashboardFor(s.User.Role)}
	}
	return Decision{Kind: Render}
}
