package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/dto"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// UserHandler 用户账号 HTTP 处理器（仅管理员）
type UserHandler struct {
	staffSvc service.StaffService
	logger   *zap.Logger
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(staffSvc service.StaffService, logger *zap.Logger) *UserHandler {
	return &UserHandler{staffSvc: staffSvc, logger: logger}
}

// ListUsers 用户列表（搜索 + 角色筛选）
// GET /api/users?q=&role=
func (h *UserHandler) ListUsers(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Paramètres invalides")
		return
	}
	role, ok := req.RoleFilter()
	if !ok {
		response.BadRequest(c, 10001, "Rôle inconnu")
		return
	}

	list, err := h.staffSvc.ListUsers(c.Request.Context(), sn.Token, req.Q, role)
	if err != nil {
		if !handleCommonError(c, err) {
			h.logger.Error("获取用户列表失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OKList(c, list, len(list))
}

// DeleteUser 删除用户
// DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.staffSvc.DeleteUser(c.Request.Context(), sn.Token, id); err != nil {
		if !handleCommonError(c, err) {
			h.logger.Error("删除用户失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/user_handler.go
