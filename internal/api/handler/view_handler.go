package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// ViewHandler 页面路由：各角色仪表盘与公共登录入口
type ViewHandler struct {
	dashboardSvc service.DashboardService
	logger       *zap.Logger
}

// NewViewHandler 创建 ViewHandler
func NewViewHandler(dashboardSvc service.DashboardService, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{dashboardSvc: dashboardSvc, logger: logger}
}

// Dashboard 当前角色的仪表盘数据，路由级别的角色限制由 ViewGuard 完成
// GET /dashboard, /secretaire/dashboard, /enseignant/dashboard, /fonctionnaire/dashboard
func (h *ViewHandler) Dashboard(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}

	d, err := h.dashboardSvc.Get(c.Request.Context(), sn.Actor(), s.Demandes())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownRole):
			response.Forbidden(c, 10003, "Rôle non reconnu")
		case handleCommonError(c, err):
		default:
			h.logger.Error("构建仪表盘失败", zap.Error(err))
			response.InternalError(c)
		}
		return
	}
	response.OK(c, d)
}

// Login 公共入口：报告当前会话状态，已登录时附带角色仪表盘地址
// GET /login
func (h *ViewHandler) Login(c *gin.Context) {
	s, ok := MustGetSession(c)
	if !ok {
		return
	}
	response.OK(c, sessionResponse(s.Snapshot()))
}
