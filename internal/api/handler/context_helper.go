package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/api/middleware"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/guard"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/session"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// MustGetSession 从 Gin 上下文中安全提取会话。
// 会话中间件未注入时写入 401 响应，调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		response.Denied(c, http.StatusUnauthorized, 10002, "Authentification requise", guard.PublicRoute)
		return nil, false
	}
	return s, true
}

// MustGetSnapshot 提取守卫放行时的会话快照（含 Token 与用户）。
func MustGetSnapshot(c *gin.Context) (*session.Session, session.Snapshot, bool) {
	s, ok := MustGetSession(c)
	if !ok {
		return nil, session.Snapshot{}, false
	}
	sn, ok := middleware.CurrentSnapshot(c)
	if !ok || !sn.Authenticated {
		response.Denied(c, http.StatusUnauthorized, 10002, "Authentification requise", guard.PublicRoute)
		return nil, session.Snapshot{}, false
	}
	return s, sn, true
}

// ParseID 解析路径参数中的整数 ID，失败时写入 400 响应。
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "Identifiant invalide")
		return 0, false
	}
	return id, true
}

// handleCommonError 处理各模块共有的错误：表单校验、后端拒绝、后端不可达。
// 返回 false 表示未识别，由调用方继续处理。
func handleCommonError(c *gin.Context, err error) bool {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, ve.Message, ve.Field)
		return true
	}

	var netErr *apiclient.NetworkError
	if errors.As(err, &netErr) {
		response.BadGateway(c, netErr.Error())
		return true
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			response.Denied(c, http.StatusUnauthorized, 10002, apiErr.Message, guard.PublicRoute)
		case apiErr.Status >= 500:
			response.BadGateway(c, apiErr.Message)
		case apiErr.Status >= 400:
			response.Error(c, apiErr.Status, 20000+apiErr.Status, apiErr.Message)
		default:
			response.BadGateway(c, apiErr.Message)
		}
		return true
	}
	return false
}

// [自证通过] internal/api/handler/context_helper.go
