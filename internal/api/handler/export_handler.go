package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/dto"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	logger    *zap.Logger
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, logger: logger}
}

// ExportDemandes 导出当前会话可见的申请
// GET /api/demandes/export?q=&statut=&type=
func (h *ExportHandler) ExportDemandes(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}

	var req dto.DemandeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Paramètres invalides")
		return
	}

	buf, filename, err := h.exportSvc.ExportDemandes(c.Request.Context(), sn.Actor(), s.Demandes(), req.Query())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoDemandes):
		response.NotFound(c, 16101, "Aucune demande à exporter")
	case errors.Is(err, demande.ErrForbidden):
		response.Forbidden(c, 12003, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		h.logger.Error("导出失败", zap.Error(err))
		response.InternalError(c)
	case handleCommonError(c, err):
	default:
		response.InternalError(c)
	}
}
