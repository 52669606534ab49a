package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/dto"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// DemandeHandler 申请模块 HTTP 处理器
type DemandeHandler struct {
	demandes *demande.Manager
	logger   *zap.Logger
}

// NewDemandeHandler 创建 DemandeHandler
func NewDemandeHandler(demandes *demande.Manager, logger *zap.Logger) *DemandeHandler {
	return &DemandeHandler{demandes: demandes, logger: logger}
}

// List 申请列表（范围、搜索、状态与类型筛选），统计基于筛选前的完整列表
// GET /api/demandes?scope=&q=&statut=&type=
func (h *DemandeHandler) List(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}

	var req dto.DemandeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Paramètres invalides")
		return
	}

	list, err := h.demandes.List(c.Request.Context(), sn.Actor(), s.Demandes(), req.ListScope())
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}

	filtered := demande.Filter(list, req.Query())
	response.OK(c, dto.DemandeListResponse{
		List:  filtered,
		Total: len(filtered),
		Stats: demande.Count(list),
	})
}

// Get 单条申请
// GET /api/demandes/:id
func (h *DemandeHandler) Get(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	d, err := h.demandes.Get(c.Request.Context(), sn.Actor(), s.Demandes(), id)
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}
	response.OK(c, d)
}

// Create 创建申请；multipart 请求时同时上传 files 字段中的附件
// POST /api/demandes
func (h *DemandeHandler) Create(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}

	var req dto.DemandeCreateRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "Corps de requête invalide")
			return
		}
		d, err := h.demandes.Create(c.Request.Context(), sn.Actor(), s.Demandes(), req.Model())
		if err != nil {
			h.handleDemandeError(c, err)
			return
		}
		response.Created(c, dto.DemandeCreateResponse{Demande: d})
		return
	}

	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "Formulaire invalide")
		return
	}
	files, closeAll, err := formFiles(c, "files")
	if err != nil {
		response.BadRequest(c, 10001, "Pièces jointes illisibles")
		return
	}
	defer closeAll()

	d, warning, err := h.demandes.CreateWithDocuments(c.Request.Context(), sn.Actor(), s.Demandes(), req.Model(), files)
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}
	if warning != "" {
		response.CreatedWithWarning(c, dto.DemandeCreateResponse{Demande: d, Warning: warning}, warning)
		return
	}
	response.Created(c, dto.DemandeCreateResponse{Demande: d})
}

// UploadDocuments 为已有申请追加附件
// POST /api/demandes/:id/documents
func (h *DemandeHandler) UploadDocuments(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	files, closeAll, err := formFiles(c, "files")
	if err != nil {
		response.BadRequest(c, 10001, "Pièces jointes illisibles")
		return
	}
	defer closeAll()

	docs, err := h.demandes.UploadDocuments(c.Request.Context(), sn.Actor(), s.Demandes(), id, files)
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}
	response.OK(c, docs)
}

// Approve 批准申请
// PUT /api/demandes/:id/approve
func (h *DemandeHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject 驳回申请
// PUT /api/demandes/:id/reject
func (h *DemandeHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *DemandeHandler) decide(c *gin.Context, approve bool) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	// 备注可选，空请求体视为无备注
	var req dto.DecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			response.BadRequest(c, 10001, "Corps de requête invalide")
			return
		}
	}

	apply := h.demandes.Reject
	if approve {
		apply = h.demandes.Approve
	}
	d, err := apply(c.Request.Context(), sn.Actor(), s.Demandes(), id, req.Commentaire)
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}
	response.OK(c, d)
}

// Delete 删除申请
// DELETE /api/demandes/:id
func (h *DemandeHandler) Delete(c *gin.Context) {
	s, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.demandes.Delete(c.Request.Context(), sn.Actor(), s.Demandes(), id); err != nil {
		h.handleDemandeError(c, err)
		return
	}
	response.OK(c, nil)
}

// Download 转发附件下载流
// GET /api/demandes/:id/documents/:docId/download
func (h *DemandeHandler) Download(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	docID, ok := ParseID(c, "docId")
	if !ok {
		return
	}

	dl, err := h.demandes.Download(c.Request.Context(), sn.Actor(), id, docID)
	if err != nil {
		h.handleDemandeError(c, err)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.ContentLength, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.PathEscape(dl.Filename),
	})
}

func (h *DemandeHandler) handleDemandeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, demande.ErrForbidden):
		response.Forbidden(c, 12003, err.Error())
	case errors.Is(err, demande.ErrAlreadyDecided):
		response.Error(c, http.StatusConflict, 12009, err.Error())
	case errors.Is(err, demande.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 12013, err.Error())
	case errors.Is(err, demande.ErrNoFiles):
		response.BadRequest(c, 12001, err.Error())
	case errors.Is(err, demande.ErrInvalidScope):
		response.BadRequest(c, 10001, err.Error())
	case handleCommonError(c, err):
	default:
		h.logger.Error("申请操作失败", zap.Error(err))
		response.InternalError(c)
	}
}

// ── multipart 辅助 ──

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFiles 打开 multipart 中 field 字段的全部文件；closeAll 由调用方 defer
func formFiles(c *gin.Context, field string) ([]apiclient.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	var (
		files  []apiclient.File
		opened []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		files = append(files, apiclient.File{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return files, closeAll, nil
}

// [自证通过] internal/api/handler/demande_handler.go
