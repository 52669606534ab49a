package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/dto"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// StaffHandler 教师与公务员档案 HTTP 处理器
type StaffHandler struct {
	staffSvc service.StaffService
	logger   *zap.Logger
}

// NewStaffHandler 创建 StaffHandler
func NewStaffHandler(staffSvc service.StaffService, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{staffSvc: staffSvc, logger: logger}
}

// ────────────────────── 教师 ──────────────────────

// ListEnseignants GET /api/enseignants?q=
func (h *StaffHandler) ListEnseignants(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	var req dto.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Paramètres invalides")
		return
	}

	list, err := h.staffSvc.ListEnseignants(c.Request.Context(), sn.Token, req.Q)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// GetEnseignant GET /api/enseignants/:id
func (h *StaffHandler) GetEnseignant(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	e, err := h.staffSvc.GetEnseignant(c.Request.Context(), sn.Token, id)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, e)
}

// CreateEnseignant POST /api/enseignants
func (h *StaffHandler) CreateEnseignant(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	var req model.StaffCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Corps de requête invalide")
		return
	}

	e, err := h.staffSvc.CreateEnseignant(c.Request.Context(), sn.Token, req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.Created(c, e)
}

// UpdateEnseignant PUT /api/enseignants/:id
func (h *StaffHandler) UpdateEnseignant(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req model.StaffUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Corps de requête invalide")
		return
	}

	e, err := h.staffSvc.UpdateEnseignant(c.Request.Context(), sn.Token, id, req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, e)
}

// DeleteEnseignant DELETE /api/enseignants/:id
func (h *StaffHandler) DeleteEnseignant(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.staffSvc.DeleteEnseignant(c.Request.Context(), sn.Token, id); err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 公务员 ──────────────────────

// ListFonctionnaires GET /api/fonctionnaires?q=
func (h *StaffHandler) ListFonctionnaires(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	var req dto.StaffListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "Paramètres invalides")
		return
	}

	list, err := h.staffSvc.ListFonctionnaires(c.Request.Context(), sn.Token, req.Q)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OKList(c, list, len(list))
}

// GetFonctionnaire GET /api/fonctionnaires/:id
func (h *StaffHandler) GetFonctionnaire(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	f, err := h.staffSvc.GetFonctionnaire(c.Request.Context(), sn.Token, id)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, f)
}

// CreateFonctionnaire POST /api/fonctionnaires
func (h *StaffHandler) CreateFonctionnaire(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	var req model.StaffCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Corps de requête invalide")
		return
	}

	f, err := h.staffSvc.CreateFonctionnaire(c.Request.Context(), sn.Token, req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.Created(c, f)
}

// UpdateFonctionnaire PUT /api/fonctionnaires/:id
func (h *StaffHandler) UpdateFonctionnaire(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req model.StaffUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Corps de requête invalide")
		return
	}

	f, err := h.staffSvc.UpdateFonctionnaire(c.Request.Context(), sn.Token, id, req)
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, f)
}

// DeleteFonctionnaire DELETE /api/fonctionnaires/:id
func (h *StaffHandler) DeleteFonctionnaire(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.staffSvc.DeleteFonctionnaire(c.Request.Context(), sn.Token, id); err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, nil)
}

// UploadPhoto 上传公务员照片（multipart 字段 file）
// POST /api/fonctionnaires/:id/photo
func (h *StaffHandler) UploadPhoto(c *gin.Context) {
	_, sn, ok := MustGetSnapshot(c)
	if !ok {
		return
	}
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "Aucune photo sélectionnée")
		return
	}
	file, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "Photo illisible")
		return
	}
	defer file.Close()

	f, err := h.staffSvc.UploadPhoto(c.Request.Context(), sn.Token, id, apiclient.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     file,
	})
	if err != nil {
		h.handleStaffError(c, err)
		return
	}
	response.OK(c, f)
}

func (h *StaffHandler) handleStaffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPhotoTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 13013, err.Error())
	case errors.Is(err, service.ErrPhotoType):
		response.Error(c, http.StatusUnsupportedMediaType, 13015, err.Error())
	case handleCommonError(c, err):
	default:
		h.logger.Error("人员档案操作失败", zap.Error(err))
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/staff_handler.go
