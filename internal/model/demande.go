package model

// TypeDemande 申请类型
type TypeDemande string

const (
	TypeAttestation  TypeDemande = "ATTESTATION"
	TypeOrdreMission TypeDemande = "ORDRE_MISSION"
	TypeConge        TypeDemande = "CONGE"
	TypeAbsence      TypeDemande = "ABSENCE"
	TypeHeuresSup    TypeDemande = "HEURES_SUP"
)

// AllTypesDemande 全部申请类型
var AllTypesDemande = []TypeDemande{TypeAttestation, TypeOrdreMission, TypeConge, TypeAbsence, TypeHeuresSup}

// Valid 是否为已知申请类型
func (t TypeDemande) Valid() bool {
	for _, x := range AllTypesDemande {
		if t == x {
			return true
		}
	}
	return false
}

// Label 申请类型的展示名称
func (t TypeDemande) Label() string {
	switch t {
	case TypeAttestation:
		return "Attestation"
	case TypeOrdreMission:
		return "Ordre de mission"
	case TypeConge:
		return "Congé"
	case TypeAbsence:
		return "Absence"
	case TypeHeuresSup:
		return "Heures supplémentaires"
	default:
		return string(t)
	}
}

// Statut 申请状态：EN_ATTENTE → APPROUVEE | REJETEE（单向）
type Statut string

const (
	StatutEnAttente Statut = "EN_ATTENTE"
	StatutApprouvee Statut = "APPROUVEE"
	StatutRejetee   Statut = "REJETEE"
)

// IsTerminal 是否为终态
func (s Statut) IsTerminal() bool {
	return s == StatutApprouvee || s == StatutRejetee
}

// Valid 是否为已知状态
func (s Statut) Valid() bool {
	return s == StatutEnAttente || s.IsTerminal()
}

// Label 状态的展示名称
func (s Statut) Label() string {
	switch s {
	case StatutEnAttente:
		return "En attente"
	case StatutApprouvee:
		return "Approuvée"
	case StatutRejetee:
		return "Rejetée"
	default:
		return string(s)
	}
}

// Document 申请附件
type Document struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"file_size,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Demande 申请记录
type Demande struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"user_id"`
	TypeDemande      TypeDemande `json:"type_demande"`
	Titre            string      `json:"titre"`
	Description      string      `json:"description,omitempty"`
	DateDebut        string      `json:"date_debut,omitempty"` // YYYY-MM-DD
	DateFin          string      `json:"date_fin,omitempty"`   // YYYY-MM-DD
	Statut           Statut      `json:"statut"`
	CommentaireAdmin string      `json:"commentaire_admin,omitempty"`
	CreatedAt        string      `json:"created_at,omitempty"`
	Documents        []Document  `json:"documents,omitempty"`
	User             *User       `json:"user,omitempty"`
}

// DemandeCreate 创建申请请求体（user_id 由后端根据 Token 绑定）
type DemandeCreate struct {
	TypeDemande TypeDemande `json:"type_demande"          validate:"required,type_demande"`
	Titre       string      `json:"titre"                 validate:"required,max=255"`
	Description string      `json:"description,omitempty"`
	DateDebut   string      `json:"date_debut,omitempty"  validate:"omitempty,datetime=2006-01-02"`
	DateFin     string      `json:"date_fin,omitempty"    validate:"omitempty,datetime=2006-01-02"`
}

// DemandeDecision 审批请求体
type DemandeDecision struct {
	Statut           Statut `json:"statut"`
	CommentaireAdmin string `json:"commentaire_admin,omitempty"`
}
