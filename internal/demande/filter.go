package demande

import (
	"strings"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// Query 列表筛选条件，零值表示不过滤
type Query struct {
	Text   string
	Statut model.Statut
	Type   model.TypeDemande
}

// Filter 按条件筛选，保持原有顺序
// Text 对标题、描述、类型（代码与展示名）做不区分大小写的子串匹配
func Filter(list []model.Demande, q Query) []model.Demande {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]model.Demande, 0, len(list))
	for _, d := range list {
		if q.Statut != "" && d.Statut != q.Statut {
			continue
		}
		if q.Type != "" && d.TypeDemande != q.Type {
			continue
		}
		if text != "" && !matches(d, text) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func matches(d model.Demande, text string) bool {
	for _, s := range []string{d.Titre, d.Description, string(d.TypeDemande), d.TypeDemande.Label()} {
		if strings.Contains(strings.ToLower(s), text) {
			return true
		}
	}
	if d.User != nil && strings.Contains(strings.ToLower(d.User.FullName()), text) {
		return true
	}
	return false
}

// Stats 按状态统计
type Stats struct {
	Total     int `json:"total"`
	EnAttente int `json:"en_attente"`
	Approuvee int `json:"approuvee"`
	Rejetee   int `json:"rejetee"`
}

// Count 统计各状态数量
func Count(list []model.Demande) Stats {
	s := Stats{Total: len(list)}
	for _, d := range list {
		switch d.Statut {
		case model.StatutEnAttente:
			s.EnAttente++
		case model.StatutApprouvee:
			s.Approuvee++
		case model.StatutRejetee:
			s.Rejetee++
		}
	}
	return s
}
