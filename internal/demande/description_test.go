package demande

import (
	"testing"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

func TestDescription_RoundTrip(t *testing.T) {
	fields := []Field{
		{Label: "Motif", Value: "Visite médicale"},
		{Label: "Vide", Value: "  "},
		{Label: "Remarque", Value: "ligne 1\nligne 2"},
	}
	desc := FormatDescription(fields)
	if desc != "Motif: Visite médicale\nRemarque: ligne 1 ligne 2" {
		t.Fatalf("格式不符: %q", desc)
	}

	parsed := ParseDescription(desc + "\ntexte libre")
	if len(parsed) != 3 {
		t.Fatalf("期望 3 个字段，实际 %+v", parsed)
	}
	if parsed[0].Label != "Motif" || parsed[0].Value != "Visite médicale" {
		t.Errorf("字段解析不符: %+v", parsed[0])
	}
	if parsed[2].Label != "" || parsed[2].Value != "texte libre" {
		t.Errorf("自由文本应归入空标签: %+v", parsed[2])
	}
}

func TestSummary(t *testing.T) {
	got := Summary("Motif: Visite médicale\nDurée: 3 jours\n\ntexte libre")
	if got != "Motif: Visite médicale; Durée: 3 jours; texte libre" {
		t.Errorf("摘要不符: %q", got)
	}
	if Summary("") != "" {
		t.Error("空描述摘要应为空")
	}
}

func TestTitleFor(t *testing.T) {
	cases := map[string]string{
		TitleFor(model.TypeAttestation, "travail"): "Demande d'attestation - travail",
		TitleFor(model.TypeConge, ""):              "Demande de congé",
		TitleFor("INCONNU", "x"):                   "Demande - x",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("期望 %q，实际 %q", want, got)
		}
	}
}

func TestFilterAndCount(t *testing.T) {
	list := []model.Demande{
		{ID: 1, TypeDemande: model.TypeConge, Titre: "Congé été", Statut: model.StatutEnAttente},
		{ID: 2, TypeDemande: model.TypeAttestation, Titre: "Attestation", Statut: model.StatutApprouvee, User: &model.User{Nom: "Alaoui", Prenom: "Karim"}},
		{ID: 3, TypeDemande: model.TypeHeuresSup, Titre: "HS mars", Description: "Examens", Statut: model.StatutRejetee},
	}

	if got := Filter(list, Query{Text: "CONGÉ"}); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("文本筛选不符: %+v", got)
	}
	if got := Filter(list, Query{Text: "karim"}); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("按申请人筛选不符: %+v", got)
	}
	if got := Filter(list, Query{Text: "supplémentaires"}); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("按类型名称筛选不符: %+v", got)
	}
	if got := Filter(list, Query{Statut: model.StatutRejetee, Type: model.TypeHeuresSup}); len(got) != 1 {
		t.Errorf("状态+类型筛选不符: %+v", got)
	}
	if got := Filter(list, Query{}); len(got) != 3 {
		t.Errorf("空条件应返回全部，实际 %d", len(got))
	}

	s := Count(list)
	if s.Total != 3 || s.EnAttente != 1 || s.Approuvee != 1 || s.Rejetee != 1 {
		t.Errorf("统计不符: %+v", s)
	}
}
