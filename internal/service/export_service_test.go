package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient/fakebackend"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// ── ExportDemandes 测试 ──

func TestExportService_ExportDemandes_Empty(t *testing.T) {
	env := setupTestEnv(t)
	_, _, err := env.svc.Export.ExportDemandes(context.Background(), env.actor(fakebackend.SecretaireEmail), demande.NewStore(), demande.Query{})
	if !errors.Is(err, ErrExportNoDemandes) {
		t.Errorf("期望 ErrExportNoDemandes，实际: %v", err)
	}
}

func TestExportService_ExportDemandes_Success(t *testing.T) {
	env := setupTestEnv(t)
	env.fb.SeedDemande(fakebackend.EnseignantEmail, model.Demande{TypeDemande: model.TypeConge, Titre: "Congé été", DateDebut: "2024-07-01", DateFin: "2024-07-15"})
	env.fb.SeedDemande(fakebackend.FonctionnaireEmail, model.Demande{TypeDemande: model.TypeAttestation, Titre: "Attestation", Statut: model.StatutApprouvee, CommentaireAdmin: "ok", Description: "Motif: Banque\nExemplaires: 2"})
	env.fb.SeedDemande(fakebackend.FonctionnaireEmail, model.Demande{TypeDemande: model.TypeAbsence, Titre: "Absence", Statut: model.StatutRejetee})

	buf, filename, err := env.svc.Export.ExportDemandes(context.Background(),
		env.actor(fakebackend.SecretaireEmail), demande.NewStore(), demande.Query{Statut: model.StatutApprouvee})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if !strings.HasPrefix(filename, "demandes_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名不符: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析生成的 Excel: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Demandes")
	if err != nil {
		t.Fatal(err)
	}
	// 标题 + 表头 + 1 条筛选结果
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际 %d", len(rows))
	}
	if rows[1][0] != "N°" || rows[1][6] != "Statut" {
		t.Errorf("表头不符: %v", rows[1])
	}
	if rows[2][2] != "Attestation" || rows[2][6] != "Approuvée" || rows[2][7] != "ok" {
		t.Errorf("数据行不符: %v", rows[2])
	}
	if len(rows[2]) < 11 || rows[2][10] != "Motif: Banque; Exemplaires: 2" {
		t.Errorf("Détails 列应展开描述子字段，实际 %v", rows[2])
	}
}

func TestExportService_ExportDemandes_RequesterSeesOwnOnly(t *testing.T) {
	env := setupTestEnv(t)
	env.fb.SeedDemande(fakebackend.EnseignantEmail, model.Demande{TypeDemande: model.TypeConge, Titre: "Mien"})
	env.fb.SeedDemande(fakebackend.FonctionnaireEmail, model.Demande{TypeDemande: model.TypeConge, Titre: "Autre"})

	buf, _, err := env.svc.Export.ExportDemandes(context.Background(), env.actor(fakebackend.EnseignantEmail), demande.NewStore(), demande.Query{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Demandes")
	if len(rows) != 3 || rows[2][2] != "Mien" {
		t.Errorf("教师只能导出自己的申请，实际 %v", rows)
	}
}
