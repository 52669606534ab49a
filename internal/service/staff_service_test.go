package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient/fakebackend"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	apperrors "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/errors"
)

func newStaff(email, cin string) model.StaffCreate {
	return model.StaffCreate{
		Email: email, Password: "secret123", Nom: "Tazi", Prenom: "Omar", CIN: cin,
		Specialite: "Mathématiques", Service: "Scolarité", Poste: "Agent",
	}
}

// ═══════════════════════════════════════════════════════════
// 教师
// ═══════════════════════════════════════════════════════════

func TestStaffService_EnseignantCRUD(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	token := env.actor(fakebackend.AdminEmail).Token
	svc := env.svc.Staff

	e, err := svc.CreateEnseignant(ctx, token, newStaff("omar.tazi@gestion.com", "AB123"))
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if e.User == nil || e.User.Role != model.RoleEnseignant {
		t.Fatalf("应隐式创建 enseignant 用户: %+v", e.User)
	}

	grade := "PES"
	updated, err := svc.UpdateEnseignant(ctx, token, e.ID, model.StaffUpdate{Grade: &grade})
	if err != nil || updated.Grade != "PES" {
		t.Fatalf("更新失败: %v %+v", err, updated)
	}

	list, err := svc.ListEnseignants(ctx, token, "mathé")
	if err != nil || len(list) != 1 {
		t.Fatalf("搜索应命中 1 条，实际 %d err=%v", len(list), err)
	}
	if list, _ := svc.ListEnseignants(ctx, token, "physique"); len(list) != 0 {
		t.Errorf("搜索不应命中，实际 %d", len(list))
	}

	if err := svc.DeleteEnseignant(ctx, token, e.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	_, err = svc.GetEnseignant(ctx, token, e.ID)
	if apiclient.StatusOf(err) != http.StatusNotFound || err.Error() != "Élément introuvable." {
		t.Errorf("期望友好化的 404，实际 %v", err)
	}
}

func TestStaffService_DuplicateHumanized(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	token := env.actor(fakebackend.AdminEmail).Token
	svc := env.svc.Staff

	if _, err := svc.CreateEnseignant(ctx, token, newStaff("dup@gestion.com", "CIN1")); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreateFonctionnaire(ctx, token, newStaff("dup@gestion.com", "CIN2"))
	if apiclient.StatusOf(err) != http.StatusBadRequest || err.Error() != "Un compte avec cet email existe déjà." {
		t.Errorf("邮箱重复文案不符: %v", err)
	}
	_, err = svc.CreateFonctionnaire(ctx, token, newStaff("autre@gestion.com", "CIN1"))
	if err == nil || err.Error() != "Ce numéro CIN est déjà utilisé." {
		t.Errorf("CIN 重复文案不符: %v", err)
	}
}

func TestStaffService_ValidationBeforeNetwork(t *testing.T) {
	env := setupTestEnv(t)
	token := env.actor(fakebackend.AdminEmail).Token

	in := newStaff("", "")
	_, err := env.svc.Staff.CreateEnseignant(context.Background(), token, in)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("期望 ErrValidation，实际 %v", err)
	}
	if n := env.fb.Calls("POST /users/enseignants"); n != 0 {
		t.Errorf("校验失败不应发请求，实际 %d 次", n)
	}
}

// ═══════════════════════════════════════════════════════════
// 公务员照片
// ═══════════════════════════════════════════════════════════

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestStaffService_UploadPhoto(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	token := env.actor(fakebackend.AdminEmail).Token
	svc := env.svc.Staff

	f, err := svc.CreateFonctionnaire(ctx, token, newStaff("nadia@gestion.com", ""))
	if err != nil {
		t.Fatal(err)
	}

	photo := apiclient.File{Name: "photo.png", Size: int64(len(pngHeader)), ContentType: "application/octet-stream", Content: bytes.NewReader(pngHeader)}
	got, err := svc.UploadPhoto(ctx, token, f.ID, photo)
	if err != nil {
		t.Fatalf("上传失败: %v", err)
	}
	if got.Photo == "" {
		t.Error("上传后应返回照片地址")
	}

	text := apiclient.File{Name: "cv.txt", Size: 5, Content: strings.NewReader("hello")}
	if _, err := svc.UploadPhoto(ctx, token, f.ID, text); !errors.Is(err, ErrPhotoType) {
		t.Errorf("期望 ErrPhotoType，实际 %v", err)
	}

	big := apiclient.File{Name: "big.png", Size: 6 << 20, Content: bytes.NewReader(pngHeader)}
	if _, err := svc.UploadPhoto(ctx, token, f.ID, big); !errors.Is(err, ErrPhotoTooLarge) {
		t.Errorf("期望 ErrPhotoTooLarge，实际 %v", err)
	}
	if n := env.fb.Calls("POST /users/fonctionnaires/{id}/upload-photo"); n != 1 {
		t.Errorf("只有合法照片应发请求，实际 %d 次", n)
	}
}

// ═══════════════════════════════════════════════════════════
// 用户目录
// ═══════════════════════════════════════════════════════════

func TestStaffService_ListUsers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	token := env.actor(fakebackend.AdminEmail).Token

	all, err := env.svc.Staff.ListUsers(ctx, token, "", model.RoleUnknown)
	if err != nil || len(all) != 4 {
		t.Fatalf("期望 4 个种子用户，实际 %d err=%v", len(all), err)
	}
	admins, _ := env.svc.Staff.ListUsers(ctx, token, "", model.RoleAdmin)
	if len(admins) != 1 || admins[0].Email != fakebackend.AdminEmail {
		t.Errorf("按角色筛选不符: %+v", admins)
	}
	found, _ := env.svc.Staff.ListUsers(ctx, token, "salma", model.RoleUnknown)
	if len(found) != 1 || found[0].Role != model.RoleSecretaire {
		t.Errorf("按姓名搜索不符: %+v", found)
	}

	secToken := env.actor(fakebackend.SecretaireEmail).Token
	err = env.svc.Staff.DeleteUser(ctx, secToken, admins[0].ID)
	if apiclient.StatusOf(err) != http.StatusForbidden {
		t.Errorf("秘书删除用户应被后端拒绝，实际 %v", err)
	}
}
