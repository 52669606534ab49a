package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient/fakebackend"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/validation"
)

func TestDashboard_PerRole(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.fb.SeedDemande(fakebackend.EnseignantEmail, model.Demande{TypeDemande: model.TypeConge, Titre: "Congé"})
	env.fb.SeedDemande(fakebackend.FonctionnaireEmail, model.Demande{TypeDemande: model.TypeAbsence, Titre: "Absence", Statut: model.StatutRejetee})
	if _, err := env.svc.Staff.CreateEnseignant(ctx, env.actor(fakebackend.AdminEmail).Token, newStaff("x@gestion.com", "")); err != nil {
		t.Fatal(err)
	}

	admin, err := env.svc.Dashboard.Get(ctx, env.actor(fakebackend.AdminEmail), demande.NewStore())
	if err != nil {
		t.Fatalf("admin 仪表盘失败: %v", err)
	}
	if admin.Counts == nil || admin.Counts.Enseignants != 1 || admin.Counts.Fonctionnaires != 0 {
		t.Errorf("人员统计不符: %+v", admin.Counts)
	}
	if admin.Stats.Total != 2 || admin.Stats.Rejetee != 1 {
		t.Errorf("申请统计不符: %+v", admin.Stats)
	}

	sec, err := env.svc.Dashboard.Get(ctx, env.actor(fakebackend.SecretaireEmail), demande.NewStore())
	if err != nil || len(sec.Demandes) != 2 || sec.Counts != nil {
		t.Fatalf("secretaire 仪表盘不符: %+v err=%v", sec, err)
	}

	ens, err := env.svc.Dashboard.Get(ctx, env.actor(fakebackend.EnseignantEmail), demande.NewStore())
	if err != nil {
		t.Fatal(err)
	}
	if ens.Stats.Total != 1 || ens.Stats.EnAttente != 1 || len(ens.Types) != len(model.AllTypesDemande) {
		t.Errorf("enseignant 仪表盘不符: %+v", ens)
	}
}

func TestDashboard_CacheInvalidatedByEvents(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	sec := env.actor(fakebackend.SecretaireEmail)
	store := demande.NewStore()

	if _, err := env.svc.Dashboard.Get(ctx, sec, store); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Dashboard.Get(ctx, sec, store); err != nil {
		t.Fatal(err)
	}
	if n := env.fb.Calls("GET /demandes"); n != 1 {
		t.Fatalf("命中缓存时不应再请求，实际 %d 次", n)
	}

	events.Publish(env.bus, events.StatsChanged{SessionID: "autre", Reason: "decide"})
	_, _ = env.svc.Dashboard.Get(ctx, sec, store)
	if n := env.fb.Calls("GET /demandes"); n != 2 {
		t.Fatalf("StatsChanged 后应重新请求，实际 %d 次", n)
	}

	events.Publish(env.bus, events.SessionEnded{SessionID: sec.SessionID})
	_, _ = env.svc.Dashboard.Get(ctx, sec, store)
	if n := env.fb.Calls("GET /demandes"); n != 3 {
		t.Fatalf("SessionEnded 后应重新请求，实际 %d 次", n)
	}
}

func TestDashboard_CloseUnsubscribes(t *testing.T) {
	env := setupTestEnv(t)
	before := events.Count[events.StatsChanged](env.bus)
	env.svc.Dashboard.Close()
	if after := events.Count[events.StatsChanged](env.bus); after != before-1 {
		t.Errorf("Close 后应少一个监听器，before=%d after=%d", before, after)
	}
	env.svc.Dashboard.Close()
}

func TestDashboard_UnknownRole(t *testing.T) {
	env := setupTestEnv(t)
	actor := demande.Actor{SessionID: "s", Token: "t", User: &model.User{ID: 99}}
	if _, err := env.svc.Dashboard.Get(context.Background(), actor, demande.NewStore()); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("期望 ErrUnknownRole，实际 %v", err)
	}
}

func TestDashboard_StaffChangesRefreshAdminCounts(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	admin := env.actor(fakebackend.AdminEmail)
	store := demande.NewStore()

	before, err := env.svc.Dashboard.Get(ctx, admin, store)
	if err != nil {
		t.Fatal(err)
	}
	if before.Counts.Enseignants != 0 || before.Counts.Fonctionnaires != 0 {
		t.Fatalf("初始人数应为 0，实际 %+v", before.Counts)
	}

	e, err := env.svc.Staff.CreateEnseignant(ctx, admin.Token, newStaff("omar.tazi@gestion.com", ""))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Staff.CreateFonctionnaire(ctx, admin.Token, newStaff("salma.idrissi@gestion.com", "")); err != nil {
		t.Fatal(err)
	}
	after, err := env.svc.Dashboard.Get(ctx, admin, store)
	if err != nil {
		t.Fatal(err)
	}
	if after.Counts.Enseignants != 1 || after.Counts.Fonctionnaires != 1 {
		t.Errorf("新增人员后统计应刷新，实际 %+v", after.Counts)
	}

	if err := env.svc.Staff.DeleteEnseignant(ctx, admin.Token, e.ID); err != nil {
		t.Fatal(err)
	}
	final, _ := env.svc.Dashboard.Get(ctx, admin, store)
	if final.Counts.Enseignants != 0 {
		t.Errorf("删除教师后统计应刷新，实际 %+v", final.Counts)
	}
}

func TestDashboard_InvalidationDuringBuildSkipsCache(t *testing.T) {
	bus := events.NewBus()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 第一次构建期间有申请被审批
		if calls.Add(1) == 1 {
			events.Publish(bus, events.StatsChanged{Reason: "decide"})
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	r, err := apiclient.NewBaseURLResolver(&config.BackendConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	client := apiclient.New(r, 5*time.Second, zap.NewNop())
	mgr := demande.NewManager(client, validation.New(), bus, 0, zap.NewNop())
	svc := NewDashboardService(client, mgr, bus, time.Minute, zap.NewNop())
	t.Cleanup(svc.Close)

	sec := demande.Actor{SessionID: "sid-sec", Token: "tok", User: &model.User{ID: 2, Role: model.RoleSecretaire}}
	for i := 0; i < 2; i++ {
		if _, err := svc.Get(context.Background(), sec, demande.NewStore()); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("构建期间失效的结果不应入缓存，期望请求 2 次，实际 %d", n)
	}
	if _, err := svc.Get(context.Background(), sec, demande.NewStore()); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("未失效的结果应命中缓存，实际请求 %d 次", n)
	}
}
