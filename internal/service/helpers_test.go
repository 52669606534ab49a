package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient/fakebackend"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/validation"
)

// ── 测试辅助 ──

type testEnv struct {
	fb       *fakebackend.Backend
	client   *apiclient.Client
	bus      *events.Bus
	demandes *demande.Manager
	svc      *Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fb := fakebackend.New(t)
	r, err := apiclient.NewBaseURLResolver(&config.BackendConfig{BaseURL: fb.URL()})
	if err != nil {
		t.Fatal(err)
	}
	client := apiclient.New(r, 5*time.Second, zap.NewNop())
	bus := events.NewBus()
	v := validation.New()
	mgr := demande.NewManager(client, v, bus, 0, zap.NewNop())
	cfg := &config.Config{Upload: config.UploadConfig{MaxFileSize: 5 << 20}}

	svc := NewService(cfg, client, mgr, v, bus, zap.NewNop())
	t.Cleanup(svc.Close)
	return &testEnv{fb: fb, client: client, bus: bus, demandes: mgr, svc: svc}
}

func (e *testEnv) actor(email string) demande.Actor {
	u := e.fb.UserByEmail(email)
	return demande.Actor{SessionID: "sid-" + email, Token: e.fb.IssueToken(email), User: &u}
}
