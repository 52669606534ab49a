package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient/fakebackend"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

func TestAuditLog_RecordsDecisions(t *testing.T) {
	env := setupTestEnv(t)
	core, logs := observer.New(zap.InfoLevel)
	audit := NewAuditLog(env.bus, zap.New(core))
	t.Cleanup(audit.Close)

	sec := env.actor(fakebackend.SecretaireEmail)
	seeded := env.fb.SeedDemande(fakebackend.EnseignantEmail, model.Demande{TypeDemande: model.TypeConge, Titre: "Congé"})
	if _, err := env.demandes.Reject(context.Background(), sec, demande.NewStore(), seeded.ID, "Dossier incomplet"); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterMessage("申请已变更").All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条审计日志，实际 %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["demande_id"] != seeded.ID || fields["user_id"] != sec.User.ID {
		t.Errorf("审计字段不符: %v", fields)
	}
	if fields["action"] != "decide" || fields["statut"] != string(model.StatutRejetee) {
		t.Errorf("审计动作不符: %v", fields)
	}
}

func TestAuditLog_CloseUnsubscribes(t *testing.T) {
	bus := events.NewBus()
	before := events.Count[events.DemandeChanged](bus)
	audit := NewAuditLog(bus, zap.NewNop())
	if events.Count[events.DemandeChanged](bus) != before+1 {
		t.Fatal("应订阅 DemandeChanged")
	}
	audit.Close()
	audit.Close()
	if n := events.Count[events.DemandeChanged](bus); n != before {
		t.Errorf("Close 后应取消订阅，实际监听器 %d", n)
	}
}
