package demande

import (
	"testing"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

func TestStore_Operations(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Demande{{ID: 1, Titre: "a"}, {ID: 2, Titre: "b"}})

	s.Upsert(model.Demande{ID: 2, Titre: "b2"})
	s.Upsert(model.Demande{ID: 3, Titre: "c"})

	got := s.List()
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Fatalf("顺序不符: %+v", got)
	}
	if got[2].Titre != "b2" {
		t.Errorf("Upsert 应原位替换，实际 %s", got[2].Titre)
	}

	if !s.Remove(1) || s.Remove(1) {
		t.Error("Remove 返回值不符")
	}
	if _, ok := s.Get(1); ok {
		t.Error("删除后不应存在")
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Clear 后应为空，实际 %d", s.Len())
	}
}

func TestStore_ListIsCopy(t *testing.T) {
	s := NewStore()
	s.Upsert(model.Demande{ID: 1, Statut: model.StatutEnAttente})
	list := s.List()
	list[0].Statut = model.StatutApprouvee
	if d, _ := s.Get(1); d.Statut != model.StatutEnAttente {
		t.Error("List 返回值被修改不应影响 Store")
	}
}
