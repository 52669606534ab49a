package model

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":          RoleAdmin,
		"ADMIN":          RoleAdmin,
		" cadmin ":       RoleAdmin,
		"Secretaire":     RoleSecretaire,
		"secrétaire":     RoleSecretaire,
		"ENSEIGNANT":     RoleEnseignant,
		"fonctionnaire":  RoleFonctionnaire,
		"":               RoleUnknown,
		"super-utilisat": RoleUnknown,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) 期望 %q，实际 %q", in, want, got)
		}
	}
}

func TestRole_UnmarshalCanonicalizes(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":7,"email":"a@b.c","role":"Enseignant"}`), &u); err != nil {
		t.Fatalf("Unmarshal 失败: %v", err)
	}
	if u.Role != RoleEnseignant {
		t.Errorf("期望 role=enseignant，实际=%q", u.Role)
	}
	if !u.Role.IsRequester() || u.Role.IsReviewer() {
		t.Error("教师应为申请人而非审批人")
	}
}
