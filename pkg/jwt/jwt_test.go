package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
)

func newTestManager() *Manager {
	return NewManager(&config.SessionConfig{
		Secret: "test-secret-key-for-unit-testing-2026",
		TTL:    time.Hour,
	})
}

func TestIssueAndParseSessionToken(t *testing.T) {
	m := newTestManager()

	token, err := m.IssueSessionToken("sid-123")
	if err != nil {
		t.Fatalf("IssueSessionToken 失败: %v", err)
	}

	claims, err := m.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("ParseSessionToken 失败: %v", err)
	}
	if claims.SessionID != "sid-123" {
		t.Errorf("期望 sid=sid-123，实际=%s", claims.SessionID)
	}
	if claims.Issuer != "gestion-portal" {
		t.Errorf("期望 Issuer=gestion-portal，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 59*time.Minute || ttl > 61*time.Minute {
		t.Errorf("期望 TTL 约 1h，实际=%v", ttl)
	}
}

func TestParseSessionToken_Invalid(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseSessionToken("invalid.token.string"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	m1 := newTestManager()
	m2 := NewManager(&config.SessionConfig{Secret: "another-secret-key-0000", TTL: time.Hour})

	token, _ := m1.IssueSessionToken("sid-1")
	if _, err := m2.ParseSessionToken(token); err == nil {
		t.Error("不同密钥签名的 token 不应通过验证")
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	m := NewManager(&config.SessionConfig{Secret: "test-secret-key-for-unit-testing-2026", TTL: -time.Minute})

	token, _ := m.IssueSessionToken("sid-1")
	if _, err := m.ParseSessionToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestPeekExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.RegisteredClaims{
		Subject:   "admin@gestion.com",
		ExpiresAt: jwtv5.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("backend-secret-unknown-to-us"))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := PeekExpiry(signed)
	if !ok {
		t.Fatal("期望读取到 exp")
	}
	if !got.Equal(exp) {
		t.Errorf("期望 exp=%v，实际=%v", exp, got)
	}

	if _, ok := PeekExpiry("opaque-token"); ok {
		t.Error("不透明 token 不应返回 exp")
	}
}
