package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/session"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/jwt"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// DefaultCookieName 未配置时的会话 Cookie 名
const DefaultCookieName = "gestion_sid"

const (
	sessionKey  = "session"
	snapshotKey = "session_snapshot"
)

// Session 会话 Cookie 中间件
//
// Cookie 是只携带 sid 的签名 JWT。缺失、过期或签名不符时签发新的 sid。
// 随后取得内存会话并触发一次性恢复；恢复进行中的并发请求由守卫返回加载状态。
func Session(mgr *session.Manager, jwtMgr *jwt.Manager, cfg *config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	sameSite := parseSameSite(cfg.Cookie.SameSite)

	return func(c *gin.Context) {
		sid := ""
		if raw, err := c.Cookie(name); err == nil && raw != "" {
			if claims, err := jwtMgr.ParseSessionToken(raw); err == nil {
				sid = claims.SessionID
			}
		}

		if sid == "" {
			sid = mgr.NewID()
			token, err := jwtMgr.IssueSessionToken(sid)
			if err != nil {
				logger.Error("签发会话 Cookie 失败", zap.Error(err))
				response.InternalError(c)
				c.Abort()
				return
			}
			c.SetSameSite(sameSite)
			c.SetCookie(name, token, int(jwtMgr.TTL().Seconds()), "/", cfg.Cookie.Domain, cfg.Cookie.Secure, true)
		}

		s := mgr.Acquire(sid)
		if err := s.Restore(c.Request.Context()); err != nil {
			logger.Warn("会话恢复失败", zap.String("session_id", sid), zap.Error(err))
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession 读取当前请求的会话
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}

// CurrentSnapshot 读取守卫放行时记录的会话快照
func CurrentSnapshot(c *gin.Context) (session.Snapshot, bool) {
	v, ok := c.Get(snapshotKey)
	if !ok {
		return session.Snapshot{}, false
	}
	sn, ok := v.(session.Snapshot)
	return sn, ok
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
