package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/redis"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// RateRule 一条限流规则，Name 区分不同接口的计数
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (r RateRule) key(ip string) string {
	return "gestion:ratelimit:" + r.Name + ":" + ip
}

// RateLimit 按客户端 IP 的滑动窗口限流（计数存放于 Redis）
// rdb 为 nil 或 Redis 出错时降级放行
func RateLimit(rdb *redis.Client, rule RateRule, logger *zap.Logger) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(rule.Window.Round(time.Second) / time.Second))

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rule.key(c.ClientIP()), rule.Limit, rule.Window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.String("rule", rule.Name), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			logger.Info("触发限流", zap.String("rule", rule.Name), zap.String("ip", c.ClientIP()))
			c.Header("Retry-After", retryAfter)
			response.Error(c, http.StatusTooManyRequests, 10004, "Trop de tentatives, veuillez réessayer plus tard")
			c.Abort()
			return
		}

		c.Next()
	}
}
