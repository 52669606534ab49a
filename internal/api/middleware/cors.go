package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
//
// 会话依赖 Cookie，不能使用通配来源：只对白名单来源返回 Allow-Credentials，
// 来自其他来源的预检请求直接拒绝。
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		preflight := c.Request.Method == http.MethodOptions

		switch {
		case origin == "":
		case allowed[origin]:
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID, Retry-After")
			h.Add("Vary", "Origin")
			if preflight {
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-ID")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Max-Age", "86400")
			}
		case preflight:
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
