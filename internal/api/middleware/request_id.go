package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
)

// RequestIDKey gin.Context 中请求 ID 的键
const RequestIDKey = "request_id"

const requestIDMaxLen = 64

// RequestID 请求追踪 ID
//
// 沿用浏览器或网关传入的 X-Request-ID（过长或含控制字符时重新生成），
// 同时写入请求 context，BFF 调用 REST 后端时原样透传，两端日志可按同一 ID 串联。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(RequestIDKey, rid)
		c.Header("X-Request-ID", rid)
		c.Request = c.Request.WithContext(apiclient.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}

// validRequestID 仅接受可打印 ASCII，防止日志注入
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID 读取当前请求 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
