package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths 探活请求只在出错时记录
var quietPaths = map[string]bool{"/health": true}

// Logger 访问日志
// 每条记录带 request_id；已绑定会话的请求另带 session_id 与当前角色
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := accessLevel(status)
		if quietPaths[c.Request.URL.Path] && level == zapcore.InfoLevel {
			return
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if s, ok := CurrentSession(c); ok {
			fields = append(fields, zap.String("session_id", s.ID()))
			if sn := s.Snapshot(); sn.User != nil {
				fields = append(fields, zap.String("role", sn.User.Role.String()))
			}
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}

		if ce := logger.Check(level, "http"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// accessLevel 5xx 记 Error，4xx 记 Warn（401/503 属于正常的登录与恢复流程，降为 Info）
func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500 && status != 503:
		return zapcore.ErrorLevel
	case status >= 400 && status != 401:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
