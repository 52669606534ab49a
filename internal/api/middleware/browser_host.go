package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
)

// BrowserHost 将浏览器访问的主机名写入请求 context，供后端地址解析使用
// 经反向代理时以 X-Forwarded-Host 的第一个值为准
func BrowserHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host
		if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
			host = strings.TrimSpace(strings.Split(fwd, ",")[0])
		}
		c.Request = c.Request.WithContext(apiclient.WithBrowserHost(c.Request.Context(), host))
		c.Next()
	}
}
