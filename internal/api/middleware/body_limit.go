package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/response"
)

// formBodyMax JSON 与普通表单请求体上限
const formBodyMax int64 = 1 << 20

// BodyLimit 请求体大小限制
// maxBytes 作用于 multipart 上传（需容纳多个附件，单个附件 5MB 的限制在申请模块内校验），
// 其余请求体另以 formBodyMax 封顶
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if !strings.HasPrefix(c.ContentType(), "multipart/") && limit > formBodyMax {
			limit = formBodyMax
		}

		if c.Request.ContentLength > limit {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "Requête trop volumineuse")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
