package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows the configured origins; "*" allows any. Preflight requests are
// answered here without reaching auth.
func CORS(origenes []string) gin.HandlerFunc {
	permitidos := make(map[string]bool, len(origenes))
	todos := false
	for _, o := range origenes {
		o = strings.TrimSpace(o)
		if o == "*" {
			todos = true
		}
		permitidos[o] = true
	}
	return func(c *gin.Context) {
		origen := c.GetHeader("Origin")
		switch {
		case todos:
			c.Header("Access-Control-Allow-Origin", "*")
		case origen != "" && permitidos[origen]:
			c.Header("Access-Control-Allow-Origin", origen)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
