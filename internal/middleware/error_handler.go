package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"casitas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var errInterno = apierror.ConCodigo("internal", "Error interno del servidor")

// ErrorHandler answers a generic 500 for errors pushed with c.Error by the
// handlers. The cause is logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last()
		reqLog(c).Error().
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				reqLog(c).Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errInterno)
			}
		}()
		c.Next()
	}
}

// Logger writes one access log line per request. 5xx responses log at error
// level and 4xx at warn so alerting can key on the level alone.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = reqLog(c).Error()
		case status >= 400:
			ev = reqLog(c).Warn()
		default:
			ev = reqLog(c).Info()
		}
		if claims := GetClaims(c); claims != nil {
			ev = ev.Str("user_id", claims.UserID).Str("rol", claims.Rol)
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func reqLog(c *gin.Context) *zerolog.Logger {
	l := log.With().Str("request_id", c.GetString(RequestIDKey)).Logger()
	return &l
}
