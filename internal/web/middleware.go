package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cookieName = "companion_sid"
	sidKey     = "sid"
)

// requestLogger logs each request once it has been served.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}
		log.Info("request", fields...)
	}
}

// sessionCookie makes sure the request carries a session id and exposes it
// under sidKey.
func sessionCookie() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sid, 0, "/", "", c.Request.TLS != nil, true)
		}
		c.Set(sidKey, sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string { return c.GetString(sidKey) }
