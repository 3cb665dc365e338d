package middleware

import (
	"time"

	"donation-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request once the handler chain has finished.
func RequestLogger(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		details := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if p := CurrentPrincipal(c); p != nil {
			details["principal_id"] = p.ID().String()
			details["principal_type"] = string(p.Kind)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("http", "request", details)
		case status >= 400:
			log.Warn("http", "request", details)
		default:
			log.Info("http", "request", details)
		}
	}
}
