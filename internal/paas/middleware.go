package paas

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteAuditMiddleware reports non-read requests to /api/ and /crawl.
func WriteAuditMiddleware(p *Client, logger *zap.Logger) gin.HandlerFunc {
	if p == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if path != "/crawl" {
			if !strings.HasPrefix(path, "/api/") {
				return
			}
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return
			}
		}

		status := c.Writer.Status()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := p.CreateLog(ctx, CreateLogRequest{
			Action: "eventsync_http_write",
			Level:  levelFromStatus(status),
			Details: map[string]any{
				"method":    method,
				"path":      path,
				"status":    status,
				"duration":  time.Since(start).String(),
				"client_ip": c.ClientIP(),
			},
		})
		if err != nil && logger != nil {
			logger.Debug("paas audit log failed", zap.Error(err))
		}
	}
}

func levelFromStatus(status int) string {
	if status >= 500 {
		return "error"
	}
	if status >= 400 {
		return "warn"
	}
	return "info"
}
