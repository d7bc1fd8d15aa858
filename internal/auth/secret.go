package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const DefaultSecretHeader = "X-CRON-PASSWORD"

type Result int

const (
	Pass Result = iota
	Missing
	Mismatch
)

func (r Result) String() string {
	switch r {
	case Pass:
		return "pass"
	case Missing:
		return "missing"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// SecretGuard compares one request header against a shared secret.
// An empty Secret disables the check.
type SecretGuard struct {
	Header string
	Secret string
}

func NewSecretGuard(header, secret string) SecretGuard {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultSecretHeader
	}
	return SecretGuard{Header: header, Secret: secret}
}

func (g SecretGuard) Enabled() bool {
	return g.Secret != ""
}

func (g SecretGuard) Check(value string) Result {
	if !g.Enabled() {
		return Pass
	}
	if value == "" {
		return Missing
	}
	if subtle.ConstantTimeCompare([]byte(value), []byte(g.Secret)) != 1 {
		return Mismatch
	}
	return Pass
}

// RequireSecret aborts with 403 before the next handler runs when the
// guard does not pass.
func RequireSecret(g SecretGuard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := g.Header
		if header == "" {
			header = DefaultSecretHeader
		}
		res := g.Check(c.GetHeader(header))
		if res != Pass {
			if logger != nil {
				logger.Warn("crawl trigger rejected",
					zap.String("result", res.String()),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
				)
			}
			c.String(http.StatusForbidden, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireBearer guards the read API. Infra endpoints stay open.
func RequireBearer(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		p := c.Request.URL.Path
		if !strings.HasPrefix(p, "/api/") {
			c.Next()
			return
		}
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		c.Next()
	}
}
