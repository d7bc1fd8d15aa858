package paas

import (
	"github.com/gin-gonic/gin"
)

// InjectClientMiddleware makes p reachable from handlers through the request
// context, so LogCrawl works the same from HTTP and cron.
func InjectClientMiddleware(p *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil && c.Request != nil {
			c.Request = c.Request.WithContext(WithClient(c.Request.Context(), p))
		}
		c.Next()
	}
}
