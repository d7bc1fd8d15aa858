package paas

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Event Sync Service

Mirrors the itsukaralink events feed into a document store. Each event is
stored once under its id in the "events" collection.

## Trigger

- ANY /crawl

Requires the X-CRON-PASSWORD header when a trigger secret is configured.
Responds with "<status>\n<count>" on success. The same job also runs on a
cron schedule (every four hours, Asia/Tokyo).

| Status | Body |
| --- | --- |
| 200 | ok\n<count> |
| 403 | forbidden |
| 409 | crawl in progress |
| 500 | fetch failed, ng, persistence failed |

## Read API

- GET /api/events?limit=&offset=
- GET /api/events/{id}
- GET /api/sync-state

## Infra

- GET /healthz
- GET /readyz
- GET /metrics
- GET /swagger/index.html
`)
	})
}
