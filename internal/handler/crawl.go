package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventsync/internal/auth"
	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/paas"
	"eventsync/internal/service"
)

type CrawlRunner interface {
	Run(ctx context.Context) (service.CrawlResult, error)
}

// CrawlHandler exposes the crawl job as a plain-text HTTP trigger.
type CrawlHandler struct {
	Runner CrawlRunner
	Guard  auth.SecretGuard
	Logger *zap.Logger
}

func (h *CrawlHandler) Register(r *gin.Engine) {
	r.Any("/crawl", auth.RequireSecret(h.Guard, h.Logger), h.crawl)
}

// @Summary Run one crawl
// @Description Fetches the events feed and upserts every event. Any method is accepted.
// @Tags crawl
// @Produce plain
// @Param X-CRON-PASSWORD header string false "trigger secret"
// @Success 200 {string} string "<status>\n<count>"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "crawl in progress"
// @Failure 500 {string} string "fetch failed | ng | persistence failed"
// @Router /crawl [get]
// @Router /crawl [post]
// @Router /crawl [put]
// @Router /crawl [delete]
// @Router /crawl [patch]
func (h *CrawlHandler) crawl(c *gin.Context) {
	if h.Runner == nil {
		c.String(http.StatusInternalServerError, "service unavailable")
		return
	}
	result, err := h.Runner.Run(c.Request.Context())
	if err != nil {
		status, body := crawlFailure(err)
		if h.Logger != nil {
			h.Logger.Warn("crawl trigger failed",
				zap.String("run_id", result.RunID),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		paas.LogCrawl(c.Request.Context(), paas.CrawlLog{
			RunID:   result.RunID,
			Trigger: paas.TriggerHTTP,
			Status:  result.Status,
			Fetched: result.Fetched,
			Reason:  body,
			Err:     err,
		})
		c.String(status, body)
		return
	}
	paas.LogCrawl(c.Request.Context(), paas.CrawlLog{
		RunID:   result.RunID,
		Trigger: paas.TriggerHTTP,
		Status:  result.Status,
		Fetched: result.Fetched,
		Written: result.Written,
		Skipped: result.Skipped,
	})
	c.String(http.StatusOK, result.Status+"\n"+strconv.Itoa(result.Fetched))
}

func crawlFailure(err error) (int, string) {
	var fetchErr *itsukaralink.FetchError
	var persistErr *service.PersistenceError
	switch {
	case errors.Is(err, service.ErrCrawlInProgress):
		return http.StatusConflict, "crawl in progress"
	case errors.Is(err, service.ErrUpstreamNG):
		return http.StatusInternalServerError, "ng"
	case errors.As(err, &fetchErr), errors.Is(err, service.ErrEmptyResponse):
		return http.StatusInternalServerError, "fetch failed"
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, "persistence failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
