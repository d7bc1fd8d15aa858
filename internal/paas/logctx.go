package paas

import (
	"context"
	"time"
)

const (
	TriggerCron = "cron"
	TriggerHTTP = "http"
)

// CrawlLog is the remote audit entry for one crawl invocation. RunID is sent
// as the session key so every entry of a run groups together.
type CrawlLog struct {
	RunID   string
	Trigger string
	Status  string
	Fetched int
	Written int
	Skipped bool
	Reason  string
	Err     error
}

func (l CrawlLog) request() CreateLogRequest {
	details := map[string]any{
		"run_id":  l.RunID,
		"status":  l.Status,
		"fetched": l.Fetched,
		"written": l.Written,
		"skipped": l.Skipped,
	}
	req := CreateLogRequest{
		Action:     "eventsync_crawl",
		Level:      "info",
		Details:    details,
		SessionKey: l.RunID,
		Metadata:   map[string]any{"trigger": l.Trigger},
	}
	if l.Err != nil {
		req.Action = "eventsync_crawl_failed"
		req.Level = "warn"
		details["error"] = l.Err.Error()
		if l.Reason != "" {
			details["reason"] = l.Reason
		}
	}
	return req
}

// LogCrawl ships one crawl entry through the client carried by ctx.
// Failures are dropped.
func LogCrawl(ctx context.Context, l CrawlLog) {
	p := ClientFromContext(ctx)
	if p == nil {
		return
	}
	ctx2, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.CreateLog(ctx2, l.request())
}
