package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/metrics"
	"eventsync/internal/models"
	"eventsync/internal/repository"
)

const ScopeEvents = "events"

var (
	ErrCrawlInProgress = errors.New("crawl already in progress")
	ErrUpstreamNG      = errors.New("upstream status is ng")
	ErrEmptyResponse   = errors.New("fetcher returned no response")
)

type EventFetcher interface {
	FetchEvents(ctx context.Context) (*itsukaralink.EventsResponse, error)
}

type EventSyncer interface {
	Sync(ctx context.Context, events []itsukaralink.Event) (SyncResult, error)
}

// CrawlService runs one fetch → sync invocation. With SingleFlight set an
// invocation that overlaps a running one returns ErrCrawlInProgress and does
// nothing; without it overlapping runs may race on the same documents.
type CrawlService struct {
	Fetcher      EventFetcher
	Sync         EventSyncer
	States       repository.SyncStateRepository
	Logger       *zap.Logger
	Metrics      *metrics.Recorder
	AbortOnNG    bool
	SingleFlight bool

	mu sync.Mutex
}

type CrawlResult struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Fetched  int           `json:"fetched"`
	Written  int           `json:"written"`
	Skipped  bool          `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

func (s *CrawlService) Run(ctx context.Context) (CrawlResult, error) {
	if s.SingleFlight {
		if !s.mu.TryLock() {
			s.Metrics.CrawlBusy()
			s.logger().Warn("crawl skipped: previous run still active")
			return CrawlResult{}, ErrCrawlInProgress
		}
		defer s.mu.Unlock()
	}

	start := time.Now().UTC()
	result := CrawlResult{RunID: uuid.NewString()}
	logger := s.logger().With(zap.String("run_id", result.RunID))
	logger.Info("crawl started")

	if s.Fetcher == nil || s.Sync == nil {
		err := errors.New("crawl service is not wired")
		s.finish(ctx, logger, &result, start, metrics.OutcomeFetchFailed, err)
		return result, err
	}

	resp, err := s.Fetcher.FetchEvents(ctx)
	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		s.finish(ctx, logger, &result, start, metrics.OutcomeFetchFailed, err)
		return result, err
	}
	result.Status = resp.Status
	events := resp.Events()
	result.Fetched = len(events)
	s.Metrics.EventsFetched(len(events))

	if !resp.OK() {
		logger.Error("crawl: upstream status is ng", zap.String("status", resp.Status), zap.Int("events", len(events)))
		if s.AbortOnNG {
			s.finish(ctx, logger, &result, start, metrics.OutcomeUpstreamNG, ErrUpstreamNG)
			return result, ErrUpstreamNG
		}
	}

	syncResult, err := s.Sync.Sync(ctx, events)
	result.Written = syncResult.Written
	result.Skipped = syncResult.Skipped
	if err != nil {
		s.finish(ctx, logger, &result, start, metrics.OutcomePersistence, err)
		return result, err
	}

	outcome := metrics.OutcomeOK
	if result.Skipped {
		outcome = metrics.OutcomeSkipped
	}
	if !resp.OK() {
		outcome = metrics.OutcomeUpstreamNG
	}
	s.finish(ctx, logger, &result, start, outcome, nil)
	return result, nil
}

func (s *CrawlService) finish(ctx context.Context, logger *zap.Logger, result *CrawlResult, start time.Time, outcome string, runErr error) {
	end := time.Now().UTC()
	result.Duration = end.Sub(start)
	s.Metrics.CrawlFinished(outcome, result.Duration)

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.String("status", result.Status),
		zap.Int("fetched", result.Fetched),
		zap.Int("written", result.Written),
		zap.Bool("skipped", result.Skipped),
		zap.Duration("duration", result.Duration),
	}
	if runErr != nil {
		logger.Warn("crawl finished with error", append(fields, zap.Error(runErr))...)
	} else {
		logger.Info("crawl finished", fields...)
	}

	if s.States == nil {
		return
	}
	state := &models.SyncState{
		Scope:         ScopeEvents,
		LastRunID:     &result.RunID,
		LastAttemptAt: &end,
		StatsJSON: statsJSON(map[string]any{
			"outcome": outcome,
			"status":  result.Status,
			"fetched": result.Fetched,
			"written": result.Written,
			"skipped": result.Skipped,
		}),
	}
	if prev, err := s.States.GetSyncState(ctx, ScopeEvents); err == nil && prev != nil {
		state.LastSuccessAt = prev.LastSuccessAt
	}
	if runErr != nil {
		msg := runErr.Error()
		state.LastError = &msg
	} else {
		state.LastSuccessAt = &end
	}
	if err := s.States.SaveSyncState(ctx, state); err != nil {
		logger.Warn("save sync state failed", zap.Error(err))
	}
}

func (s *CrawlService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func statsJSON(stats map[string]any) datatypes.JSON {
	if len(stats) == 0 {
		return datatypes.JSON([]byte("null"))
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(payload)
}
