package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/metrics"
	"eventsync/internal/models"
	"eventsync/internal/repository"
)

// PersistenceError wraps a failed batch. Nothing from the batch was written.
type PersistenceError struct {
	Collection string
	Records    int
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %d records to %s: %v", e.Records, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// EventSyncService writes one feed snapshot to the store as a single batch.
type EventSyncService struct {
	Store        repository.DocumentWriter
	Collection   string
	MaxBatchSize int
	Logger       *zap.Logger
	Metrics      *metrics.Recorder
}

type SyncResult struct {
	Received int  `json:"received"`
	Written  int  `json:"written"`
	Skipped  bool `json:"skipped"`
}

func (s *EventSyncService) Sync(ctx context.Context, events []itsukaralink.Event) (SyncResult, error) {
	counts := len(events)
	logger := s.logger()
	logger.Info("write events", zap.Int("counts", counts))

	result := SyncResult{Received: counts}
	if counts == 0 {
		result.Skipped = true
		return result, nil
	}
	if s.Store == nil {
		return result, &PersistenceError{Collection: s.collection(), Records: counts, Err: errors.New("store is nil")}
	}

	collection := s.collection()
	batch := repository.NewBatch(s.Store, s.MaxBatchSize)
	for _, evt := range events {
		record := BuildRecord(evt)
		key := DocumentKey(record)
		logger.Info("stage event",
			zap.String("key", key),
			zap.String("name", record.Name),
			zap.Int64("genre_id", record.GenreID),
			zap.Int64("liver_id", record.Liver.ID),
		)
		if err := batch.Set(collection, key, record); err != nil {
			return result, &PersistenceError{Collection: collection, Records: counts, Err: err}
		}
	}

	staged := batch.Len()
	if err := batch.Commit(ctx); err != nil {
		logger.Error("commit events failed",
			zap.String("collection", collection),
			zap.Int("records", staged),
			zap.Error(err),
		)
		s.Metrics.BatchCommitted(staged, err)
		return result, &PersistenceError{Collection: collection, Records: staged, Err: err}
	}
	s.Metrics.BatchCommitted(staged, nil)
	logger.Info("commit events ok", zap.String("collection", collection), zap.Int("records", staged))

	result.Written = staged
	return result, nil
}

// BuildRecord projects a feed event onto its stored form.
func BuildRecord(evt itsukaralink.Event) models.EventRecord {
	return models.EventRecord{
		ID:          evt.ID,
		Name:        evt.Name,
		Description: evt.Description,
		Public:      evt.Public,
		URL:         evt.URL,
		Thumbnail:   thumbnail(evt.Thumbnail),
		StartDate:   evt.StartDate,
		EndDate:     evt.EndDate,
		Recommend:   evt.Recommend,
		GenreID:     GenreID(evt.Genre),
		Liver: models.LiverRef{
			ID:   evt.Liver.ID,
			Name: evt.Liver.Name,
		},
	}
}

// GenreID is the only place the optional genre is resolved. A missing genre
// and a genre with id 0 both map to models.NoGenreID.
func GenreID(g *itsukaralink.Genre) int64 {
	if g == nil || g.ID == 0 {
		return models.NoGenreID
	}
	return g.ID
}

func DocumentKey(record models.EventRecord) string {
	return strconv.FormatInt(record.ID, 10)
}

func thumbnail(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func (s *EventSyncService) collection() string {
	if c := strings.TrimSpace(s.Collection); c != "" {
		return c
	}
	return models.EventsCollection
}

func (s *EventSyncService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
