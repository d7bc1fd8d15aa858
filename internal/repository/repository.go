package repository

import (
	"context"
	"sort"

	"eventsync/internal/models"
)

// DocumentWriter persists a set of documents atomically: either every
// document is written or none is.
type DocumentWriter interface {
	WriteDocuments(ctx context.Context, docs []models.Document) error
}

type DocumentStore interface {
	DocumentWriter
	GetDocument(ctx context.Context, collection, key string) (*models.Document, error)
	ListDocuments(ctx context.Context, params ListDocumentsParams) ([]models.Document, error)
	CountDocuments(ctx context.Context, collection string) (int64, error)
	Ping(ctx context.Context) error
}

type SyncStateRepository interface {
	GetSyncState(ctx context.Context, scope string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, state *models.SyncState) error
	ListSyncStates(ctx context.Context) ([]models.SyncState, error)
}

// Store is implemented by every backend.
type Store interface {
	DocumentStore
	SyncStateRepository
}

type ListDocumentsParams struct {
	Collection string
	Limit      int
	Offset     int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// SortKeys orders keys shortest first, then lexically, so decimal ids
// come out in numeric order.
func SortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

// Page applies offset and limit to an already sorted key list.
func Page(keys []string, limit, offset int) []string {
	limit = NormalizeLimit(limit)
	offset = NormalizeOffset(offset)
	if offset >= len(keys) {
		return nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}
	return keys[offset:end]
}
