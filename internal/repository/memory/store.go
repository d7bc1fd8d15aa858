package memoryrepository

import (
	"context"
	"sync"

	"gorm.io/datatypes"

	"eventsync/internal/models"
	"eventsync/internal/repository"
)

// Store keeps documents in process memory. Writes of one call are applied
// under a single lock, so readers never see half a batch.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]map[string][]byte
	states map[string]models.SyncState
}

func NewStore() *Store {
	return &Store{
		docs:   map[string]map[string][]byte{},
		states: map[string]models.SyncState{},
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) WriteDocuments(ctx context.Context, docs []models.Document) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		coll, ok := s.docs[doc.Collection]
		if !ok {
			coll = map[string][]byte{}
			s.docs[doc.Collection] = coll
		}
		coll[doc.Key] = clone(doc.Data)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, collection, key string) (*models.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[collection][key]
	if !ok {
		return nil, nil
	}
	return &models.Document{Collection: collection, Key: key, Data: datatypes.JSON(clone(b))}, nil
}

func (s *Store) ListDocuments(ctx context.Context, params repository.ListDocumentsParams) ([]models.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := s.docs[params.Collection]
	keys := make([]string, 0, len(coll))
	for k := range coll {
		keys = append(keys, k)
	}
	repository.SortKeys(keys)
	page := repository.Page(keys, params.Limit, params.Offset)
	out := make([]models.Document, 0, len(page))
	for _, k := range page {
		out = append(out, models.Document{Collection: params.Collection, Key: k, Data: datatypes.JSON(clone(coll[k]))})
	}
	return out, nil
}

func (s *Store) CountDocuments(ctx context.Context, collection string) (int64, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.docs[collection])), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[scope]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	_ = ctx
	if state == nil {
		return nil
	}
	s.mu.Lock()
	s.states[state.Scope] = *state
	s.mu.Unlock()
	return nil
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	scopes := make([]string, 0, len(s.states))
	for scope := range s.states {
		scopes = append(scopes, scope)
	}
	repository.SortKeys(scopes)
	out := make([]models.SyncState, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, s.states[scope])
	}
	return out, nil
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
