package redisrepository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"eventsync/internal/models"
	"eventsync/internal/repository"
)

type Store struct {
	Client *redis.Client
	Prefix string
}

func NewStore(opt *redis.Options, prefix string) *Store {
	return &Store{Client: redis.NewClient(opt), Prefix: prefix}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) docKey(collection, key string) string {
	return s.Prefix + "doc:" + collection + ":" + key
}

func (s *Store) indexKey(collection string) string {
	return s.Prefix + "idx:" + collection
}

func (s *Store) stateKey(scope string) string {
	return s.Prefix + "sync_state:" + scope
}

func (s *Store) statesKey() string {
	return s.Prefix + "sync_states"
}

// WriteDocuments sets every document inside one MULTI/EXEC transaction.
func (s *Store) WriteDocuments(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, doc := range docs {
			pipe.Set(ctx, s.docKey(doc.Collection, doc.Key), []byte(doc.Data), 0)
			pipe.SAdd(ctx, s.indexKey(doc.Collection), doc.Key)
		}
		return nil
	})
	return err
}

func (s *Store) GetDocument(ctx context.Context, collection, key string) (*models.Document, error) {
	b, err := s.Client.Get(ctx, s.docKey(collection, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.Document{Collection: collection, Key: key, Data: datatypes.JSON(b)}, nil
}

func (s *Store) ListDocuments(ctx context.Context, params repository.ListDocumentsParams) ([]models.Document, error) {
	collection := strings.TrimSpace(params.Collection)
	keys, err := s.Client.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	repository.SortKeys(keys)
	page := repository.Page(keys, params.Limit, params.Offset)
	if len(page) == 0 {
		return []models.Document{}, nil
	}
	full := make([]string, 0, len(page))
	for _, k := range page {
		full = append(full, s.docKey(collection, k))
	}
	vals, err := s.Client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, models.Document{Collection: collection, Key: page[i], Data: datatypes.JSON(str)})
	}
	return out, nil
}

func (s *Store) CountDocuments(ctx context.Context, collection string) (int64, error) {
	return s.Client.SCard(ctx, s.indexKey(strings.TrimSpace(collection))).Result()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	b, err := s.Client.Get(ctx, s.stateKey(scope)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state models.SyncState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if state == nil {
		return nil
	}
	if strings.TrimSpace(state.Scope) == "" {
		return errors.New("sync state scope is empty")
	}
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.stateKey(state.Scope), b, 0)
		pipe.SAdd(ctx, s.statesKey(), state.Scope)
		return nil
	})
	return err
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	scopes, err := s.Client.SMembers(ctx, s.statesKey()).Result()
	if err != nil {
		return nil, err
	}
	repository.SortKeys(scopes)
	out := make([]models.SyncState, 0, len(scopes))
	for _, scope := range scopes {
		state, err := s.GetSyncState(ctx, scope)
		if err != nil {
			return nil, err
		}
		if state != nil {
			out = append(out, *state)
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Close()
}
