package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"eventsync/internal/models"
)

// DefaultMaxBatchWrites matches the per-batch write limit of hosted document
// stores. Feeds larger than this must be chunked by the caller.
const DefaultMaxBatchWrites = 500

var (
	ErrBatchTooLarge  = errors.New("batch exceeds maximum write count")
	ErrBatchCommitted = errors.New("batch already committed")
	ErrEmptyKey       = errors.New("document key is empty")
)

type docKey struct {
	collection string
	key        string
}

// Batch stages document writes and commits them once through a
// DocumentWriter. Setting the same key twice keeps the last value.
type Batch struct {
	writer    DocumentWriter
	maxWrites int
	order     []docKey
	docs      map[docKey]models.Document
	committed bool
}

func NewBatch(w DocumentWriter, maxWrites int) *Batch {
	if maxWrites <= 0 {
		maxWrites = DefaultMaxBatchWrites
	}
	return &Batch{
		writer:    w,
		maxWrites: maxWrites,
		docs:      map[docKey]models.Document{},
	}
}

func (b *Batch) Set(collection, key string, value any) error {
	if b.committed {
		return ErrBatchCommitted
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = models.EventsCollection
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal document %s/%s: %w", collection, key, err)
	}
	k := docKey{collection: collection, key: key}
	if _, ok := b.docs[k]; !ok {
		b.order = append(b.order, k)
	}
	b.docs[k] = models.Document{
		Collection: collection,
		Key:        key,
		Data:       datatypes.JSON(payload),
	}
	return nil
}

// Len is the number of distinct documents staged.
func (b *Batch) Len() int {
	return len(b.order)
}

func (b *Batch) MaxWrites() int {
	return b.maxWrites
}

// Commit writes all staged documents in one atomic call. A batch can be
// committed once, even if the commit fails.
func (b *Batch) Commit(ctx context.Context) error {
	if b.committed {
		return ErrBatchCommitted
	}
	b.committed = true
	if len(b.order) > b.maxWrites {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(b.order), b.maxWrites)
	}
	if len(b.order) == 0 {
		return nil
	}
	if b.writer == nil {
		return errors.New("batch writer is nil")
	}
	docs := make([]models.Document, 0, len(b.order))
	for _, k := range b.order {
		docs = append(docs, b.docs[k])
	}
	return b.writer.WriteDocuments(ctx, docs)
}
