package repository

import (
	"context"
	"errors"
	"testing"

	"eventsync/internal/models"
)

type recordingWriter struct {
	calls [][]models.Document
	err   error
}

func (w *recordingWriter) WriteDocuments(ctx context.Context, docs []models.Document) error {
	w.calls = append(w.calls, docs)
	return w.err
}

func TestBatch_CommitOnce(t *testing.T) {
	w := &recordingWriter{}
	b := NewBatch(w, 10)
	for _, key := range []string{"1", "2", "3"} {
		if err := b.Set("events", key, map[string]string{"k": key}); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("len=%d want 3", b.Len())
	}
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(w.calls) != 1 || len(w.calls[0]) != 3 {
		t.Fatalf("calls=%v", w.calls)
	}
	if w.calls[0][0].Key != "1" || w.calls[0][2].Key != "3" {
		t.Fatalf("order not preserved: %v", w.calls[0])
	}
	if err := b.Commit(context.Background()); !errors.Is(err, ErrBatchCommitted) {
		t.Fatalf("second commit err=%v", err)
	}
	if err := b.Set("events", "4", 1); !errors.Is(err, ErrBatchCommitted) {
		t.Fatalf("set after commit err=%v", err)
	}
}

func TestBatch_DuplicateKeyKeepsLast(t *testing.T) {
	w := &recordingWriter{}
	b := NewBatch(w, 10)
	_ = b.Set("events", "7", map[string]int{"v": 1})
	_ = b.Set("events", "7", map[string]int{"v": 2})
	if b.Len() != 1 {
		t.Fatalf("len=%d want 1", b.Len())
	}
	if err := b.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := string(w.calls[0][0].Data); got != `{"v":2}` {
		t.Fatalf("data=%s", got)
	}
}

func TestBatch_TooLargeWritesNothing(t *testing.T) {
	w := &recordingWriter{}
	b := NewBatch(w, 2)
	_ = b.Set("events", "1", 1)
	_ = b.Set("events", "2", 2)
	_ = b.Set("events", "3", 3)
	err := b.Commit(context.Background())
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("err=%v want ErrBatchTooLarge", err)
	}
	if len(w.calls) != 0 {
		t.Fatalf("writer should not be called")
	}
}

func TestBatch_EmptyKey(t *testing.T) {
	b := NewBatch(&recordingWriter{}, 0)
	if err := b.Set("events", " ", 1); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("err=%v", err)
	}
	if b.MaxWrites() != DefaultMaxBatchWrites {
		t.Fatalf("max=%d", b.MaxWrites())
	}
}

func TestBatch_WriterError(t *testing.T) {
	boom := errors.New("boom")
	b := NewBatch(&recordingWriter{err: boom}, 10)
	_ = b.Set("events", "1", 1)
	if err := b.Commit(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestSortKeysAndPage(t *testing.T) {
	keys := []string{"100", "9", "42", "10", "1"}
	SortKeys(keys)
	want := []string{"1", "9", "10", "42", "100"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys=%v want %v", keys, want)
		}
	}
	page := Page(keys, 2, 1)
	if len(page) != 2 || page[0] != "9" || page[1] != "10" {
		t.Fatalf("page=%v", page)
	}
	if got := Page(keys, 10, 10); got != nil {
		t.Fatalf("page past end=%v", got)
	}
}
