package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/models"
	"eventsync/internal/repository"
	memoryrepository "eventsync/internal/repository/memory"
)

type countingWriter struct {
	calls int
	docs  []models.Document
	err   error
}

func (w *countingWriter) WriteDocuments(ctx context.Context, docs []models.Document) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	w.docs = append(w.docs, docs...)
	return nil
}

func sampleEvents(n int) []itsukaralink.Event {
	out := make([]itsukaralink.Event, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, itsukaralink.Event{
			ID:    int64(i),
			Name:  "event",
			Genre: &itsukaralink.Genre{ID: 3, Name: "game"},
			Liver: itsukaralink.Liver{ID: 7, Name: "L", Avatar: "a.png", Color: "#fff"},
		})
	}
	return out
}

func TestBuildRecord_NullGenre(t *testing.T) {
	thumb := "https://example.com/t.png"
	rec := BuildRecord(itsukaralink.Event{
		ID:        42,
		Name:      "stream",
		Public:    1,
		Thumbnail: &thumb,
		StartDate: "2019-01-01T00:00:00.000+09:00",
		Liver:     itsukaralink.Liver{ID: 1, Name: "L", Avatar: "x", Color: "#000"},
	})
	if DocumentKey(rec) != "42" {
		t.Fatalf("key=%q", DocumentKey(rec))
	}
	if rec.GenreID != models.NoGenreID {
		t.Fatalf("genre_id=%d want %d", rec.GenreID, models.NoGenreID)
	}
	if rec.Liver != (models.LiverRef{ID: 1, Name: "L"}) {
		t.Fatalf("liver=%+v", rec.Liver)
	}
	if rec.Thumbnail == nil || *rec.Thumbnail != thumb {
		t.Fatalf("thumbnail=%v", rec.Thumbnail)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	liver := m["liver"].(map[string]any)
	if _, ok := liver["avatar"]; ok {
		t.Fatalf("liver should only carry id and name: %v", liver)
	}
	if _, ok := m["genre"]; ok {
		t.Fatalf("genre object should not be stored")
	}
}

func TestGenreID(t *testing.T) {
	tests := []struct {
		name string
		in   *itsukaralink.Genre
		want int64
	}{
		{"nil", nil, models.NoGenreID},
		{"zero", &itsukaralink.Genre{ID: 0}, models.NoGenreID},
		{"set", &itsukaralink.Genre{ID: 5, Name: "music"}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenreID(tt.in); got != tt.want {
				t.Fatalf("GenreID=%d want %d", got, tt.want)
			}
		})
	}
}

func TestEventSync_SingleCommit(t *testing.T) {
	w := &countingWriter{}
	svc := &EventSyncService{Store: w}
	res, err := svc.Sync(context.Background(), sampleEvents(3))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if w.calls != 1 {
		t.Fatalf("commits=%d want 1", w.calls)
	}
	if res.Written != 3 || res.Received != 3 || res.Skipped {
		t.Fatalf("result=%+v", res)
	}
	for i, doc := range w.docs {
		if doc.Collection != models.EventsCollection {
			t.Fatalf("collection=%q", doc.Collection)
		}
		var rec models.EventRecord
		if err := json.Unmarshal(doc.Data, &rec); err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if DocumentKey(rec) != doc.Key {
			t.Fatalf("key=%q id=%d", doc.Key, rec.ID)
		}
	}
}

func TestEventSync_EmptySkipsCommit(t *testing.T) {
	w := &countingWriter{}
	svc := &EventSyncService{Store: w}
	res, err := svc.Sync(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if w.calls != 0 {
		t.Fatalf("commits=%d want 0", w.calls)
	}
	if !res.Skipped {
		t.Fatalf("expected skipped")
	}
}

func TestEventSync_TooLarge(t *testing.T) {
	w := &countingWriter{}
	svc := &EventSyncService{Store: w, MaxBatchSize: 2}
	_, err := svc.Sync(context.Background(), sampleEvents(3))
	if !errors.Is(err, repository.ErrBatchTooLarge) {
		t.Fatalf("err=%v want ErrBatchTooLarge", err)
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}
	if w.calls != 0 {
		t.Fatalf("writer called %d times", w.calls)
	}
}

func TestEventSync_WriterFailure(t *testing.T) {
	w := &countingWriter{err: errors.New("unavailable")}
	svc := &EventSyncService{Store: w}
	res, err := svc.Sync(context.Background(), sampleEvents(2))
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("err=%v", err)
	}
	if pe.Records != 2 || res.Written != 0 {
		t.Fatalf("records=%d written=%d", pe.Records, res.Written)
	}
}

func TestEventSync_Idempotent(t *testing.T) {
	store := memoryrepository.NewStore()
	svc := &EventSyncService{Store: store}
	ctx := context.Background()
	events := sampleEvents(4)

	if _, err := svc.Sync(ctx, events); err != nil {
		t.Fatalf("first: %v", err)
	}
	first, _ := store.ListDocuments(ctx, repository.ListDocumentsParams{Collection: models.EventsCollection, Limit: 10})
	if _, err := svc.Sync(ctx, events); err != nil {
		t.Fatalf("second: %v", err)
	}
	second, _ := store.ListDocuments(ctx, repository.ListDocumentsParams{Collection: models.EventsCollection, Limit: 10})

	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("len first=%d second=%d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key || string(first[i].Data) != string(second[i].Data) {
			t.Fatalf("doc %d changed: %s vs %s", i, first[i].Data, second[i].Data)
		}
	}
}

func TestEventSync_OverwritesExisting(t *testing.T) {
	store := memoryrepository.NewStore()
	svc := &EventSyncService{Store: store}
	ctx := context.Background()

	events := sampleEvents(1)
	if _, err := svc.Sync(ctx, events); err != nil {
		t.Fatalf("first: %v", err)
	}
	events[0].Name = "renamed"
	events[0].Genre = nil
	if _, err := svc.Sync(ctx, events); err != nil {
		t.Fatalf("second: %v", err)
	}
	doc, err := store.GetDocument(ctx, models.EventsCollection, "1")
	if err != nil || doc == nil {
		t.Fatalf("get: doc=%v err=%v", doc, err)
	}
	var rec models.EventRecord
	if err := json.Unmarshal(doc.Data, &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Name != "renamed" || rec.GenreID != models.NoGenreID {
		t.Fatalf("record=%+v", rec)
	}
}
