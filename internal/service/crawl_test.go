package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"eventsync/internal/client/itsukaralink"
	"eventsync/internal/models"
	memoryrepository "eventsync/internal/repository/memory"
)

type fakeFetcher struct {
	resp    *itsukaralink.EventsResponse
	err     error
	calls   int
	started chan struct{}
	block   chan struct{}
}

func (f *fakeFetcher) FetchEvents(ctx context.Context) (*itsukaralink.EventsResponse, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func newCrawl(f EventFetcher, store *memoryrepository.Store) *CrawlService {
	return &CrawlService{
		Fetcher:      f,
		Sync:         &EventSyncService{Store: store},
		States:       store,
		AbortOnNG:    true,
		SingleFlight: true,
	}
}

func TestCrawl_OK(t *testing.T) {
	store := memoryrepository.NewStore()
	f := &fakeFetcher{resp: &itsukaralink.EventsResponse{Status: "ok", Data: itsukaralink.Data{Events: sampleEvents(2)}}}
	svc := newCrawl(f, store)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != "ok" || res.Fetched != 2 || res.Written != 2 || res.RunID == "" {
		t.Fatalf("result=%+v", res)
	}
	n, _ := store.CountDocuments(context.Background(), models.EventsCollection)
	if n != 2 {
		t.Fatalf("count=%d", n)
	}

	state, err := store.GetSyncState(context.Background(), ScopeEvents)
	if err != nil || state == nil {
		t.Fatalf("state=%v err=%v", state, err)
	}
	if state.LastSuccessAt == nil || state.LastError != nil {
		t.Fatalf("state=%+v", state)
	}
	if state.LastRunID == nil || *state.LastRunID != res.RunID {
		t.Fatalf("run id not stored")
	}
	var stats map[string]any
	if err := json.Unmarshal(state.StatsJSON, &stats); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats["written"].(float64) != 2 {
		t.Fatalf("stats=%v", stats)
	}
}

func TestCrawl_NGAborts(t *testing.T) {
	store := memoryrepository.NewStore()
	f := &fakeFetcher{resp: &itsukaralink.EventsResponse{Status: "ng", Data: itsukaralink.Data{Events: sampleEvents(1)}}}
	svc := newCrawl(f, store)

	res, err := svc.Run(context.Background())
	if !errors.Is(err, ErrUpstreamNG) {
		t.Fatalf("err=%v want ErrUpstreamNG", err)
	}
	if res.Status != "ng" || res.Written != 0 {
		t.Fatalf("result=%+v", res)
	}
	n, _ := store.CountDocuments(context.Background(), models.EventsCollection)
	if n != 0 {
		t.Fatalf("documents written on ng: %d", n)
	}
}

func TestCrawl_NGProceedsWhenAllowed(t *testing.T) {
	store := memoryrepository.NewStore()
	f := &fakeFetcher{resp: &itsukaralink.EventsResponse{Status: "ng"}}
	svc := newCrawl(f, store)
	svc.AbortOnNG = false

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Skipped || res.Fetched != 0 {
		t.Fatalf("result=%+v", res)
	}
}

func TestCrawl_FetchFailureKeepsLastSuccess(t *testing.T) {
	store := memoryrepository.NewStore()
	f := &fakeFetcher{resp: &itsukaralink.EventsResponse{Status: "ok", Data: itsukaralink.Data{Events: sampleEvents(1)}}}
	svc := newCrawl(f, store)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first: %v", err)
	}
	before, _ := store.GetSyncState(context.Background(), ScopeEvents)

	f.resp = nil
	f.err = &itsukaralink.FetchError{Reason: itsukaralink.ReasonTransport, Err: errors.New("dial")}
	_, err := svc.Run(context.Background())
	var fe *itsukaralink.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err=%v", err)
	}
	after, _ := store.GetSyncState(context.Background(), ScopeEvents)
	if after.LastError == nil {
		t.Fatalf("last error not recorded")
	}
	if after.LastSuccessAt == nil || !after.LastSuccessAt.Equal(*before.LastSuccessAt) {
		t.Fatalf("last success changed: %v -> %v", before.LastSuccessAt, after.LastSuccessAt)
	}
}

func TestCrawl_SingleFlight(t *testing.T) {
	store := memoryrepository.NewStore()
	f := &fakeFetcher{
		resp:    &itsukaralink.EventsResponse{Status: "ok"},
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	svc := newCrawl(f, store)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Run(context.Background())
	}()

	select {
	case <-f.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run never started")
	}

	if _, err := svc.Run(context.Background()); !errors.Is(err, ErrCrawlInProgress) {
		t.Fatalf("err=%v want ErrCrawlInProgress", err)
	}
	close(f.block)
	wg.Wait()
	if f.calls != 1 {
		t.Fatalf("fetch calls=%d want 1", f.calls)
	}
}

func TestCrawl_NilResponseIsFetchFailure(t *testing.T) {
	store := memoryrepository.NewStore()
	svc := newCrawl(&fakeFetcher{}, store)

	_, err := svc.Run(context.Background())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("err=%v want ErrEmptyResponse", err)
	}
	state, _ := store.GetSyncState(context.Background(), ScopeEvents)
	if state == nil || state.LastError == nil {
		t.Fatalf("state=%+v want last error recorded", state)
	}
	n, _ := store.CountDocuments(context.Background(), models.EventsCollection)
	if n != 0 {
		t.Fatalf("count=%d", n)
	}
}
