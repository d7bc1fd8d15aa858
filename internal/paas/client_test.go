package paas

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_CreateLogLogsInOnce(t *testing.T) {
	var logins, logs atomic.Int32
	var lastAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			logins.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"token":      "tok",
				"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			})
		case "/api/v1/logs":
			logs.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			var req CreateLogRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			lastAgent.Store(req.Agent)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewFromEnv(srv.URL, "key", "")
	for i := 0; i < 2; i++ {
		if err := c.CreateLog(context.Background(), CreateLogRequest{Action: "crawl", Level: "info"}); err != nil {
			t.Fatalf("CreateLog: %v", err)
		}
	}
	if logins.Load() != 1 || logs.Load() != 2 {
		t.Fatalf("logins=%d logs=%d", logins.Load(), logs.Load())
	}
	if got, _ := lastAgent.Load().(string); got != DefaultAgent {
		t.Fatalf("agent=%q", got)
	}
}

func TestNewFromEnv_Disabled(t *testing.T) {
	if c := NewFromEnv("", "key", ""); c != nil {
		t.Fatalf("expected nil client")
	}
	if c := NewFromEnv("http://x", " ", ""); c != nil {
		t.Fatalf("expected nil client")
	}
	// nil-safe
	LogCrawl(context.Background(), CrawlLog{RunID: "r1"})
}

func TestLogCrawl_RunIDIsSessionKey(t *testing.T) {
	got := make(chan CreateLogRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok"})
		case "/api/v1/logs":
			var req CreateLogRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			got <- req
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	ctx := WithClient(context.Background(), NewFromEnv(srv.URL, "key", "eventsync-test"))
	LogCrawl(ctx, CrawlLog{RunID: "run-1", Trigger: TriggerCron, Status: "ng", Reason: "ng", Err: errors.New("upstream status is ng")})

	select {
	case req := <-got:
		if req.SessionKey != "run-1" || req.Agent != "eventsync-test" {
			t.Fatalf("session=%q agent=%q", req.SessionKey, req.Agent)
		}
		if req.Action != "eventsync_crawl_failed" || req.Level != "warn" {
			t.Fatalf("action=%q level=%q", req.Action, req.Level)
		}
		if req.Metadata["trigger"] != TriggerCron || req.Details["reason"] != "ng" {
			t.Fatalf("metadata=%v details=%v", req.Metadata, req.Details)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no log received")
	}
}
