package cronrunner

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	if loc.String() != DefaultTimeZone {
		t.Fatalf("loc=%s", loc)
	}
	if _, err := LoadLocation("Not/AZone"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEveryFourHoursInTokyo(t *testing.T) {
	loc, err := LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	sched, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse("0 0 */4 * * *")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	from := time.Date(2024, 3, 1, 5, 30, 0, 0, loc)
	next := sched.Next(from)
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("next=%s want %s", next, want)
	}
}

func TestRunner_AddRejectsBadSpec(t *testing.T) {
	r := New(nil, context.Background(), time.UTC)
	if _, err := r.Add("not a spec", func(context.Context) {}); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := r.Add("0 0 */4 * * *", func(context.Context) {}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if r.Location() != time.UTC {
		t.Fatalf("location=%s", r.Location())
	}
}
