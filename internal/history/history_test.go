package history_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/raysh454/dccdev/internal/history"
	"github.com/raysh454/dccdev/internal/slots"
	"github.com/raysh454/dccdev/internal/testutil"
)

func newTestLog(t *testing.T) *history.Log {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	l, err := history.NewLog(db, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewLog: %v", err)
	}
	return l
}

func TestLog_RecordAndListNewestFirst(t *testing.T) {
	t.Parallel()
	l := newTestLog(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, a := range []history.Action{history.ActionSave, history.ActionDeploy, history.ActionStart} {
		_, err := l.Record(ctx, history.Entry{SlotID: 2, Action: a, PR: 42, BuildNumber: "137", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if _, err := l.Record(ctx, history.Entry{SlotID: 1, Action: history.ActionStop}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := l.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries for slot 2, got %d", len(got))
	}
	if got[0].Action != history.ActionStart || got[2].Action != history.ActionSave {
		t.Errorf("expected newest first, got %v then %v", got[0].Action, got[2].Action)
	}
	if got[0].ID == "" || !got[0].CreatedAt.Equal(base.Add(2*time.Minute)) {
		t.Errorf("unexpected id/created_at: %+v", got[0])
	}
}

func TestLog_ListLimit(t *testing.T) {
	t.Parallel()
	l := newTestLog(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := l.Record(ctx, history.Entry{SlotID: 3, Action: history.ActionStart}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := l.List(ctx, 3, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestLog_ListEmptySlot(t *testing.T) {
	t.Parallel()
	l := newTestLog(t)

	got, err := l.List(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestLog_FailedFlagRoundTrips(t *testing.T) {
	t.Parallel()
	l := newTestLog(t)
	ctx := context.Background()

	if _, err := l.Record(ctx, history.Entry{SlotID: 1, Action: history.ActionDeploy, Failed: true, Output: "spawn failed"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, _ := l.List(ctx, 1, 1)
	if len(got) != 1 || !got[0].Failed || got[0].Output != "spawn failed" {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestNewLog_NilDB(t *testing.T) {
	if _, err := history.NewLog(nil, &testutil.DummyLogger{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}

// ─── SlotDiff ──────────────────────────────────────────────────────────

func TestSlotDiff(t *testing.T) {
	before := testutil.SampleSlots(1)[0]
	after := before.WithBuild(slots.Build{PR: 42, BuildNumber: "137"})

	d, err := history.SlotDiff(before, after)
	if err != nil {
		t.Fatalf("SlotDiff: %v", err)
	}
	if !strings.Contains(d, "137") || !strings.HasPrefix(d, "@@") {
		t.Errorf("expected patch text mentioning the new build, got %q", d)
	}

	same, err := history.SlotDiff(before, before)
	if err != nil {
		t.Fatalf("SlotDiff: %v", err)
	}
	if same != "" {
		t.Errorf("expected empty diff for identical slots, got %q", same)
	}
}
