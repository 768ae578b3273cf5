package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pagecraft/docprep/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *RunDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRun(kind Kind, dir string, started time.Time, pages ...model.PageResult) *Run {
	return &Run{
		ID:         NewRunID(),
		Kind:       kind,
		InputDir:   dir,
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		TotalPages: len(pages),
		Pages:      pages,
		Result:     json.RawMessage(`{"pages":[]}`),
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		run := newRun(KindExtract, "/scans/a", time.Now())
		if err := db.SaveRun(context.Background(), run); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		if _, err := db.GetRun(context.Background(), run.ID); err != nil {
			t.Errorf("run lost after reopen: %v", err)
		}
	})
}

func TestRunDB_SaveAndGetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	pages := []model.PageResult{
		{Page: 1, Source: "page_1.png", Fingerprint: "aa", File: "page_1_pre.jpg", Bytes: 1234, Rotated: 90, Unwarped: true},
		{Page: 2, Source: "page_2.png", Fingerprint: "bb", File: "page_2_pre.jpg", Bytes: 99, Fallback: true, Error: "orientation: boom"},
	}
	run := newRun(KindPreprocess, "/scans/receipt", started, pages...)
	run.Fallbacks = 1

	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}

	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
	if got.Duration() != 1500*time.Millisecond {
		t.Errorf("expected 1.5s duration, got %v", got.Duration())
	}
}

func TestRunDB_GetRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	a := newRun(KindExtract, "/scans/a", time.Now())
	a.ID = "aaaa1111-0000-0000-0000-000000000000"
	b := newRun(KindExtract, "/scans/b", time.Now())
	b.ID = "aaaa2222-0000-0000-0000-000000000000"
	for _, r := range []*Run{a, b} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("unique prefix", func(t *testing.T) {
		got, err := db.GetRun(ctx, "aaaa1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != a.ID {
			t.Errorf("expected %s, got %s", a.ID, got.ID)
		}
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		if _, err := db.GetRun(ctx, "aaaa"); !errors.Is(err, ErrAmbiguousRunID) {
			t.Errorf("expected ErrAmbiguousRunID, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := db.GetRun(ctx, "ffff"); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("empty id", func(t *testing.T) {
		if _, err := db.GetRun(ctx, " "); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})
}

func TestRunDB_SaveRun_DuplicateID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := newRun(KindExtract, "/scans/a", time.Now(), model.PageResult{Page: 1, Source: "page_1.png"})
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveRun(ctx, run); err == nil {
		t.Error("expected error for duplicate run id")
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after rollback, got %d", len(runs))
	}
}

func TestRunDB_ListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		// Sub-second offsets check that ordering is chronological.
		run := newRun(KindPreprocess, "/scans/a", base.Add(time.Duration(i)*500*time.Millisecond),
			model.PageResult{Page: 1, Source: "page_1.png"})
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	got := make([]string, len(runs))
	for i, r := range runs {
		got[i] = r.ID
		if r.Pages != nil || r.Result != nil {
			t.Error("ListRuns must not load pages or result")
		}
	}
	want := []string{ids[2], ids[1], ids[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	limited, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != ids[2] {
		t.Errorf("unexpected limited runs: %+v", limited)
	}
}

func TestRunDB_LastFingerprint(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	old := newRun(KindExtract, "/scans/a", base, model.PageResult{Page: 1, Source: "page_1.png", Fingerprint: "old"})
	recent := newRun(KindExtract, "/scans/a", base.Add(time.Hour), model.PageResult{Page: 1, Source: "page_1.png", Fingerprint: "new"})
	other := newRun(KindExtract, "/scans/b", base.Add(2*time.Hour), model.PageResult{Page: 1, Source: "page_1.png", Fingerprint: "other"})
	for _, r := range []*Run{old, recent, other} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	fp, err := db.LastFingerprint(ctx, "/scans/a", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp != "new" {
		t.Errorf("expected 'new', got %q", fp)
	}

	fp, err = db.LastFingerprint(ctx, "/scans/a", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp != "" {
		t.Errorf("expected no fingerprint, got %q", fp)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"stored layout", "2026-01-02T03:04:05.000000006Z", time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)},
		{"sqlite default", "2026-01-02 03:04:05", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"invalid", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
