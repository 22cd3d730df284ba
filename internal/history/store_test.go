package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ytget/yt-mp3/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	done := &model.Run{
		ID:          "run-1",
		URL:         "https://youtu.be/zmXUWKwxDg4",
		Title:       "Test",
		State:       model.StateDone,
		BitrateKbps: 192,
		OutputPath:  "/music/Test.mp3",
		StartedAt:   base,
		FinishedAt:  base.Add(42 * time.Second),
	}
	failed := &model.Run{
		ID:         "run-2",
		URL:        "https://youtu.be/aaaaaaaaaaa",
		State:      model.StateFailed,
		TempPath:   "/music/tmp_x.m4a",
		LastError:  "source stream error: connection reset",
		StartedAt:  base.Add(time.Minute),
		FinishedAt: base.Add(2 * time.Minute),
	}

	for _, run := range []*model.Run{done, failed} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record(%s) failed: %v", run.ID, err)
		}
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}

	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Errorf("Expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}

	got := runs[1]
	if got.Title != "Test" || got.State != model.StateDone || got.BitrateKbps != 192 || got.OutputPath != "/music/Test.mp3" {
		t.Errorf("Unexpected run: %+v", got)
	}
	if !got.StartedAt.Equal(done.StartedAt) || !got.FinishedAt.Equal(done.FinishedAt) {
		t.Errorf("Timestamps did not round-trip: %v %v", got.StartedAt, got.FinishedAt)
	}
	if runs[0].LastError != failed.LastError || runs[0].TempPath != failed.TempPath {
		t.Errorf("Failure details did not round-trip: %+v", runs[0])
	}
}

func TestStore_RecordReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := model.NewRun("https://youtu.be/zmXUWKwxDg4")
	run.State = model.StateFetching
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	run.State = model.StateDone
	run.FinishedAt = time.Now()
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].State != model.StateDone {
		t.Errorf("Expected a single Done run, got %+v", runs)
	}
}

func TestStore_ListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		run := model.NewRun("https://example.com")
		run.State = model.StateDone
		run.StartedAt = base.Add(time.Duration(i) * time.Second)
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	runs, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(runs))
	}
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	run := model.NewRun("https://example.com")
	run.State = model.StateFailed
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("Expected run %s after reopen, got %+v", run.ID, runs)
	}
}

func TestStore_RecordRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(context.Background(), &model.Run{}); err == nil {
		t.Error("Expected error for a run without id")
	}
}
