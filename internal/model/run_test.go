package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRun_GetElapsedString(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{0, "—"},
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
	}

	for _, test := range tests {
		run := &Run{StartedAt: start, FinishedAt: start.Add(test.elapsed)}
		result := run.GetElapsedString()
		if result != test.expected {
			t.Errorf("GetElapsedString() with elapsed=%v = %s, expected %s", test.elapsed, result, test.expected)
		}
	}
}

func TestRun_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		output   string
		url      string
		expected string
	}{
		{"Video Title", "", "https://youtube.com/watch?v=123", "Video Title"},
		{"", "/music/Some Song.mp3", "https://youtube.com/watch?v=123", "Some Song"},
		{"", `C:\music\Other.mp3`, "https://youtube.com/watch?v=123", "Other"},
		{"", "", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
		{"https://youtube.com/watch?v=456", "", "https://youtube.com/watch?v=456", "https://youtube.com/watch?v=456"},
	}

	for _, test := range tests {
		run := &Run{Title: test.title, OutputPath: test.output, URL: test.url}
		result := run.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', output='%s' = '%s', expected '%s'",
				test.title, test.output, result, test.expected)
		}
	}
}

func TestNewRun(t *testing.T) {
	run := NewRun("https://youtube.com/watch?v=test")

	if run.State != StateIdle {
		t.Errorf("Expected state to be Idle, got %s", run.State)
	}
	if run.StartedAt.IsZero() {
		t.Error("Expected StartedAt to be set")
	}
	if !strings.HasPrefix(run.ID, RunIDPrefix) {
		t.Errorf("Expected ID to start with %q, got: %s", RunIDPrefix, run.ID)
	}
	if len(run.ID) != len(RunIDPrefix)+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len(RunIDPrefix)+36, len(run.ID), run.ID)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	id1 := NewRunID()
	id2 := NewRunID()

	if id1 == id2 {
		t.Error("Expected different run IDs")
	}
}

func TestOutputArtifact_Path(t *testing.T) {
	out := OutputArtifact{FolderPath: "/music", FileName: "Test.mp3"}
	expected := filepath.Join("/music", "Test.mp3")

	if out.Path() != expected {
		t.Errorf("Expected path %s, got %s", expected, out.Path())
	}
}
