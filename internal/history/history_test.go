package history

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("applied migrations = %d, want 1", count)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)

	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	actions := []ActionRecord{
		{Action: "install git", OK: true, Detail: "installed"},
		{Action: "install broken", OK: false, Detail: "simulated failure"},
		{Action: "install jq", OK: true, Detail: "installed"},
	}

	id, err := s.RecordRun("macapps", started, actions)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	runs, err := s.RecentRuns("macapps", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.Tool != "macapps" || r.Total != 3 || r.Succeeded != 2 {
		t.Errorf("run = %+v, want tool=macapps total=3 succeeded=2", r)
	}
	if !r.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", r.StartedAt, started)
	}
}

func TestRunActionsOrdered(t *testing.T) {
	s := openTestStore(t)

	actions := []ActionRecord{
		{Action: "first", OK: true},
		{Action: "second", OK: false, Detail: "boom"},
		{Action: "third", OK: true},
	}
	id, err := s.RecordRun("macprefs", time.Now(), actions)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := s.RunActions(id)
	if err != nil {
		t.Fatalf("RunActions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d actions, want 3", len(got))
	}
	for i, want := range actions {
		if got[i].Action != want.Action || got[i].OK != want.OK || got[i].Detail != want.Detail {
			t.Errorf("action %d = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestRecentRunsFiltersByTool(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.RecordRun("macapps", time.Now(), []ActionRecord{{Action: "a", OK: true}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun("macprefs", time.Now(), []ActionRecord{{Action: "b", OK: true}}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns("macprefs", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Tool != "macprefs" {
		t.Errorf("runs = %+v, want only macprefs", runs)
	}
}

func TestRecentRunsLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.RecordRun("macapps", base.Add(time.Duration(i)*time.Hour), nil); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.RecentRuns("macapps", 3)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	// Newest first.
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs not newest-first: %v then %v", runs[i-1].StartedAt, runs[i].StartedAt)
		}
	}
}
