package db

import (
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for tests
	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// Every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun(Run{
		RunUUID:          "run-1",
		InputDir:         "fixtures",
		OutputDir:        "out",
		FileCount:        3,
		IncludeSignature: true,
	})
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Fatal("CreateRun() returned 0 run ID")
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.RunUUID != "run-1" {
		t.Errorf("run.RunUUID = %q, want run-1", run.RunUUID)
	}
	if run.FileCount != 3 {
		t.Errorf("run.FileCount = %d, want 3", run.FileCount)
	}
	if run.OutputDir != "out" {
		t.Errorf("run.OutputDir = %q, want out", run.OutputDir)
	}
	if !run.IncludeSignature || run.FullThread {
		t.Errorf("run options = (%v, %v), want (true, false)", run.IncludeSignature, run.FullThread)
	}
}

func TestGetRunByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.GetRunByID(42); err == nil {
		t.Error("GetRunByID() expected error for missing run")
	}
}

func TestRunResultsAndStats(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun(Run{RunUUID: "run-2", InputDir: "in", FileCount: 3})
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	results := []RunResult{
		{FilePath: "a.html", Status: StatusSuccess, Format: "gmail", Ratio: 0.2, HasReply: true, MessageCount: 2, InputBytes: 1200},
		{FilePath: "b.html", Status: StatusSuccess, Format: "gmail", Ratio: 0.4, HasReply: true, SignatureFound: true, MessageCount: 2},
		{FilePath: "c.txt", Status: StatusDegraded, Format: "unknown", ErrorKind: "no_html_body", Ratio: 1},
		{FilePath: "d.html", Status: StatusFailed, Format: "o365", ErrorKind: "extraction_engine", ErrorMessage: "boom"},
	}
	for _, r := range results {
		if err := db.InsertRunResult(runID, r); err != nil {
			t.Fatalf("InsertRunResult(%s) error = %v", r.FilePath, err)
		}
	}
	// Re-recording a file replaces its row
	if err := db.InsertRunResult(runID, RunResult{FilePath: "d.html", Status: StatusFailed, Format: "o365", ErrorKind: "extraction_engine", ErrorMessage: "timeout"}); err != nil {
		t.Fatalf("InsertRunResult() replace error = %v", err)
	}

	if err := db.UpdateRunStats(runID); err != nil {
		t.Fatalf("UpdateRunStats() error = %v", err)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.SuccessCount != 2 || run.DegradedCount != 1 || run.FailedCount != 1 {
		t.Errorf("counts = (%d, %d, %d), want (2, 1, 1)", run.SuccessCount, run.DegradedCount, run.FailedCount)
	}

	all, err := db.GetRunResults(runID, ResultFilter{})
	if err != nil {
		t.Fatalf("GetRunResults() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("GetRunResults() returned %d results, want 4", len(all))
	}
	if all[0].FilePath != "a.html" || all[0].InputBytes != 1200 {
		t.Errorf("first result = %+v", all[0])
	}
	if all[3].ErrorMessage != "timeout" {
		t.Errorf("replaced result message = %q, want timeout", all[3].ErrorMessage)
	}

	gmail, err := db.GetRunResults(runID, ResultFilter{Format: "gmail"})
	if err != nil {
		t.Fatalf("GetRunResults(gmail) error = %v", err)
	}
	if len(gmail) != 2 {
		t.Errorf("gmail results = %d, want 2", len(gmail))
	}
	if !gmail[1].SignatureFound {
		t.Error("expected b.html to record a signature")
	}

	degraded, err := db.GetRunResults(runID, ResultFilter{Status: StatusDegraded})
	if err != nil {
		t.Fatalf("GetRunResults(degraded) error = %v", err)
	}
	if len(degraded) != 1 || degraded[0].ErrorKind != "no_html_body" {
		t.Errorf("degraded results = %+v", degraded)
	}

	counts, err := db.FormatCounts(runID)
	if err != nil {
		t.Fatalf("FormatCounts() error = %v", err)
	}
	want := map[string]int{"gmail": 2, "unknown": 1, "o365": 1}
	for format, n := range want {
		if counts[format] != n {
			t.Errorf("FormatCounts()[%s] = %d, want %d", format, counts[format], n)
		}
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for _, id := range []string{"r1", "r2", "r3"} {
		if _, err := db.CreateRun(Run{RunUUID: id, InputDir: "in", FileCount: 1}); err != nil {
			t.Fatalf("CreateRun(%s) error = %v", id, err)
		}
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(runs))
	}
	if runs[0].RunUUID != "r3" {
		t.Errorf("most recent run = %q, want r3", runs[0].RunUUID)
	}

	limited, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("ListRuns(2) returned %d runs, want 2", len(limited))
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := db.CreateRun(Run{RunUUID: "x", InputDir: "in"}); err != nil {
		t.Errorf("CreateRun() on fresh file error = %v", err)
	}
	db.Close()

	// Reopening finds the existing schema
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("ListRuns() after reopen = %d runs, want 1", len(runs))
	}
}
