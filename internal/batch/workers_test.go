package batch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/email-reply-parser/internal/common"
	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/caching"
	"github.com/dtnitsch/email-reply-parser/pkg/db"
	"github.com/dtnitsch/email-reply-parser/pkg/pipeline"
	"github.com/dtnitsch/email-reply-parser/pkg/storage"
)

const gmailReply = `<div dir="ltr">Sounds good, see you then.</div><br>` +
	`<div class="gmail_quote"><div class="gmail_attr">On Mon, Feb 9, 2026 at 7:48 AM Jane &lt;jane@example.com&gt; wrote:<br></div>` +
	`<blockquote class="gmail_quote">Shall we meet on Tuesday at ten to go through the quarterly numbers?</blockquote></div>`

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"gmail.html": gmailReply,
		"plain.txt":  "Yes.\n\nOn Mon, Feb 9, 2026 at 7:48 AM Jane <jane@example.com> wrote:\n> Tuesday?\n",
		"empty.html": "",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newRunner(inputDir, outputDir string) *runner {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return &runner{
		logger:    logger,
		pipeline:  pipeline.New(pipeline.WithLogger(logger)),
		storage:   &storage.Storage{},
		opts:      models.DefaultExtractOptions(),
		inputDir:  inputDir,
		outputDir: outputDir,
		format:    "yaml",
	}
}

func TestRunnerProcessesEveryFile(t *testing.T) {
	inputDir := writeInputs(t)
	outputDir := t.TempDir()
	r := newRunner(inputDir, outputDir)

	files, err := r.storage.ListInputs(inputDir)
	if err != nil {
		t.Fatalf("ListInputs() error = %v", err)
	}

	results, stats := r.run(context.Background(), files, 3)
	if len(results) != 3 {
		t.Fatalf("run() returned %d results, want 3", len(results))
	}

	byName := make(map[string]int)
	for i, res := range results {
		byName[filepath.Base(res.File)] = i
		if res.Err != nil {
			t.Errorf("%s: unexpected error %v", res.File, res.Err)
		}
		if !r.storage.HasFile(res.ResultPath) {
			t.Errorf("%s: result file %q not written", res.File, res.ResultPath)
		}
		if !strings.HasSuffix(res.ResultPath, ".yaml") {
			t.Errorf("%s: result path %q, want .yaml", res.File, res.ResultPath)
		}
	}

	gmail := results[byName["gmail.html"]]
	if gmail.Status() != "success" || gmail.Response.FormatDetected != models.FormatGmail {
		t.Errorf("gmail.html = status %s format %s", gmail.Status(), gmail.Response.FormatDetected)
	}
	if !strings.Contains(gmail.Response.ReplyText, "Sounds good") {
		t.Errorf("gmail reply text = %q", gmail.Response.ReplyText)
	}

	plain := results[byName["plain.txt"]]
	if plain.Status() != "degraded" || plain.ErrorKind() != string(models.KindNoHTMLBody) {
		t.Errorf("plain.txt = status %s kind %s", plain.Status(), plain.ErrorKind())
	}

	empty := results[byName["empty.html"]]
	if empty.Status() != "degraded" || empty.ErrorKind() != string(models.KindEmptyInput) {
		t.Errorf("empty.html = status %s kind %s", empty.Status(), empty.ErrorKind())
	}

	if stats[models.FormatGmail].Total != 1 {
		t.Errorf("stats[gmail] = %+v", stats[models.FormatGmail])
	}
}

func TestRunnerReportsUnreadableFiles(t *testing.T) {
	r := newRunner(t.TempDir(), t.TempDir())

	results, _ := r.run(context.Background(), []string{filepath.Join(r.inputDir, "missing.html")}, 1)
	if len(results) != 1 {
		t.Fatalf("run() returned %d results, want 1", len(results))
	}
	if results[0].Status() != "failed" || results[0].ErrorKind() != "io" {
		t.Errorf("missing file = status %s kind %s", results[0].Status(), results[0].ErrorKind())
	}
}

func TestRecord(t *testing.T) {
	inputDir := writeInputs(t)
	r := newRunner(inputDir, t.TempDir())
	files, err := r.storage.ListInputs(inputDir)
	if err != nil {
		t.Fatal(err)
	}
	results, _ := r.run(context.Background(), files, 2)

	dbPath := filepath.Join(t.TempDir(), "runs.db")
	if err := record(dbPath, "run-test", inputDir, r.outputDir, r, results); err != nil {
		t.Fatalf("record() error = %v", err)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns() = (%v, %v), want one run", runs, err)
	}
	run := runs[0]
	if run.RunUUID != "run-test" || run.FileCount != 3 {
		t.Errorf("run = %+v", run)
	}
	if run.SuccessCount != 1 || run.DegradedCount != 2 || run.FailedCount != 0 {
		t.Errorf("counts = (%d, %d, %d), want (1, 2, 0)", run.SuccessCount, run.DegradedCount, run.FailedCount)
	}

	gmail, err := database.GetRunResults(run.RunID, db.ResultFilter{Format: "gmail"})
	if err != nil || len(gmail) != 1 {
		t.Fatalf("GetRunResults(gmail) = (%v, %v)", gmail, err)
	}
	if !gmail[0].HasReply || gmail[0].OutputPath == "" {
		t.Errorf("gmail result = %+v", gmail[0])
	}
}

func TestRunnerUsesCache(t *testing.T) {
	inputDir := writeInputs(t)
	r := newRunner(inputDir, t.TempDir())
	cache, err := caching.NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	r.cache = cache

	path := filepath.Join(inputDir, "gmail.html")
	first, _ := r.run(context.Background(), []string{path}, 1)

	email, _, err := common.LoadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := cache.Get(caching.Key(email, r.opts))
	if !ok {
		t.Fatal("result was not cached")
	}
	if cached.ReplyText != first[0].Response.ReplyText {
		t.Errorf("cached reply = %q, want %q", cached.ReplyText, first[0].Response.ReplyText)
	}

	// A second run is served from the cache even with a pipeline that cannot run
	r.pipeline = nil
	second, _ := r.run(context.Background(), []string{path}, 1)
	if second[0].Response.ReplyText != first[0].Response.ReplyText {
		t.Errorf("second run reply = %q", second[0].Response.ReplyText)
	}
}
