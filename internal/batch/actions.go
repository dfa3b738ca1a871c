package batch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dtnitsch/email-reply-parser/internal/common"
	"github.com/dtnitsch/email-reply-parser/pkg/caching"
	"github.com/dtnitsch/email-reply-parser/pkg/db"
	"github.com/dtnitsch/email-reply-parser/pkg/manifest"
	"github.com/dtnitsch/email-reply-parser/pkg/storage"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// BatchAction extracts every input file under a directory, writes one result
// file per input plus a summary manifest, and optionally records the run.
func BatchAction(c *cli.Context) error {
	if c.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input directory provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  mailparse batch ./mails                     # Extract every .html/.eml/.txt file")
		fmt.Fprintln(os.Stderr, "  mailparse batch ./mails --record            # Also record the run in the database")
		return cli.Exit("", 1)
	}
	inputDir := c.Args().First()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := common.NewLogger(c, cfg)

	p, err := common.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	s := &storage.Storage{}
	files, err := s.ListInputs(inputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No input files found in %s\n", inputDir)
		return nil
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	format := strings.ToLower(c.String("format"))
	r := &runner{
		logger:    logger,
		pipeline:  p,
		storage:   s,
		opts:      cfg.ExtractOptions(),
		inputDir:  inputDir,
		outputDir: cfg.OutputDir,
		format:    format,
	}
	if cfg.CacheDir != "" {
		cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			return err
		}
		r.cache = cache
	}
	results, stats := r.run(context.Background(), files, cfg.WorkerCount)

	manifestPath, err := manifest.GenerateSummary(runID, inputDir, cfg.OutputDir, results, stats, s)
	if err != nil {
		logger.Error("Error generating summary manifest", "error", err)
	}

	if c.Bool("record") {
		if err := record(cfg.DBPath, runID, inputDir, cfg.OutputDir, r, results); err != nil {
			logger.Error("Failed to record run", "error", err)
		}
	}

	m := manifest.Build(runID, inputDir, results, stats)
	var totalBytes int64
	for _, res := range results {
		totalBytes += res.InputBytes
	}
	fmt.Printf("Run %s: %d/%d files extracted (%d degraded, %d failed), %s read\n",
		runID, m.Successful, m.TotalFiles, m.Degraded, m.Failed, humanize.Bytes(uint64(totalBytes)))
	fmt.Printf("Formats: %s\n", strings.Join(m.TopFormats, ", "))
	if manifestPath != "" {
		fmt.Printf("Summary: %s\n", manifestPath)
	}

	if m.Failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// record stores the run and its per-file results in the run database.
func record(dbPath, runID, inputDir, outputDir string, r *runner, results []manifest.BatchResult) error {
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	id, err := database.CreateRun(db.Run{
		RunUUID:          runID,
		InputDir:         inputDir,
		OutputDir:        outputDir,
		FileCount:        len(results),
		IncludeSignature: r.opts.IncludeSignature,
		FullThread:       r.opts.FullThread,
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		if err := database.InsertRunResult(id, runResult(res)); err != nil {
			return err
		}
	}
	return database.UpdateRunStats(id)
}

func runResult(res manifest.BatchResult) db.RunResult {
	return db.RunResult{
		FilePath:       res.File,
		Status:         res.Status(),
		Format:         res.Response.FormatDetected.String(),
		ErrorKind:      res.ErrorKind(),
		ErrorMessage:   res.ErrorMessage(),
		Ratio:          res.Response.Ratio,
		HasReply:       res.Response.Metadata.HasReply,
		SignatureFound: res.Response.SignatureText != "",
		MessageCount:   res.Response.Metadata.Thread.MessageCount,
		InputBytes:     res.InputBytes,
		OutputPath:     res.ResultPath,
	}
}
