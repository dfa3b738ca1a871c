package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dtnitsch/email-reply-parser/internal/common"
	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/caching"
	"github.com/dtnitsch/email-reply-parser/pkg/manifest"
	"github.com/dtnitsch/email-reply-parser/pkg/mapreduce"
	"github.com/dtnitsch/email-reply-parser/pkg/pipeline"
	"github.com/dtnitsch/email-reply-parser/pkg/storage"
)

// Job is one input file to process.
type Job struct {
	Path string
}

// runner holds what every worker shares for one batch run.
type runner struct {
	logger    *slog.Logger
	pipeline  *pipeline.Pipeline
	storage   *storage.Storage
	cache     *caching.Cache // nil disables caching
	opts      models.ExtractOptions
	inputDir  string
	outputDir string
	format    string
}

// run fans files out to workers and collects the results in input order,
// along with the per-format statistics.
func (r *runner) run(ctx context.Context, files []string, workerCount int) ([]manifest.BatchResult, map[models.DetectedFormat]mapreduce.FormatStats) {
	if workerCount < 1 {
		workerCount = 1
	}

	r.logger.Info("Starting batch extraction", "file_count", len(files), "workers", workerCount)
	var wg sync.WaitGroup
	jobs := make(chan Job, len(files))
	results := make(chan manifest.BatchResult, len(files))

	for w := 1; w <= workerCount; w++ {
		wg.Add(1)
		go r.worker(ctx, w, &wg, jobs, results)
	}

	for _, path := range files {
		jobs <- Job{Path: path}
	}
	close(jobs)

	wg.Wait()
	close(results)
	r.logger.Info("All batch workers finished")

	allResults := make([]manifest.BatchResult, 0, len(files))
	for result := range results {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	intermediate := make([]map[models.DetectedFormat]mapreduce.FormatStats, 0, len(allResults))
	for _, result := range allResults {
		intermediate = append(intermediate, mapreduce.Map(result.Response))
	}

	return allResults, mapreduce.Reduce(intermediate)
}

func (r *runner) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results chan<- manifest.BatchResult) {
	defer wg.Done()
	for job := range jobs {
		r.logger.Debug("Worker started job", "worker_id", id, "file", job.Path)
		results <- r.process(ctx, id, job)
	}
}

func (r *runner) process(ctx context.Context, id int, job Job) manifest.BatchResult {
	result := manifest.BatchResult{File: job.Path}

	email, size, err := common.LoadInput(job.Path)
	result.InputBytes = size
	if err != nil {
		r.logger.Error("Error loading input", "worker_id", id, "file", job.Path, "error", err)
		result.Err = err
		return result
	}

	result.Response = r.extract(ctx, id, job.Path, email)
	if !result.Response.Success {
		r.logger.Warn("Extraction failed", "worker_id", id, "file", job.Path,
			"error_kind", result.Response.ErrorKind, "error", result.Response.Error)
	}

	ext := ".json"
	if r.format == "yaml" || r.format == "yml" {
		ext = ".yaml"
	}
	data, err := common.Marshal(result.Response, r.format)
	if err != nil {
		result.Err = fmt.Errorf("error marshalling result: %w", err)
		return result
	}

	outPath := storage.ResultPath(r.inputDir, r.outputDir, job.Path, ext)
	if err := r.storage.SaveFile(outPath, data); err != nil {
		r.logger.Error("Error saving result", "worker_id", id, "file", outPath, "error", err)
		result.Err = err
		return result
	}
	result.ResultPath = outPath

	r.logger.Debug("Worker finished job", "worker_id", id, "file", job.Path, "format", result.Response.FormatDetected)
	return result
}

// extract runs the pipeline, consulting the result cache first when one is configured.
func (r *runner) extract(ctx context.Context, id int, path string, email models.RawEmail) models.Response {
	if r.cache == nil {
		return r.pipeline.Process(ctx, email, r.opts)
	}

	key := caching.Key(email, r.opts)
	if resp, ok := r.cache.Get(key); ok {
		r.logger.Debug("Result found in cache", "worker_id", id, "file", path)
		return resp
	}

	resp := r.pipeline.Process(ctx, email, r.opts)
	if err := r.cache.Set(key, resp); err != nil {
		r.logger.Warn("Failed to cache result", "worker_id", id, "file", path, "error", err)
	}
	return resp
}
