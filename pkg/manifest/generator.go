package manifest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/mapreduce"
	"github.com/dtnitsch/email-reply-parser/pkg/storage"
	"gopkg.in/yaml.v3"
)

// BatchResult is the outcome of running the pipeline over one input file.
type BatchResult struct {
	File       string
	ResultPath string
	Response   models.Response
	// Err is a failure outside the pipeline, such as an unreadable file.
	Err        error
	InputBytes int64
}

// Status classifies a result as success, degraded or failed.
func (r BatchResult) Status() string {
	switch {
	case r.Err != nil || !r.Response.Success:
		return "failed"
	case r.Response.Degraded != "":
		return "degraded"
	default:
		return "success"
	}
}

// ErrorKind and ErrorMessage describe the failure or degradation, if any.
func (r BatchResult) ErrorKind() string {
	if r.Err != nil {
		return "io"
	}
	if r.Response.ErrorKind != "" {
		return string(r.Response.ErrorKind)
	}
	return string(r.Response.Degraded)
}

func (r BatchResult) ErrorMessage() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Response.Error
}

// Build assembles the manifest from per-file results and the reduced format stats.
func Build(runID, inputDir string, results []BatchResult, stats map[models.DetectedFormat]mapreduce.FormatStats) SummaryManifest {
	m := SummaryManifest{
		GeneratedAt: time.Now().Format(time.RFC3339),
		RunID:       runID,
		InputDir:    inputDir,
		TotalFiles:  len(results),
		TopFormats:  mapreduce.TopFormats(stats, 5),
		Formats:     make(map[string]FormatEntry, len(stats)),
	}

	for format, s := range stats {
		m.Formats[string(format)] = FormatEntry{
			Total:      s.Total,
			Failed:     s.Failed,
			WithReply:  s.WithReply,
			Signatures: s.Signatures,
			Threads:    s.Threads,
			MeanRatio:  s.MeanRatio(),
		}
	}

	for _, r := range results {
		summary := FileSummary{
			File:         r.File,
			ResultPath:   r.ResultPath,
			Status:       r.Status(),
			Format:       r.Response.FormatDetected.String(),
			ErrorKind:    r.ErrorKind(),
			ErrorMessage: r.ErrorMessage(),
			Ratio:        r.Response.Ratio,
			Messages:     r.Response.Metadata.Thread.MessageCount,
			SizeBytes:    r.InputBytes,
		}
		switch summary.Status {
		case "failed":
			m.Failed++
		case "degraded":
			m.Degraded++
			m.Successful++
		default:
			m.Successful++
		}
		m.Results = append(m.Results, summary)
	}

	return m
}

// GenerateSummary builds the manifest and saves it as summary-<date>.yaml in
// outputDir. Returns the path to the generated manifest file.
func GenerateSummary(runID, inputDir, outputDir string, results []BatchResult, stats map[models.DetectedFormat]mapreduce.FormatStats, s *storage.Storage) (string, error) {
	m := Build(runID, inputDir, results, stats)

	manifestPath := filepath.Join(outputDir, fmt.Sprintf("summary-%s.yaml", time.Now().Format("2006-01-02")))
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, data); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
