// Package mapreduce aggregates per-message pipeline results into per-format statistics.
package mapreduce

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/email-reply-parser/models"
)

// FormatStats accumulates outcomes for one detected format.
type FormatStats struct {
	Total      int     `json:"total" yaml:"total"`
	Success    int     `json:"success" yaml:"success"`
	Degraded   int     `json:"degraded" yaml:"degraded"`
	Failed     int     `json:"failed" yaml:"failed"`
	WithReply  int     `json:"with_reply" yaml:"with_reply"`
	Signatures int     `json:"signatures" yaml:"signatures"`
	Threads    int     `json:"threads" yaml:"threads"`
	RatioSum   float64 `json:"-" yaml:"-"`
}

// MeanRatio is the average reply ratio over successful results.
func (s FormatStats) MeanRatio() float64 {
	if s.Success == 0 {
		return 0
	}
	return s.RatioSum / float64(s.Success)
}

// Map turns a single response into a one-entry stats map keyed by format.
func Map(resp models.Response) map[models.DetectedFormat]FormatStats {
	format := resp.FormatDetected
	if format == "" {
		format = models.FormatUnknown
	}

	stats := FormatStats{Total: 1}
	switch {
	case !resp.Success:
		stats.Failed = 1
		return map[models.DetectedFormat]FormatStats{format: stats}
	case resp.Degraded != "":
		stats.Degraded = 1
	}

	stats.Success = 1
	stats.RatioSum = resp.Ratio
	if resp.Metadata.HasReply {
		stats.WithReply = 1
	}
	if resp.SignatureText != "" {
		stats.Signatures = 1
	}
	if resp.Metadata.Thread.IsThread {
		stats.Threads = 1
	}
	return map[models.DetectedFormat]FormatStats{format: stats}
}

// Reduce aggregates a slice of stats maps into a single map.
func Reduce(intermediate []map[models.DetectedFormat]FormatStats) map[models.DetectedFormat]FormatStats {
	finalResults := make(map[models.DetectedFormat]FormatStats)

	for _, counts := range intermediate {
		for format, s := range counts {
			acc := finalResults[format]
			acc.Total += s.Total
			acc.Success += s.Success
			acc.Degraded += s.Degraded
			acc.Failed += s.Failed
			acc.WithReply += s.WithReply
			acc.Signatures += s.Signatures
			acc.Threads += s.Threads
			acc.RatioSum += s.RatioSum
			finalResults[format] = acc
		}
	}

	return finalResults
}

// TopFormats returns the formats with the most messages as "format:count"
// strings, most frequent first. Ties are ordered by name.
func TopFormats(stats map[models.DetectedFormat]FormatStats, n int) []string {
	type kv struct {
		Key   models.DetectedFormat
		Value int
	}

	ss := make([]kv, 0, len(stats))
	for k, v := range stats {
		ss = append(ss, kv{k, v.Total})
	}

	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	limit := n
	if n <= 0 || len(ss) < n {
		limit = len(ss)
	}

	formats := make([]string, limit)
	for i := 0; i < limit; i++ {
		formats[i] = fmt.Sprintf("%s:%d", ss[i].Key, ss[i].Value)
	}
	return formats
}
