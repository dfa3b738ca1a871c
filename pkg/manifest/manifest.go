package manifest

// SummaryManifest is the overview written at the end of a batch run. It lets a
// reader triage a run without opening every result file.
type SummaryManifest struct {
	GeneratedAt string                 `yaml:"generated_at"`
	RunID       string                 `yaml:"run_id"`
	InputDir    string                 `yaml:"input_dir"`
	TotalFiles  int                    `yaml:"total_files"`
	Successful  int                    `yaml:"successful"`
	Degraded    int                    `yaml:"degraded"`
	Failed      int                    `yaml:"failed"`
	TopFormats  []string               `yaml:"top_formats"`
	Formats     map[string]FormatEntry `yaml:"formats"`
	Results     []FileSummary          `yaml:"results"`
}

// FormatEntry is the aggregate for one detected format.
type FormatEntry struct {
	Total      int     `yaml:"total"`
	Failed     int     `yaml:"failed"`
	WithReply  int     `yaml:"with_reply"`
	Signatures int     `yaml:"signatures"`
	Threads    int     `yaml:"threads"`
	MeanRatio  float64 `yaml:"mean_ratio"`
}

// FileSummary is the per-file line of the manifest.
type FileSummary struct {
	File         string  `yaml:"file"`
	ResultPath   string  `yaml:"result_path,omitempty"`
	Status       string  `yaml:"status"` // success, degraded or failed
	Format       string  `yaml:"format"`
	ErrorKind    string  `yaml:"error_kind,omitempty"`
	ErrorMessage string  `yaml:"error_message,omitempty"`
	Ratio        float64 `yaml:"ratio"`
	Messages     int     `yaml:"messages,omitempty"`
	SizeBytes    int64   `yaml:"size_bytes,omitempty"`
}
