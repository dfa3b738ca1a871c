package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Run represents one batch invocation
type Run struct {
	RunID            int64
	RunUUID          string
	CreatedAt        time.Time
	InputDir         string
	OutputDir        string
	FileCount        int
	SuccessCount     int
	FailedCount      int
	DegradedCount    int
	IncludeSignature bool
	FullThread       bool
}

// RunResult is the recorded outcome for one file of a run
type RunResult struct {
	FilePath       string
	Status         string
	Format         string
	ErrorKind      string
	ErrorMessage   string
	Ratio          float64
	HasReply       bool
	SignatureFound bool
	MessageCount   int
	InputBytes     int64
	OutputPath     string
}

// Result statuses
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// CreateRun inserts a run record and returns its id
func (db *DB) CreateRun(run Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (run_uuid, input_dir, output_dir, file_count, include_signature, full_thread)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunUUID, run.InputDir, NewNullString(run.OutputDir), run.FileCount, run.IncludeSignature, run.FullThread)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// InsertRunResult records a result for a file in a run. Re-recording the
// same file replaces the earlier row.
func (db *DB) InsertRunResult(runID int64, r RunResult) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO run_results (run_id, file_path, status, format, error_kind, error_message,
		       ratio, has_reply, signature_found, message_count, input_bytes, output_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, r.FilePath, r.Status, r.Format, NewNullString(r.ErrorKind), NewNullString(r.ErrorMessage),
		r.Ratio, r.HasReply, r.SignatureFound, r.MessageCount, r.InputBytes, NewNullString(r.OutputPath))
	if err != nil {
		return fmt.Errorf("failed to insert run result: %w", err)
	}
	return nil
}

// UpdateRunStats recomputes the status counters of a run from its results
func (db *DB) UpdateRunStats(runID int64) error {
	_, err := db.Exec(`
		UPDATE runs SET
			success_count = (SELECT COUNT(*) FROM run_results WHERE run_id = ? AND status = 'success'),
			degraded_count = (SELECT COUNT(*) FROM run_results WHERE run_id = ? AND status = 'degraded'),
			failed_count = (SELECT COUNT(*) FROM run_results WHERE run_id = ? AND status = 'failed')
		WHERE run_id = ?
	`, runID, runID, runID, runID)
	if err != nil {
		return fmt.Errorf("failed to update run stats: %w", err)
	}
	return nil
}

const runColumns = `run_id, run_uuid, created_at, input_dir, output_dir, file_count,
	success_count, failed_count, degraded_count, include_signature, full_thread`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	var outputDir sql.NullString
	err := row.Scan(&r.RunID, &r.RunUUID, &r.CreatedAt, &r.InputDir, &outputDir, &r.FileCount,
		&r.SuccessCount, &r.FailedCount, &r.DegradedCount, &r.IncludeSignature, &r.FullThread)
	r.OutputDir = outputDir.String
	return r, err
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ResultFilter narrows GetRunResults. Empty fields match everything.
type ResultFilter struct {
	Format string
	Status string
}

// GetRunResults retrieves the results of a run in insertion order
func (db *DB) GetRunResults(runID int64, filter ResultFilter) ([]RunResult, error) {
	query := `
		SELECT file_path, status, format, error_kind, error_message, ratio, has_reply,
		       signature_found, message_count, input_bytes, output_path
		FROM run_results
	`
	conditions := []string{"run_id = ?"}
	args := []interface{}{runID}
	if filter.Format != "" {
		conditions = append(conditions, "format = ?")
		args = append(args, filter.Format)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	query += " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY result_id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get run results: %w", err)
	}
	defer rows.Close()

	var results []RunResult
	for rows.Next() {
		var r RunResult
		var errorKind, errorMessage, outputPath sql.NullString
		if err := rows.Scan(&r.FilePath, &r.Status, &r.Format, &errorKind, &errorMessage, &r.Ratio,
			&r.HasReply, &r.SignatureFound, &r.MessageCount, &r.InputBytes, &outputPath); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.ErrorKind = errorKind.String
		r.ErrorMessage = errorMessage.String
		r.OutputPath = outputPath.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// FormatCounts returns the number of results per detected format for a run
func (db *DB) FormatCounts(runID int64) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT format, COUNT(*) FROM run_results WHERE run_id = ? GROUP BY format
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count formats: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var format string
		var n int
		if err := rows.Scan(&format, &n); err != nil {
			return nil, fmt.Errorf("failed to scan format count: %w", err)
		}
		counts[format] = n
	}
	return counts, rows.Err()
}

// NewNullString converts empty strings to NULL
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
