package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per batch invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    input_dir TEXT NOT NULL,
    output_dir TEXT,
    file_count INTEGER NOT NULL,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0,
    degraded_count INTEGER DEFAULT 0,
    include_signature BOOLEAN DEFAULT 1,
    full_thread BOOLEAN DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Run results: per-file outcome within a run
CREATE TABLE IF NOT EXISTS run_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    status TEXT NOT NULL,            -- success, degraded, failed
    format TEXT NOT NULL,            -- o365, outlook_desktop, gmail, apple_mail, yahoo, ...
    error_kind TEXT,
    error_message TEXT,
    ratio REAL DEFAULT 0,
    has_reply BOOLEAN DEFAULT 0,
    signature_found BOOLEAN DEFAULT 0,
    message_count INTEGER DEFAULT 0,
    input_bytes INTEGER DEFAULT 0,
    output_path TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, file_path)
);

CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
CREATE INDEX IF NOT EXISTS idx_run_results_format ON run_results(format);
CREATE INDEX IF NOT EXISTS idx_run_results_status ON run_results(status);
`
