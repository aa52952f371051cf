package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/codescan-dev/codescan/internal/model"
)

// Workspace provides SQLite-based storage for projects, runs, and the
// inventory produced by pipeline steps.
//
// Design decision: We use a single database file shared by every project in
// the workspace rather than one file per project. This keeps run listings
// and cross-project queries simple and gives the worker one queue to poll.
type Workspace struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Workspace behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the workspace database at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Workspace, error) {
	dbPath := filepath.Join(dbDir, "codescan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY errors between the worker and the recorder.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ws := &Workspace{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ws.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ws, nil
}

// Close closes the database connection.
func (ws *Workspace) Close() error {
	return ws.db.Close()
}

// Path returns the location of the database file.
func (ws *Workspace) Path() string {
	return ws.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (ws *Workspace) createTables() error {
	schema := `
	-- Projects are the top-level analysis workspaces
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Runs track one pipeline execution attempt each
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		pipeline TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'not_started',
		exit_code INTEGER DEFAULT 0,
		error TEXT DEFAULT '',
		executed_steps TEXT DEFAULT '[]',
		selected_groups TEXT DEFAULT '[]',
		selected_steps TEXT DEFAULT '[]',
		profile INTEGER DEFAULT 0,
		log TEXT DEFAULT '',
		stop_requested INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		started_at DATETIME,
		ended_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);

	-- Per-step timings kept across runs for duration statistics
	CREATE TABLE IF NOT EXISTS run_steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		pipeline TEXT NOT NULL,
		step TEXT NOT NULL,
		succeeded INTEGER NOT NULL,
		elapsed_us INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_run_steps_pipeline ON run_steps(pipeline, step);

	-- Codebase resources collected by pipeline steps
	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		path TEXT NOT NULL,
		type TEXT NOT NULL,
		name TEXT DEFAULT '',
		extension TEXT DEFAULT '',
		size INTEGER DEFAULT 0,
		sha256 TEXT DEFAULT '',
		mime_type TEXT DEFAULT '',
		tag TEXT DEFAULT '',
		UNIQUE(project_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id);
	CREATE INDEX IF NOT EXISTS idx_resources_sha256 ON resources(sha256);

	-- Discovered packages form the software inventory
	CREATE TABLE IF NOT EXISTS packages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		type TEXT NOT NULL,
		namespace TEXT DEFAULT '',
		name TEXT NOT NULL,
		version TEXT DEFAULT '',
		manifest_path TEXT DEFAULT '',
		UNIQUE(project_id, type, namespace, name, version)
	);

	CREATE INDEX IF NOT EXISTS idx_packages_project ON packages(project_id);

	-- Declared dependencies, resolved or not
	CREATE TABLE IF NOT EXISTS dependencies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		package_id INTEGER DEFAULT 0,
		type TEXT NOT NULL,
		namespace TEXT DEFAULT '',
		name TEXT NOT NULL,
		version_constraint TEXT DEFAULT '',
		scope TEXT DEFAULT '',
		manifest_path TEXT DEFAULT '',
		UNIQUE(project_id, type, namespace, name, version_constraint, manifest_path)
	);

	CREATE INDEX IF NOT EXISTS idx_dependencies_project ON dependencies(project_id);

	-- Deployed-to-source relations produced by the mapping pipeline
	CREATE TABLE IF NOT EXISTS relations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		deployed_path TEXT NOT NULL,
		source_path TEXT NOT NULL,
		kind TEXT NOT NULL,
		confidence REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_relations_project ON relations(project_id);

	-- Vulnerability findings link packages to matched advisories
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		package_id INTEGER NOT NULL,
		package_purl TEXT NOT NULL,
		advisory_id TEXT NOT NULL,
		summary TEXT DEFAULT '',
		severity TEXT NOT NULL,
		UNIQUE(project_id, package_id, advisory_id)
	);

	CREATE INDEX IF NOT EXISTS idx_findings_project ON findings(project_id);
	`

	_, err := ws.db.ExecContext(context.Background(), schema)
	return err
}

// CreateProject inserts a new project row. The name must be unique across
// the workspace; ErrDuplicateProject is returned when it is taken.
func (ws *Workspace) CreateProject(ctx context.Context, p *model.Project) error {
	existing, err := ws.GetProjectByName(ctx, p.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateProject, p.Name)
	}

	query := `INSERT INTO projects (id, name, slug) VALUES (?, ?, ?)`
	if _, err := ws.db.ExecContext(ctx, query, p.ID, p.Name, p.Slug); err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID. Returns nil without error when the
// project does not exist.
func (ws *Workspace) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return ws.getProject(ctx, `SELECT id, name, slug, created_at FROM projects WHERE id = ?`, id)
}

// GetProjectByName retrieves a project by its unique name. Returns nil
// without error when the project does not exist.
func (ws *Workspace) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	return ws.getProject(ctx, `SELECT id, name, slug, created_at FROM projects WHERE name = ?`, name)
}

func (ws *Workspace) getProject(ctx context.Context, query string, arg any) (*model.Project, error) {
	var p model.Project
	var created string

	err := ws.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &p.Slug, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	p.CreatedAt = parseTimestamp(created)
	return &p, nil
}

// ListProjects returns every project ordered by name.
func (ws *Workspace) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := ws.db.QueryContext(ctx, `SELECT id, name, slug, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &created); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.CreatedAt = parseTimestamp(created)
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// CreateRun inserts a new run row in its initial status.
func (ws *Workspace) CreateRun(ctx context.Context, r *model.Run) error {
	executed, err := marshalStrings(r.ExecutedSteps)
	if err != nil {
		return err
	}
	groups, err := marshalStrings(r.SelectedGroups)
	if err != nil {
		return err
	}
	steps, err := marshalStrings(r.SelectedSteps)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO runs (id, project_id, pipeline, status, executed_steps, selected_groups, selected_steps, profile)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = ws.db.ExecContext(ctx, query,
		r.ID, r.ProjectID, r.Pipeline, r.Status.String(), executed, groups, steps, boolToInt(r.Profile))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil without error when the run
// does not exist.
func (ws *Workspace) GetRun(ctx context.Context, id string) (*model.Run, error) {
	query := runSelect + ` WHERE id = ?`

	rows, err := ws.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return run, rows.Err()
}

// ListRuns returns the runs of a project, most recent first.
func (ws *Workspace) ListRuns(ctx context.Context, projectID string) ([]model.Run, error) {
	query := runSelect + ` WHERE project_id = ? ORDER BY created_at DESC, id DESC`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// LatestRun returns a project's most recently created run, or nil when the
// project has none.
func (ws *Workspace) LatestRun(ctx context.Context, projectID string) (*model.Run, error) {
	query := runSelect + ` WHERE project_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`

	rows, err := ws.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return run, rows.Err()
}

// MarkRunStarted moves a run into the running status and stamps its start
// time.
func (ws *Workspace) MarkRunStarted(ctx context.Context, id string) error {
	query := `UPDATE runs SET status = 'running', started_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := ws.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark run started: %w", err)
	}
	return nil
}

// FinalizeRun records the terminal outcome of a run.
func (ws *Workspace) FinalizeRun(ctx context.Context, id string, status model.RunStatus, exitCode int, errMsg string, executedSteps []string) error {
	executed, err := marshalStrings(executedSteps)
	if err != nil {
		return err
	}

	query := `
	UPDATE runs
	SET status = ?, exit_code = ?, error = ?, executed_steps = ?, ended_at = CURRENT_TIMESTAMP
	WHERE id = ?
	`
	if _, err := ws.db.ExecContext(ctx, query, status.String(), exitCode, errMsg, executed, id); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	return nil
}

// AppendRunLog appends one line to a run's progress log.
func (ws *Workspace) AppendRunLog(ctx context.Context, id, line string) error {
	query := `UPDATE runs SET log = log || ? WHERE id = ?`
	if _, err := ws.db.ExecContext(ctx, query, line+"\n", id); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}

// RecordRunStep stores the timing of one executed step.
func (ws *Workspace) RecordRunStep(ctx context.Context, runID, pipeline, step string, succeeded bool, elapsed time.Duration) error {
	query := `
	INSERT INTO run_steps (run_id, pipeline, step, succeeded, elapsed_us)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := ws.db.ExecContext(ctx, query, runID, pipeline, step, boolToInt(succeeded), elapsed.Microseconds())
	if err != nil {
		return fmt.Errorf("failed to record run step: %w", err)
	}
	return nil
}

// StepTiming is one recorded step execution, used for duration statistics.
type StepTiming struct {
	RunID     string
	Pipeline  string
	Step      string
	Succeeded bool
	Elapsed   time.Duration
}

// StepTimings returns recorded step timings, optionally filtered by
// pipeline name. An empty pipeline returns timings for every pipeline.
func (ws *Workspace) StepTimings(ctx context.Context, pipeline string) ([]StepTiming, error) {
	query := `SELECT run_id, pipeline, step, succeeded, elapsed_us FROM run_steps`
	args := make([]any, 0, 1)
	if pipeline != "" {
		query += ` WHERE pipeline = ?`
		args = append(args, pipeline)
	}
	query += ` ORDER BY id`

	rows, err := ws.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query step timings: %w", err)
	}
	defer rows.Close()

	var timings []StepTiming
	for rows.Next() {
		var t StepTiming
		var succeeded int
		var elapsedUS int64
		if err := rows.Scan(&t.RunID, &t.Pipeline, &t.Step, &succeeded, &elapsedUS); err != nil {
			return nil, fmt.Errorf("failed to scan step timing: %w", err)
		}
		t.Succeeded = succeeded != 0
		t.Elapsed = time.Duration(elapsedUS) * time.Microsecond
		timings = append(timings, t)
	}

	return timings, rows.Err()
}

// RequestStop raises the cooperative stop flag on a run. The executing
// engine observes it at the next step boundary.
func (ws *Workspace) RequestStop(ctx context.Context, id string) error {
	query := `UPDATE runs SET stop_requested = 1 WHERE id = ?`
	if _, err := ws.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to request stop: %w", err)
	}
	return nil
}

// StopRequested reports whether a stop was requested for the run.
func (ws *Workspace) StopRequested(ctx context.Context, id string) (bool, error) {
	var flag int
	err := ws.db.QueryRowContext(ctx, `SELECT stop_requested FROM runs WHERE id = ?`, id).Scan(&flag)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check stop flag: %w", err)
	}
	return flag != 0, nil
}

// MarkQueuedRunStopped finalizes a run that was stopped before any worker
// claimed it. Returns false when the run was not in the queued status.
func (ws *Workspace) MarkQueuedRunStopped(ctx context.Context, id string, exitCode int) (bool, error) {
	query := `
	UPDATE runs
	SET status = 'stopped', exit_code = ?, ended_at = CURRENT_TIMESTAMP
	WHERE id = ? AND status = 'queued'
	`
	res, err := ws.db.ExecContext(ctx, query, exitCode, id)
	if err != nil {
		return false, fmt.Errorf("failed to stop queued run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to stop queued run: %w", err)
	}
	return n > 0, nil
}

// ClaimQueuedRun atomically moves the oldest claimable queued run into the
// running status and returns it. A run is claimable when its stop flag is
// down and no other run of the same project is executing, so a project
// never runs concurrently with itself. Returns nil when nothing is
// claimable.
func (ws *Workspace) ClaimQueuedRun(ctx context.Context) (*model.Run, error) {
	query := `
	UPDATE runs
	SET status = 'running', started_at = CURRENT_TIMESTAMP
	WHERE id = (
		SELECT id FROM runs
		WHERE status = 'queued' AND stop_requested = 0
		  AND project_id NOT IN (SELECT project_id FROM runs WHERE status = 'running')
		ORDER BY created_at, id LIMIT 1
	)
	RETURNING id
	`

	var id string
	err := ws.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim run: %w", err)
	}

	return ws.GetRun(ctx, id)
}

// runSelect is the shared column list for scanRun.
const runSelect = `
SELECT id, project_id, pipeline, status, exit_code, error, executed_steps,
       selected_groups, selected_steps, profile, log, stop_requested,
       created_at, started_at, ended_at
FROM runs`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var r model.Run
	var status, executed, groups, steps string
	var profile, stopRequested int
	var created string
	var started, ended sql.NullString

	err := row.Scan(
		&r.ID, &r.ProjectID, &r.Pipeline, &status, &r.ExitCode, &r.Error,
		&executed, &groups, &steps, &profile, &r.Log, &stopRequested,
		&created, &started, &ended,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	r.Status = model.ParseRunStatus(status)
	r.Profile = profile != 0
	r.StopRequested = stopRequested != 0
	r.CreatedAt = parseTimestamp(created)
	if started.Valid {
		r.StartedAt = parseTimestamp(started.String)
	}
	if ended.Valid {
		r.EndedAt = parseTimestamp(ended.String)
	}

	if r.ExecutedSteps, err = unmarshalStrings(executed); err != nil {
		return nil, err
	}
	if r.SelectedGroups, err = unmarshalStrings(groups); err != nil {
		return nil, err
	}
	if r.SelectedSteps, err = unmarshalStrings(steps); err != nil {
		return nil, err
	}

	return &r, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to serialize string list: %w", err)
	}
	return string(out), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to parse string list: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
