// Package store persists run history so reports can be compared across runs.
package store

// DefaultDBPath is the default relative path for the SQLite DB
// (per-project). Open() creates the parent dir (e.g. .texcheck).
const DefaultDBPath = ".texcheck/texcheck.db"

// RunRecord is one completed harness run.
type RunRecord struct {
	ID         int64
	StartedAt  string // RFC3339 UTC
	Outcome    string // success, degraded, full
	Compiler   string // compiler implementation name
	Degraded   bool
	Passed     int
	Failed     int
	Conflicts  int
	ReportPath string
}

// AttemptRecord is one compile attempt within a run.
type AttemptRecord struct {
	ID         int64
	RunID      int64
	Target     string // document, module name, or "a+b" pair label
	Profile    string // basic, full, isolation, integration
	ExitCode   int
	DurationMs int64
	Passed     bool
	Category   string // classification category, empty for passes
	Excerpt    string
	Conflict   bool
}

// Store is the persistence facade for run history. CLI and harness use only
// this interface; implementation is SQLite or in-memory.
type Store interface {
	SaveRun(run *RunRecord) (runID int64, err error)
	SaveAttempt(att *AttemptRecord) (attemptID int64, err error)
	ListRuns() ([]*RunRecord, error)
	LastRun() (*RunRecord, error)
	ListAttemptsByRun(runID int64) ([]*AttemptRecord, error)
	Close() error
}
