package domain

import "context"

// Event names delivered to the UI layer.
const (
	EventFilesSelected       = "files-selected"
	EventArchivesSelected    = "archives-selected"
	EventSetMode             = "set-mode"
	EventCompressionProgress = "compression-progress"
	EventEnableOK            = "enable-ok"
)

// Emitter delivers a named event to the UI layer.
// Implementation: NDJSON stream to the webview host; tests use in-memory fakes.
type Emitter interface {
	// Emit sends one event. A non-nil error means the UI never received it.
	Emit(event string, payload any) error
}

// ProgressFunc receives codec-level progress: a percentage in [0,100] covering
// the collaborator's whole call, and the file currently being worked on.
type ProgressFunc func(percent float64, currentFile string)

// Codec is the external collaborator providing the byte-level archive
// operations. It owns format semantics and any cleanup of partial output.
type Codec interface {
	// Compress writes all sources into one archive at dest.
	Compress(ctx context.Context, sources []string, dest string, kind CompressionKind, progress ProgressFunc) error

	// Decompress extracts one archive into destDir, creating it.
	Decompress(ctx context.Context, source, destDir string, progress ProgressFunc) error
}

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// CountByName returns how many running processes match name (case-insensitive).
	CountByName(name string) (int, error)

	// KillByName terminates every process matching name (case-insensitive).
	// Returns the number of processes killed.
	KillByName(name string) (int, error)

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// FolderOpener reveals a path in the OS file manager.
type FolderOpener interface {
	// OpenContaining opens the file manager at the path's parent, selecting
	// the path where the platform supports it.
	OpenContaining(path string) error
}

// HistoryStore persists completed archive jobs.
type HistoryStore interface {
	// Add records one finished job.
	Add(ctx context.Context, rec JobRecord) error

	// List returns the most recent jobs, newest first.
	List(ctx context.Context, limit int) ([]JobRecord, error)

	// Close releases the underlying database.
	Close() error
}
