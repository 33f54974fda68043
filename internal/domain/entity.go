// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"time"
)

// CompressionKind identifies an archive container/codec combination.
type CompressionKind string

const (
	KindZip   CompressionKind = "Zip"
	KindTarGz CompressionKind = "TarGz"
	KindTarBr CompressionKind = "TarBr"
	KindGz    CompressionKind = "Gz"
	KindBr    CompressionKind = "Br"
	KindGzip  CompressionKind = "Gzip"
	KindBzip2 CompressionKind = "Bzip2"
)

// SupportedKinds returns all compression kinds, in the order the UI lists them.
func SupportedKinds() []CompressionKind {
	return []CompressionKind{KindZip, KindTarGz, KindTarBr, KindGz, KindBr, KindGzip, KindBzip2}
}

// ParseKind maps a kind tag string to its CompressionKind.
// This is the single place the tag set is validated; both the compress and
// validate commands go through it.
func ParseKind(s string) (CompressionKind, error) {
	switch CompressionKind(s) {
	case KindZip, KindTarGz, KindTarBr, KindGz, KindBr, KindGzip, KindBzip2:
		return CompressionKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// SupportsMultipleFiles reports whether the kind can hold more than one
// source. Single-stream codecs (gzip, brotli, bzip2) wrap exactly one file;
// container formats (zip, tar) take any number.
func (k CompressionKind) SupportsMultipleFiles() bool {
	switch k {
	case KindZip, KindTarGz, KindTarBr:
		return true
	default:
		return false
	}
}

// Extension returns the conventional file extension for archives of this kind.
func (k CompressionKind) Extension() string {
	switch k {
	case KindZip:
		return ".zip"
	case KindTarGz:
		return ".tar.gz"
	case KindTarBr:
		return ".tar.br"
	case KindGz, KindGzip:
		return ".gz"
	case KindBr:
		return ".br"
	case KindBzip2:
		return ".bz2"
	default:
		return ""
	}
}

// LaunchIntent distinguishes what a process launch wants done with its items.
type LaunchIntent string

const (
	IntentCompress   LaunchIntent = "compression"
	IntentDecompress LaunchIntent = "decompression"
)

// LaunchRequest is one OS-level process invocation: the raw argument list the
// host runtime handed over, plus any items already known at startup.
// Owned by the launch handler for the duration of that launch; never shared.
type LaunchRequest struct {
	BaselineItems []string
	Argv          []string
	Intent        LaunchIntent
}

// Operation tags a progress update with the kind of batch running.
type Operation string

const (
	OpCompressing Operation = "compressing"
	OpExtracting  Operation = "extracting"
)

// ProgressUpdate is the snapshot emitted to the UI during a batch.
// Progress is a percentage in [0,100]; CurrentFileIndex is 1-based.
type ProgressUpdate struct {
	Progress         float64   `json:"progress"`
	CurrentFile      string    `json:"current_file"`
	TotalFiles       int       `json:"total_files"`
	CurrentFileIndex int       `json:"current_file_index"`
	Operation        Operation `json:"operation"`
}

// JobStatus is the terminal state of a recorded archive job.
type JobStatus string

const (
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// JobRecord captures one completed compress or decompress batch for history.
type JobRecord struct {
	ID          string
	Operation   Operation
	Kind        CompressionKind // empty for decompression
	SourceCount int
	Destination string
	Status      JobStatus
	Message     string
	StartedAt   time.Time
	DurationMs  int64
}
