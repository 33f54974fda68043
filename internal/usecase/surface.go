// Package usecase contains application business logic.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/archive"
	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/session"
)

// Surface is the set of request/response operations the UI invokes.
// One instance serves the whole session.
type Surface struct {
	runner         *archive.Runner
	counters       *session.Counters
	processManager domain.ProcessManager
	opener         domain.FolderOpener
	history        domain.HistoryStore
	logger         *zap.Logger
	processName    string
}

// NewSurface creates the command surface. history may be nil when job
// recording is disabled.
func NewSurface(
	runner *archive.Runner,
	counters *session.Counters,
	pm domain.ProcessManager,
	opener domain.FolderOpener,
	history domain.HistoryStore,
	processName string,
	logger *zap.Logger,
) *Surface {
	return &Surface{
		runner:         runner,
		counters:       counters,
		processManager: pm,
		opener:         opener,
		history:        history,
		logger:         logger,
		processName:    processName,
	}
}

// Compress runs one compress batch. Rejected outright when more than one
// instance of the application is running; nothing is written in that case.
func (s *Surface) Compress(ctx context.Context, sources []string, destination, kindTag string) (string, error) {
	count, err := s.processManager.CountByName(s.processName)
	if err != nil {
		s.logger.Warn("instance count failed", zap.Error(err))
	} else if count > 1 {
		s.logger.Warn("compress rejected",
			zap.Int("instances", count),
			zap.Error(domain.ErrMultipleInstances))
		return "", domain.ErrMultipleInstances
	}

	started := time.Now()
	msg, err := s.runner.Compress(ctx, sources, destination, kindTag)
	s.record(ctx, domain.JobRecord{
		ID:          uuid.NewString(),
		Operation:   domain.OpCompressing,
		Kind:        domain.CompressionKind(kindTag),
		SourceCount: len(sources),
		Destination: archive.ResolveDestination(destination, sources),
		StartedAt:   started,
		DurationMs:  time.Since(started).Milliseconds(),
	}, msg, err)
	return msg, err
}

// Decompress runs one decompress batch.
func (s *Surface) Decompress(ctx context.Context, sources []string) (string, error) {
	started := time.Now()
	msg, err := s.runner.Decompress(ctx, sources)
	s.record(ctx, domain.JobRecord{
		ID:          uuid.NewString(),
		Operation:   domain.OpExtracting,
		SourceCount: len(sources),
		StartedAt:   started,
		DurationMs:  time.Since(started).Milliseconds(),
	}, msg, err)
	return msg, err
}

// SupportedKinds returns the fixed set of compression kind tags.
func (s *Surface) SupportedKinds() []string {
	kinds := domain.SupportedKinds()
	tags := make([]string, len(kinds))
	for i, k := range kinds {
		tags[i] = string(k)
	}
	return tags
}

// ValidateKind reports whether kind can take this batch: false when the kind
// holds a single file and more than one source was given.
func (s *Surface) ValidateKind(sources []string, kindTag string) (bool, error) {
	kind, err := domain.ParseKind(kindTag)
	if err != nil {
		return false, err
	}
	if !kind.SupportsMultipleFiles() && len(sources) > 1 {
		return false, nil
	}
	return true, nil
}

// Close terminates every instance of the application, including this one, by
// executable name. Returns how many processes were killed.
func (s *Surface) Close() (int, error) {
	killed, err := s.processManager.KillByName(s.processName)
	if err != nil {
		return 0, err
	}
	s.logger.Info("instances terminated", zap.Int("killed", killed))
	return killed, nil
}

// Acknowledge stores the UI-reported processed-item count.
func (s *Surface) Acknowledge(count int64) {
	s.counters.SetAcknowledged(count)
}

// OpenContainingFolder reveals path in the OS file manager.
func (s *Surface) OpenContainingFolder(path string) error {
	return s.opener.OpenContaining(path)
}

// record persists one finished job to history. Failures are logged only; a
// broken history store must never fail the batch.
func (s *Surface) record(ctx context.Context, rec domain.JobRecord, msg string, jobErr error) {
	if s.history == nil {
		return
	}
	if jobErr != nil {
		rec.Status = domain.JobFailed
		rec.Message = jobErr.Error()
	} else {
		rec.Status = domain.JobSucceeded
		rec.Message = msg
	}
	if err := s.history.Add(ctx, rec); err != nil {
		s.logger.Warn("failed to record job history", zap.Error(err))
	}
}
