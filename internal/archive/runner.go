package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// Runner executes one compress or decompress batch at a time, driving the
// codec collaborator and re-emitting its callbacks as progress updates.
// The batch state is owned by the calling goroutine; only the emitter and
// logger are shared.
type Runner struct {
	codec   domain.Codec
	emitter domain.Emitter
	logger  *zap.Logger
}

// NewRunner creates a batch runner.
func NewRunner(codec domain.Codec, emitter domain.Emitter, logger *zap.Logger) *Runner {
	return &Runner{
		codec:   codec,
		emitter: emitter,
		logger:  logger,
	}
}

// Compress writes sources into a single archive of the given kind.
// Compression is modeled as one logical step over the whole set: the codec
// reports batch-wide progress and CurrentFileIndex stays 1. Returns a
// human-readable success message naming the resolved destination.
func (r *Runner) Compress(ctx context.Context, sources []string, destination, kindTag string) (string, error) {
	kind, err := domain.ParseKind(kindTag)
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		return "", errors.New("no source files given")
	}

	dest := ResolveDestination(destination, sources)
	r.logger.Info("compression request",
		zap.Strings("sources", sources),
		zap.String("destination", dest),
		zap.String("kind", string(kind)))

	total := len(sources)
	err = r.codec.Compress(ctx, sources, dest, kind, func(percent float64, currentFile string) {
		r.emitProgress(domain.ProgressUpdate{
			Progress:         percent,
			CurrentFile:      currentFile,
			TotalFiles:       total,
			CurrentFileIndex: 1,
			Operation:        domain.OpCompressing,
		})
	})
	if err != nil {
		return "", &domain.CompressionError{Reason: err}
	}

	r.emitProgress(domain.ProgressUpdate{
		Progress:         100,
		CurrentFile:      "Complete",
		TotalFiles:       1,
		CurrentFileIndex: 1,
		Operation:        domain.OpCompressing,
	})

	return fmt.Sprintf("Files compressed successfully to: %s", dest), nil
}

// Decompress extracts each archive in order into its own collision-free
// directory. Overall progress stays monotonic: each file's sub-progress is
// confined to its 1/total slice of the bar. The batch aborts at the first
// failing source.
func (r *Runner) Decompress(ctx context.Context, sources []string) (string, error) {
	if len(sources) == 0 {
		return "", errors.New("no archives given")
	}

	total := len(sources)
	decompressedTo := make([]string, 0, total)

	for index, source := range sources {
		outputDir := ResolveOutputDir(source)

		r.emitProgress(domain.ProgressUpdate{
			Progress:         float64(index) / float64(total) * 100,
			CurrentFile:      filepath.Base(source),
			TotalFiles:       total,
			CurrentFileIndex: index + 1,
			Operation:        domain.OpExtracting,
		})

		err := r.codec.Decompress(ctx, source, outputDir, func(filePercent float64, currentFile string) {
			r.emitProgress(domain.ProgressUpdate{
				Progress:         (float64(index) + filePercent/100) / float64(total) * 100,
				CurrentFile:      currentFile,
				TotalFiles:       total,
				CurrentFileIndex: index + 1,
				Operation:        domain.OpExtracting,
			})
		})
		if err != nil {
			return "", &domain.DecompressionError{Source: source, Reason: err}
		}

		decompressedTo = append(decompressedTo, outputDir)
		r.logger.Info("archive decompressed",
			zap.String("source", source),
			zap.String("output_dir", outputDir))
	}

	r.emitProgress(domain.ProgressUpdate{
		Progress:         100,
		CurrentFile:      "Complete",
		TotalFiles:       total,
		CurrentFileIndex: total,
		Operation:        domain.OpExtracting,
	})

	if len(decompressedTo) == 1 {
		return fmt.Sprintf("File decompressed successfully to: %s", decompressedTo[0]), nil
	}
	return fmt.Sprintf("Files decompressed successfully. %d archives processed.", len(decompressedTo)), nil
}

// emitProgress forwards one update to the UI. Delivery failures are logged
// and swallowed; updates already emitted are never retracted.
func (r *Runner) emitProgress(update domain.ProgressUpdate) {
	if err := r.emitter.Emit(domain.EventCompressionProgress, update); err != nil {
		r.logger.Warn("event delivery failed",
			zap.String("event", domain.EventCompressionProgress),
			zap.Error(err))
	}
}
