// Package codec implements the byte-level archive operations behind the
// domain.Codec boundary: zip and tar containers over gzip, brotli and bzip2
// streams. Progress is weighted by bytes processed.
package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// Archiver implements domain.Codec.
type Archiver struct {
	logger *zap.Logger
}

// New creates the archive codec.
func New(logger *zap.Logger) *Archiver {
	return &Archiver{logger: logger}
}

// Compress writes all sources into one archive at dest.
func (a *Archiver) Compress(ctx context.Context, sources []string, dest string, kind domain.CompressionKind, progress domain.ProgressFunc) error {
	if len(sources) > 1 && !kind.SupportsMultipleFiles() {
		return fmt.Errorf("%s does not support multiple input files", kind)
	}

	total, err := totalSize(sources)
	if err != nil {
		return err
	}

	switch kind {
	case domain.KindZip:
		err = a.compressZip(ctx, sources, dest, total, progress)
	case domain.KindTarGz:
		err = a.compressTarGz(ctx, sources, dest, total, progress)
	case domain.KindTarBr:
		err = a.compressTarBr(ctx, sources, dest, total, progress)
	case domain.KindGz, domain.KindGzip:
		err = a.compressGz(ctx, sources[0], dest, total, progress)
	case domain.KindBr:
		err = a.compressBr(ctx, sources[0], dest, total, progress)
	case domain.KindBzip2:
		err = a.compressBzip2(ctx, sources[0], dest, total, progress)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
	if err != nil {
		// Best effort: don't leave a truncated archive behind.
		_ = os.Remove(dest)
		return err
	}

	a.logger.Debug("archive written",
		zap.String("dest", dest),
		zap.String("kind", string(kind)),
		zap.Int64("input_bytes", total))
	return nil
}

// Decompress extracts one archive into destDir, choosing the format from the
// file name.
func (a *Archiver) Decompress(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	name := strings.ToLower(filepath.Base(source))

	switch {
	case strings.HasSuffix(name, ".zip"):
		return a.extractZip(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return a.extractTarGz(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".tar.br"), strings.HasSuffix(name, ".tbr"):
		return a.extractTarBr(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".tar"):
		return a.extractTar(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".gz"):
		return a.extractGz(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".br"):
		return a.extractBr(ctx, source, destDir, progress)
	case strings.HasSuffix(name, ".bz2"):
		return a.extractBzip2(ctx, source, destDir, progress)
	default:
		return fmt.Errorf("unrecognized archive format: %s", filepath.Base(source))
	}
}

// totalSize sums the regular-file bytes under every source, so compression
// progress can be weighted by input consumed.
func totalSize(sources []string) (int64, error) {
	var total int64
	for _, src := range sources {
		err := filepath.Walk(src, func(_ string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				total += info.Size()
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("stat source %s: %w", src, err)
		}
	}
	return total, nil
}

// Ensure Archiver implements domain.Codec.
var _ domain.Codec = (*Archiver)(nil)
