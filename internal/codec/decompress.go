package codec

import (
	"archive/tar"
	"archive/zip"
	stdbzip2 "compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/eliteGoblin/parcel/internal/domain"
)

func (a *Archiver) extractZip(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	zr, err := zip.OpenReader(source)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", source, err)
	}
	defer zr.Close()

	var total int64
	for _, f := range zr.File {
		total += int64(f.UncompressedSize64)
	}
	tr := newTracker(total, progress)

	for _, f := range zr.File {
		if err := a.extractZipEntry(ctx, f, destDir, tr); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archiver) extractZipEntry(ctx context.Context, f *zip.File, destDir string, tr *tracker) error {
	target, err := entryPath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	defer out.Close()

	name := filepath.Base(f.Name)
	if _, err := io.Copy(out, &countingReader{ctx: ctx, src: rc, tracker: tr, file: name}); err != nil {
		return err
	}
	return out.Close()
}

func (a *Archiver) extractTar(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractTarStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, error) {
		return r, nil
	})
}

func (a *Archiver) extractTarGz(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractTarStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, error) {
		return gzip.NewReader(r)
	})
}

func (a *Archiver) extractTarBr(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractTarStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, error) {
		return brotli.NewReader(r), nil
	})
}

// extractTarStream untars source through the given decoder. Progress is
// weighted by compressed bytes consumed, since the uncompressed total is not
// known up front for streamed containers.
func (a *Archiver) extractTarStream(
	ctx context.Context,
	source, destDir string,
	progress domain.ProgressFunc,
	decode func(io.Reader) (io.Reader, error),
) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	tracked := &countingReader{
		ctx:     ctx,
		src:     in,
		tracker: newTracker(info.Size(), progress),
		file:    filepath.Base(source),
	}

	decoded, err := decode(tracked)
	if err != nil {
		return fmt.Errorf("open compressed stream: %w", err)
	}

	tr := tar.NewReader(decoded)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := entryPath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode).Perm()|0o200)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and specials are skipped; archives from this
			// application never contain them.
		}
	}
}

func (a *Archiver) extractGz(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, string, error) {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, "", err
		}
		return gz, gz.Name, nil
	})
}

func (a *Archiver) extractBr(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, string, error) {
		return brotli.NewReader(r), "", nil
	})
}

func (a *Archiver) extractBzip2(ctx context.Context, source, destDir string, progress domain.ProgressFunc) error {
	return a.extractStream(ctx, source, destDir, progress, func(r io.Reader) (io.Reader, string, error) {
		return stdbzip2.NewReader(r), "", nil
	})
}

// extractStream unwraps one single-stream archive into destDir. The output
// file name comes from the codec header when present, else the source name
// with its extension stripped.
func (a *Archiver) extractStream(
	ctx context.Context,
	source, destDir string,
	progress domain.ProgressFunc,
	decode func(io.Reader) (io.Reader, string, error),
) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	tracked := &countingReader{
		ctx:     ctx,
		src:     in,
		tracker: newTracker(info.Size(), progress),
		file:    filepath.Base(source),
	}

	decoded, headerName, err := decode(tracked)
	if err != nil {
		return fmt.Errorf("open compressed stream: %w", err)
	}

	name := headerName
	if name == "" {
		base := filepath.Base(source)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	target, err := entryPath(destDir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, decoded); err != nil {
		return err
	}
	return out.Close()
}

// entryPath joins an archive entry name onto destDir, rejecting names that
// would escape it.
func entryPath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
