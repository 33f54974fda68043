package codec

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"

	"github.com/eliteGoblin/parcel/internal/domain"
)

func (a *Archiver) compressZip(ctx context.Context, sources []string, dest string, total int64, progress domain.ProgressFunc) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dest, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	tr := newTracker(total, progress)

	for _, source := range sources {
		if err := a.addToZip(ctx, zw, source, tr); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return out.Close()
}

func (a *Archiver) addToZip(ctx context.Context, zw *zip.Writer, source string, tr *tracker) error {
	base := filepath.Dir(source)
	return filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if info.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(w, &countingReader{ctx: ctx, src: f, tracker: tr, file: info.Name()})
		return err
	})
}

func (a *Archiver) compressTarGz(ctx context.Context, sources []string, dest string, total int64, progress domain.ProgressFunc) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dest, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if err := a.writeTar(ctx, gz, sources, total, progress); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("finalize gzip: %w", err)
	}
	return out.Close()
}

func (a *Archiver) compressTarBr(ctx context.Context, sources []string, dest string, total int64, progress domain.ProgressFunc) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dest, err)
	}
	defer out.Close()

	br := brotli.NewWriterLevel(out, brotli.DefaultCompression)
	if err := a.writeTar(ctx, br, sources, total, progress); err != nil {
		br.Close()
		return err
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("finalize brotli: %w", err)
	}
	return out.Close()
}

// writeTar streams all sources into a tar container on w.
func (a *Archiver) writeTar(ctx context.Context, w io.Writer, sources []string, total int64, progress domain.ProgressFunc) error {
	tw := tar.NewWriter(w)
	tr := newTracker(total, progress)

	for _, source := range sources {
		base := filepath.Dir(source)
		err := filepath.Walk(source, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}

			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(rel)

			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			_, err = io.Copy(tw, &countingReader{ctx: ctx, src: f, tracker: tr, file: info.Name()})
			return err
		})
		if err != nil {
			return err
		}
	}

	return tw.Close()
}

func (a *Archiver) compressGz(ctx context.Context, source, dest string, total int64, progress domain.ProgressFunc) error {
	return a.compressStream(ctx, source, dest, total, progress, func(out io.Writer) (io.WriteCloser, error) {
		gz := gzip.NewWriter(out)
		gz.Name = filepath.Base(source)
		return gz, nil
	})
}

func (a *Archiver) compressBr(ctx context.Context, source, dest string, total int64, progress domain.ProgressFunc) error {
	return a.compressStream(ctx, source, dest, total, progress, func(out io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriterLevel(out, brotli.DefaultCompression), nil
	})
}

func (a *Archiver) compressBzip2(ctx context.Context, source, dest string, total int64, progress domain.ProgressFunc) error {
	return a.compressStream(ctx, source, dest, total, progress, func(out io.Writer) (io.WriteCloser, error) {
		return bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	})
}

// compressStream wraps one regular file in a single-stream codec.
func (a *Archiver) compressStream(
	ctx context.Context,
	source, dest string,
	total int64,
	progress domain.ProgressFunc,
	wrap func(io.Writer) (io.WriteCloser, error),
) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat source %s: %w", source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; single-stream codecs take one file", source)
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dest, err)
	}
	defer out.Close()

	w, err := wrap(out)
	if err != nil {
		return err
	}

	tr := newTracker(total, progress)
	if _, err := io.Copy(w, &countingReader{ctx: ctx, src: in, tracker: tr, file: info.Name()}); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize stream: %w", err)
	}
	return out.Close()
}
