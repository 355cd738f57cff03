package api

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"causaltrace/internal/config"
	"causaltrace/internal/frames"
	"causaltrace/internal/httputil"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// zipMethodZstd is the ZIP compression method ID for Zstandard (APPNOTE 6.3.7).
const zipMethodZstd uint16 = 93

func init() {
	zip.RegisterDecompressor(zipMethodZstd, func(r io.Reader) io.ReadCloser {
		d, err := zstd.NewReader(r)
		if err != nil {
			return io.NopCloser(errReader{err})
		}
		return d.IOReadCloser()
	})
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

// uploadError is a client mistake in the uploaded frames.
type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }

func badUpload(format string, args ...any) error {
	return &uploadError{msg: fmt.Sprintf(format, args...)}
}

func isUploadError(err error) bool {
	var ue *uploadError
	return errors.As(err, &ue)
}

// frameWriter stores uploaded frames flat in one directory.
type frameWriter struct {
	dir   string
	saved map[string]bool
}

func newFrameWriter(dir string) (*frameWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &frameWriter{dir: dir, saved: map[string]bool{}}, nil
}

func (w *frameWriter) count() int { return len(w.saved) }

// accept reports whether name should be stored, and under which name.
func (w *frameWriter) accept(name string) (string, bool, error) {
	safe := httputil.SafeFilename(name)
	if safe == "" || !frames.IsImage(safe) {
		return "", false, nil
	}
	if w.saved[safe] {
		log.Warn().Str("frame", safe).Msg("skipping duplicate frame name")
		return "", false, nil
	}
	if len(w.saved) >= config.MaxUploadFrames {
		return "", false, badUpload("too many frames (max %d)", config.MaxUploadFrames)
	}
	return safe, true, nil
}

func (w *frameWriter) write(name string, src io.Reader) error {
	dst := filepath.Join(w.dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	written, err := io.Copy(out, io.LimitReader(src, config.MaxFrameBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	if written > config.MaxFrameBytes {
		os.Remove(dst)
		return badUpload("frame %s exceeds %s", name, httputil.FormatSize(config.MaxFrameBytes))
	}
	w.saved[name] = true
	return nil
}

// saveFiles stores each multipart image file. Non-image files are ignored.
func (w *frameWriter) saveFiles(files []*multipart.FileHeader) error {
	for _, fh := range files {
		name, ok, err := w.accept(fh.Filename)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if fh.Size > config.MaxFrameBytes {
			return badUpload("frame %s exceeds %s", name, httputil.FormatSize(config.MaxFrameBytes))
		}
		src, err := fh.Open()
		if err != nil {
			return err
		}
		err = w.write(name, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// saveZip extracts the image entries of a ZIP archive, flattened to their
// base names.
func (w *frameWriter) saveZip(fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	zr, err := zip.NewReader(src, fh.Size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return badUpload("invalid ZIP archive")
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, ok, err := w.accept(f.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if f.UncompressedSize64 > config.MaxFrameBytes {
			return badUpload("frame %s exceeds %s", name, httputil.FormatSize(config.MaxFrameBytes))
		}
		rc, err := f.Open()
		if err != nil {
			return badUpload("cannot read %s from ZIP archive", f.Name)
		}
		err = w.write(name, rc)
		rc.Close()
		if err != nil {
			if isUploadError(err) {
				return err
			}
			return badUpload("cannot extract %s: %v", f.Name, err)
		}
	}
	return nil
}
