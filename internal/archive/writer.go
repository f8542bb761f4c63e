package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// compressed closes the compressor before the file underneath it.
type compressed struct {
	io.Writer
	f          *os.File
	compressor io.Closer
}

func (w *compressed) Close() error {
	var errs []error
	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Create creates path, and any missing parent directories, for writing.
// Output to a .gz, .tgz or .xz path is compressed accordingly.
func Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := &compressed{Writer: f, f: f}
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w.Writer, w.compressor = xzw, xzw
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".tgz"):
		gzw := gzip.NewWriter(f)
		w.Writer, w.compressor = gzw, gzw
	}
	return w, nil
}

// TarWriter writes one member per call to a possibly compressed tar archive.
type TarWriter struct {
	tw      *tar.Writer
	w       io.WriteCloser
	modTime time.Time
}

// CreateTar creates a tar archive at path, compressed according to its
// extension.
func CreateTar(path string) (*TarWriter, error) {
	if !IsArchive(path) {
		return nil, fmt.Errorf("unsupported archive format: %s", path)
	}
	w, err := Create(path)
	if err != nil {
		return nil, err
	}
	return &TarWriter{tw: tar.NewWriter(w), w: w, modTime: time.Now()}, nil
}

// Add writes a regular file member.
func (t *TarWriter) Add(name string, data []byte) error {
	header := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: t.modTime,
	}
	if err := t.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}
	if _, err := t.tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Close finishes the archive.
func (t *TarWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		t.w.Close()
		return err
	}
	return t.w.Close()
}
