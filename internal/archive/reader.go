// Package archive opens corpus files that may be compressed or bundled.
// Plain files, .gz and .xz files are read as a single stream; .tar, .tar.gz,
// .tgz and .tar.xz archives are read member by member.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

var archiveExts = []string{".tar.xz", ".tar.gz", ".tgz", ".tar"}

// IsArchive reports whether path names a tar archive.
func IsArchive(path string) bool {
	for _, ext := range archiveExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimExt removes compression and archive extensions from a file name:
// "negra.export.xz" becomes "negra.export", "lassy.tar.gz" becomes "lassy".
func TrimExt(name string) string {
	for _, ext := range archiveExts {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	for _, ext := range []string{".xz", ".gz"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// file couples a decompressor with the file underneath it.
type file struct {
	io.Reader
	f            *os.File
	decompressor io.Closer
}

func (r *file) Close() error {
	var errs []error
	if r.decompressor != nil {
		if err := r.decompressor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.f.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Open opens path for reading, decompressing .gz and .xz files (including
// compressed tar archives) transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &file{Reader: f, f: f}
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		r.Reader = xzr // xz reader doesn't need closing
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".tgz"):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		r.Reader = gzr
		r.decompressor = gzr
	}
	return r, nil
}

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	rc io.ReadCloser
}

// NewReader creates a new archive reader for the given path.
func NewReader(path string) (*Reader, error) {
	if !IsArchive(path) {
		return nil, fmt.Errorf("unsupported archive format: %s", path)
	}
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{Reader: tar.NewReader(rc), rc: rc}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	return r.rc.Close()
}

// Visitor is a callback function for iterating archive entries.
// Return true to stop iteration, false to continue.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through the regular files in the archive, in archive order,
// calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// IterateArchive opens an archive and iterates through its entries.
func IterateArchive(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}
