package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ulikunitz/xz"
)

func writeGzip(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	if _, err := gw.Write(data); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeXz(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := xw.Write(data); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	content := []byte("#BOS 1\n#EOS 1\n")
	plain := filepath.Join(dir, "a.export")
	if err := os.WriteFile(plain, content, 0644); err != nil {
		t.Fatal(err)
	}
	gz := filepath.Join(dir, "a.export.gz")
	writeGzip(t, gz, content)
	xzPath := filepath.Join(dir, "a.export.xz")
	writeXz(t, xzPath, content)

	for _, path := range []string{plain, gz, xzPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			rc, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != string(content) {
				t.Errorf("content = %q, want %q", got, content)
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(filepath.Join(dir, "missing")); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v, want not-exist", err)
	}
	bad := filepath.Join(dir, "bad.gz")
	if err := os.WriteFile(bad, []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bad); err == nil {
		t.Error("Open should fail on corrupt gzip data")
	}
}

func TestTrimExt(t *testing.T) {
	tests := map[string]string{
		"negra.export.xz": "negra.export",
		"lassy.tar.gz":    "lassy",
		"wsj.mrg.gz":      "wsj.mrg",
		"tiger.xml":       "tiger.xml",
		"corpus.tgz":      "corpus",
	}
	for in, want := range tests {
		if got := TrimExt(in); got != want {
			t.Errorf("TrimExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIterateArchive(t *testing.T) {
	for _, name := range []string{"corpus.tar", "corpus.tar.gz", "corpus.tar.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			tw, err := CreateTar(path)
			if err != nil {
				t.Fatal(err)
			}
			members := map[string]string{"lassy/1.xml": "<a/>", "lassy/2.xml": "<b/>"}
			for _, m := range []string{"lassy/1.xml", "lassy/2.xml"} {
				if err := tw.Add(m, []byte(members[m])); err != nil {
					t.Fatal(err)
				}
			}
			if err := tw.Close(); err != nil {
				t.Fatal(err)
			}

			var names []string
			err = IterateArchive(path, func(h *tar.Header, r io.Reader) (bool, error) {
				data, err := io.ReadAll(r)
				if err != nil {
					return true, err
				}
				if string(data) != members[h.Name] {
					t.Errorf("%s = %q, want %q", h.Name, data, members[h.Name])
				}
				names = append(names, h.Name)
				return false, nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff([]string{"lassy/1.xml", "lassy/2.xml"}, names); diff != "" {
				t.Errorf("members mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIterateStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.tar")
	tw, err := CreateTar(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"a", "b", "c"} {
		if err := tw.Add(m, []byte(m)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	count := 0
	err = IterateArchive(path, func(*tar.Header, io.Reader) (bool, error) {
		count++
		return count == 2, nil
	})
	if err != nil || count != 2 {
		t.Errorf("IterateArchive stopped after %d entries, err %v", count, err)
	}
}

func TestNewReaderUnsupported(t *testing.T) {
	if _, err := NewReader("corpus.export"); err == nil {
		t.Error("NewReader should reject non-archive paths")
	}
}
