// Package reszip assembles resource archives: layered directory zips,
// index-prefixed zip combination and dependency zip extraction.
package reszip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"
)

// fixedZipTime keeps archives byte-for-byte reproducible (1980-01-01 UTC,
// the earliest timestamp the zip format can represent).
var fixedZipTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

func newZipWriter(w io.Writer) *zip.Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return zw
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = fixedZipTime
	w, err := zw.CreateHeader(h)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// LayerFiles walks each root in order and returns the final relative-path to
// absolute-path mapping. A later root's file silently replaces an earlier
// root's file at the same relative path; within one root duplicates cannot
// occur, so the result depends only on layer order, never on walk order.
func LayerFiles(fs afero.Fs, dirs []string) (map[string]string, error) {
	files := make(map[string]string)
	for _, dir := range dirs {
		err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files[filepath.ToSlash(rel)] = path
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ZipResources zips the ordered resource directory layers into one archive,
// the last layer winning on duplicate relative paths. Entries are written in
// sorted path order with fixed timestamps so identical inputs produce
// identical archives.
func ZipResources(fs afero.Fs, dirs []string, zipPath string) error {
	files, err := LayerFiles(fs, dirs)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out, err := fs.Create(zipPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	zw := newZipWriter(out)
	for _, name := range names {
		data, err := afero.ReadFile(fs, files[name])
		if err != nil {
			return err
		}
		if err := writeEntry(zw, name, data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ZipDir archives one directory tree (used for the srcjar output).
func ZipDir(fs afero.Fs, dir, zipPath string) error {
	return ZipResources(fs, []string{dir}, zipPath)
}

// CombineZips merges the input archives into one, prefixing every entry of
// the archive at ordinal position i with "i/". The prefix keeps
// independently-built archives from colliding; resolving semantic conflicts
// between the prefixed subtrees is left to the downstream packaging tool,
// which treats each numbered top-level directory as a resources directory.
func CombineZips(fs afero.Fs, zipPaths []string, outPath string) error {
	out, err := fs.Create(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	zw := newZipWriter(out)
	for i, zipPath := range zipPaths {
		zr, err := openZip(fs, zipPath)
		if err != nil {
			return err
		}
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			data, err := readZipFile(f)
			if err != nil {
				return fmt.Errorf("reading %s from %s: %w", f.Name, zipPath, err)
			}
			if err := writeEntry(zw, fmt.Sprintf("%d/%s", i, f.Name), data); err != nil {
				return err
			}
		}
	}
	return zw.Close()
}

// ExtractAll unpacks a zip archive under dest, sanitizing entry paths so no
// entry can escape the destination directory.
func ExtractAll(fs afero.Fs, zipPath, dest string) error {
	zr, err := openZip(fs, zipPath)
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(sanitizePath(f.Name)))
		if f.FileInfo().IsDir() {
			if err := fs.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		data, err := readZipFile(f)
		if err != nil {
			return fmt.Errorf("extracting %s from %s: %w", f.Name, zipPath, err)
		}
		if err := afero.WriteFile(fs, target, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func openZip(fs afero.Fs, path string) (*zip.Reader, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return zr, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// sanitizePath normalizes zip entry paths: forward slashes, no drive prefix,
// no leading '/', and '.'/'..' segments resolved without escaping the root.
func sanitizePath(p string) string {
	s := filepath.ToSlash(p)
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	s = strings.TrimLeft(s, "/")
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
			continue
		}
		stack = append(stack, part)
	}
	s = strings.Join(stack, "/")
	if s == "" {
		return "entry"
	}
	return s
}
