// Package fsext contains small afero filesystem helpers shared by the
// pipeline stages.
package fsext

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// CopyFile copies src to dst, creating dst's parent directories as needed.
func CopyFile(fs afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fs, src)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, dst, data, 0o644)
}

// CopyTree copies every file under srcDir to the same relative path under
// dstDir.
func CopyTree(fs afero.Fs, srcDir, dstDir string) error {
	return afero.Walk(fs, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstDir, rel)
		if info.IsDir() {
			return fs.MkdirAll(target, 0o755)
		}
		return CopyFile(fs, path, target)
	})
}
