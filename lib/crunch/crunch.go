// Package crunch drives the aapt image transform over resource directories
// and enforces its output integrity rules.
package crunch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Cruncher runs the external image transform for one input directory. The
// tool consumes and clears the whole output directory per invocation, so
// concurrent calls must not share an output root.
type Cruncher interface {
	Crunch(ctx context.Context, inputDir, outputDir string) error
}

// benignProfileWarning is a known non-error condition from libpng.
// http://crbug.com/364355
const benignProfileWarning = "libpng warning: iCCP: Not recognizing known sRGB profile that has been edited"

// FilterStderr drops diagnostic lines from aapt crunch's stderr that can
// safely be ignored.
func FilterStderr(stderr string) string {
	if stderr == "" {
		return ""
	}
	var filtered []string
	for _, line := range strings.SplitAfter(stderr, "\n") {
		if strings.Contains(line, benignProfileWarning) {
			continue
		}
		filtered = append(filtered, line)
	}
	return strings.Join(filtered, "")
}

// Failed determines whether a crunch invocation failed from its exit code
// and (filtered) stderr. aapt's exit code cannot be trusted, so any output
// to stderr is an indication that it has failed. http://crbug.com/314885
func Failed(exitCode int, stderr string) bool {
	return exitCode != 0 || stderr != ""
}

// IntegrityError reports a file of an unexpected type in a crunch output
// directory.
type IntegrityError struct {
	Path string
}

func (e *IntegrityError) Error() string {
	return "unexpected file in crunched dir: " + e.Path
}

// Directory crunches the images in inputDir and its subdirectories into
// outputDir.
//
// If an image is already optimized, crunching often increases its size. In
// that case the crunched image is overwritten with the original bytes.
// 9-patch images are exempt: they must stay crunched to render correctly,
// whatever the size outcome.
func Directory(ctx context.Context, fs afero.Fs, cruncher Cruncher, inputDir, outputDir string) error {
	if err := cruncher.Crunch(ctx, inputDir, outputDir); err != nil {
		return err
	}

	return afero.Walk(fs, outputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if strings.HasSuffix(name, ".9.png") {
			return nil
		}
		if !strings.HasSuffix(name, ".png") {
			return &IntegrityError{Path: name}
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return err
		}
		original := filepath.Join(inputDir, rel)
		origInfo, err := fs.Stat(original)
		if err != nil {
			return err
		}
		if origInfo.Size() < info.Size() {
			data, err := afero.ReadFile(fs, original)
			if err != nil {
				return err
			}
			return afero.WriteFile(fs, path, data, info.Mode())
		}
		return nil
	})
}
