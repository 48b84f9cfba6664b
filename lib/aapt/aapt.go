// Package aapt wraps invocations of the Android asset packaging tool.
package aapt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"go.resproc.io/resproc/lib/crunch"
)

// IgnorePattern is the assets ignore list passed to every aapt invocation.
const IgnorePattern = "!OWNERS:!.svn:!.git:!.ds_store:!*.scc:.*:<dir>_*:!CVS:!thumbs.db:!picasa.ini:!*~:!*.d.stamp"

// PackageOptions configures one `aapt package` run.
type PackageOptions struct {
	ManifestPath string
	SDKJarPath   string
	// GenDir receives R.txt and, in include-all mode, the R.java files.
	GenDir string
	// ResourceDirs lists the -S sources in source-then-dependency order.
	// Adding the dependencies is necessary for @type/foo references into
	// them to resolve.
	ResourceDirs []string
	ProguardFile string

	// The flags below only apply in include-all mode, where aapt itself
	// writes every symbol into every generated R.java.
	IncludeAll      bool
	ExtraPackages   []string
	NonConstantID   bool
	CustomPackage   string
	SharedResources bool
	AppAsSharedLib  bool
}

// Tool invokes a real aapt binary.
type Tool struct {
	Path   string
	Logger logrus.FieldLogger
}

// Package runs `aapt package` to generate the canonical R.txt (and, in
// include-all mode, the R.java files).
func (t *Tool) Package(ctx context.Context, opts PackageOptions) error {
	args := []string{
		"package",
		"-m",
		"-M", opts.ManifestPath,
		"--auto-add-overlay",
		"--no-version-vectors",
		"-I", opts.SDKJarPath,
		"--output-text-symbols", opts.GenDir,
		"-J", opts.GenDir, // required for R.txt generation
		"--ignore-assets", IgnorePattern,
	}
	if opts.IncludeAll {
		if len(opts.ExtraPackages) > 0 {
			args = append(args, "--extra-packages", strings.Join(opts.ExtraPackages, ":"))
		}
		if opts.NonConstantID {
			args = append(args, "--non-constant-id")
		}
		if opts.CustomPackage != "" {
			args = append(args, "--custom-package", opts.CustomPackage)
		}
		if opts.SharedResources {
			args = append(args, "--shared-lib")
		}
		if opts.AppAsSharedLib {
			args = append(args, "--app-as-shared-lib")
		}
	}
	for _, d := range opts.ResourceDirs {
		args = append(args, "-S", d)
	}
	if opts.ProguardFile != "" {
		args = append(args, "-G", opts.ProguardFile)
	}
	return t.run(ctx, args, nil, nil)
}

// Crunch implements crunch.Cruncher by running `aapt crunch` for one input
// directory. aapt's exit status is unreliable here, so any stderr output
// that survives the benign-diagnostic filter counts as failure.
func (t *Tool) Crunch(ctx context.Context, inputDir, outputDir string) error {
	args := []string{
		"crunch",
		"-C", outputDir,
		"-S", inputDir,
		"--ignore-assets", IgnorePattern,
	}
	return t.run(ctx, args, crunch.FilterStderr, crunch.Failed)
}

// run executes aapt, surfacing stderr only on failure. The default failure
// rule is a non-zero exit code; crunch passes a stricter one.
func (t *Tool) run(ctx context.Context, args []string, stderrFilter func(string) string,
	failFunc func(int, string) bool,
) error {
	cmd := exec.CommandContext(ctx, t.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	t.Logger.WithField("args", args).Debug("running aapt")

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("aapt %s: %w", args[0], err)
		}
		exitCode = exitErr.ExitCode()
	}

	errOut := stderr.String()
	if stderrFilter != nil {
		errOut = stderrFilter(errOut)
	}
	failed := exitCode != 0
	if failFunc != nil {
		failed = failFunc(exitCode, errOut)
	}
	if failed {
		return fmt.Errorf("aapt %s failed (exit code %d):\n%s", args[0], exitCode, errOut)
	}
	return nil
}
