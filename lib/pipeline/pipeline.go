// Package pipeline sequences the resource processing stages: dependency
// extraction, v14 generation, aapt packaging, R.java generation, image
// crunching and final archive assembly.
//
// The stages run synchronously, each one completing before the next begins.
// Every stage works inside a temporary directory; the declared output paths
// are only written once the whole run has succeeded, so a failed run leaves
// no partial artifacts behind.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.resproc.io/resproc/errext"
	"go.resproc.io/resproc/errext/exitcodes"
	"go.resproc.io/resproc/lib/aapt"
	"go.resproc.io/resproc/lib/crunch"
	"go.resproc.io/resproc/lib/fsext"
	"go.resproc.io/resproc/lib/manifest"
	"go.resproc.io/resproc/lib/reszip"
	"go.resproc.io/resproc/lib/rjava"
	"go.resproc.io/resproc/lib/symbols"
	"go.resproc.io/resproc/lib/v14"
)

// Options configure one pipeline run. They are validated by the CLI layer
// before they get here.
type Options struct {
	ManifestPath string
	SDKJarPath   string

	// ResourceDirs are this target's own resource directories;
	// DependencyZips are pre-built resource archives from upstream modules.
	ResourceDirs   []string
	DependencyZips []string

	ResourceZipOut     string
	AllResourcesZipOut string
	// Exactly one of RDir and SrcjarOut is set.
	RDir      string
	SrcjarOut string
	RTextOut  string

	ProguardFile     string
	CustomPackage    string
	ExtraResPackages []string
	ExtraRTextFiles  []string

	NonConstantID       bool
	SharedResources     bool
	AppAsSharedLib      bool
	IncludeAllResources bool
	SkipV14             bool
}

// Packager is the external packaging tool collaborator; it produces the
// canonical R.txt for the build.
type Packager interface {
	Package(ctx context.Context, opts aapt.PackageOptions) error
}

// ArchiveNameConflictError reports two dependency zips sharing a basename,
// which would collide in the extraction staging area.
type ArchiveNameConflictError struct {
	Name string
}

func (e *ArchiveNameConflictError) Error() string {
	return "resource zip name conflict: " + e.Name
}

// Pipeline owns the collaborators of one run.
type Pipeline struct {
	FS       afero.Fs
	Logger   logrus.FieldLogger
	Packager Packager
	Cruncher crunch.Cruncher
	V14      v14.Generator
}

// Run executes every stage in order and publishes the outputs only after all
// of them succeeded.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	tempDir, err := afero.TempDir(p.FS, "", "resproc")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := p.FS.RemoveAll(tempDir); rmErr != nil {
			p.Logger.WithError(rmErr).Warn("could not remove temporary directory")
		}
	}()

	depsDir := filepath.Join(tempDir, "deps")
	v14Dir := filepath.Join(tempDir, "v14")
	genDir := filepath.Join(tempDir, "gen")
	srcjarDir := filepath.Join(tempDir, "java")
	for _, dir := range []string{depsDir, v14Dir, genDir, srcjarDir} {
		if err := p.FS.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	rTxtPath := filepath.Join(genDir, "R.txt")

	if !opts.SkipV14 {
		for _, resDir := range opts.ResourceDirs {
			if err := p.V14.Generate(ctx, resDir, v14Dir); err != nil {
				return errext.WithExitCodeIfNone(err, exitcodes.ExternalToolExit)
			}
		}
	}

	depSubdirs, err := p.extractDeps(opts.DependencyZips, depsDir)
	if err != nil {
		return err
	}

	// Generate the canonical R.txt. When building a library this R.java
	// contains non-final placeholder constants; the correct IDs only exist
	// once the final target merges every module's resources.
	pkgErr := p.Packager.Package(ctx, aapt.PackageOptions{
		ManifestPath:    opts.ManifestPath,
		SDKJarPath:      opts.SDKJarPath,
		GenDir:          genDir,
		ResourceDirs:    append(append([]string{}, opts.ResourceDirs...), depSubdirs...),
		ProguardFile:    opts.ProguardFile,
		IncludeAll:      opts.IncludeAllResources,
		ExtraPackages:   opts.ExtraResPackages,
		NonConstantID:   opts.NonConstantID,
		CustomPackage:   opts.CustomPackage,
		SharedResources: opts.SharedResources,
		AppAsSharedLib:  opts.AppAsSharedLib,
	})
	if pkgErr != nil {
		return errext.WithExitCodeIfNone(pkgErr, exitcodes.PackagingFailed)
	}

	// When an empty res/ directory is packaged, aapt does not write an
	// R.txt at all; downstream stages still expect one.
	if ok, err := afero.Exists(p.FS, rTxtPath); err != nil {
		return err
	} else if !ok {
		if err := afero.WriteFile(p.FS, rTxtPath, nil, 0o644); err != nil {
			return err
		}
	}

	if opts.IncludeAllResources {
		// aapt already wrote an R.java with every symbol per package, so
		// there is nothing to merge or generate.
		srcjarDir = genDir
	} else if err := p.generateRFiles(srcjarDir, rTxtPath, opts); err != nil {
		return err
	}

	// The layer order matters: v14 and crunched resources must override the
	// originals in the final zip.
	zipLayers := append(append([]string{}, opts.ResourceDirs...), v14Dir)

	// Crunch image resources. This shrinks png files and is necessary for
	// 9-patch images to display correctly. aapt crunch accepts only a
	// single directory at a time and deletes everything in the output
	// directory, so the input directories are processed one by one.
	baseCrunchDir := filepath.Join(tempDir, "crunch")
	for i, inputDir := range opts.ResourceDirs {
		crunchDir := filepath.Join(baseCrunchDir, strconv.Itoa(i))
		if err := p.FS.MkdirAll(crunchDir, 0o755); err != nil {
			return err
		}
		zipLayers = append(zipLayers, crunchDir)
		if err := crunch.Directory(ctx, p.FS, p.Cruncher, inputDir, crunchDir); err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.CrunchFailed)
		}
	}

	resourceZip := filepath.Join(tempDir, "resources.zip")
	if err := reszip.ZipResources(p.FS, zipLayers, resourceZip); err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.AssembleFailed)
	}

	allResourcesZip := ""
	if opts.AllResourcesZipOut != "" {
		allResourcesZip = filepath.Join(tempDir, "all-resources.zip")
		combined := append([]string{resourceZip}, opts.DependencyZips...)
		if err := reszip.CombineZips(p.FS, combined, allResourcesZip); err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.AssembleFailed)
		}
	}

	srcjar := ""
	if opts.SrcjarOut != "" {
		srcjar = filepath.Join(tempDir, "R.srcjar")
		if err := reszip.ZipDir(p.FS, srcjarDir, srcjar); err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.AssembleFailed)
		}
	}

	return p.publish(resourceZip, allResourcesZip, srcjar, srcjarDir, rTxtPath, opts)
}

// extractDeps unpacks each dependency zip into its own staging subdirectory,
// named after the zip's basename.
func (p *Pipeline) extractDeps(depZips []string, depsDir string) ([]string, error) {
	subdirs := make([]string, 0, len(depZips))
	seen := make(map[string]struct{}, len(depZips))
	for _, z := range depZips {
		base := filepath.Base(z)
		if _, ok := seen[base]; ok {
			return nil, errext.WithHint(
				errext.WithExitCodeIfNone(&ArchiveNameConflictError{Name: base}, exitcodes.AssembleFailed),
				"dependency resource zips must have unique file names")
		}
		seen[base] = struct{}{}
		subdir := filepath.Join(depsDir, base)
		if err := reszip.ExtractAll(p.FS, z, subdir); err != nil {
			return nil, errext.WithExitCodeIfNone(err, exitcodes.AssembleFailed)
		}
		subdirs = append(subdirs, subdir)
	}
	return subdirs, nil
}

// generateRFiles builds the package list for R.java generation and renders
// one file per namespace from the canonical R.txt.
func (p *Pipeline) generateRFiles(srcjarDir, rTxtPath string, opts Options) error {
	packages := append([]string{}, opts.ExtraResPackages...)
	rtxtFiles := append([]string{}, opts.ExtraRTextFiles...)

	curPackage := opts.CustomPackage
	if curPackage == "" {
		pkg, err := manifest.ExtractPackage(p.FS, opts.ManifestPath)
		if err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
		curPackage = pkg
	}

	// Don't generate an R.java for the current target when no real package
	// name was provided, or when a dependent resources target already
	// claimed the same package (this happens when an apk target and a
	// resources target share an AndroidManifest.xml).
	claimed := false
	for _, pkg := range packages {
		if pkg == curPackage {
			claimed = true
			break
		}
	}
	if curPackage != "dummy.package" && !claimed {
		packages = append(packages, curPackage)
		rtxtFiles = append(rtxtFiles, rTxtPath)
	}

	if len(packages) == 0 {
		return nil
	}

	shared := opts.SharedResources || opts.AppAsSharedLib
	if err := rjava.WriteRFiles(p.FS, srcjarDir, rTxtPath, packages, rtxtFiles, shared); err != nil {
		var parseErr *symbols.ParseError
		code := exitcodes.MergeFailed
		if errors.As(err, &parseErr) {
			code = exitcodes.ParseFailed
		}
		return errext.WithExitCodeIfNone(err, code)
	}
	p.Logger.WithField("packages", packages).Debug("generated R.java files")
	return nil
}

// publish copies the finished artifacts from the temporary workspace onto
// their declared output paths.
func (p *Pipeline) publish(resourceZip, allResourcesZip, srcjar, srcjarDir, rTxtPath string, opts Options) error {
	if err := fsext.CopyFile(p.FS, resourceZip, opts.ResourceZipOut); err != nil {
		return fmt.Errorf("publishing resource zip: %w", err)
	}
	if allResourcesZip != "" {
		if err := fsext.CopyFile(p.FS, allResourcesZip, opts.AllResourcesZipOut); err != nil {
			return fmt.Errorf("publishing all-resources zip: %w", err)
		}
	}
	if opts.RDir != "" {
		if err := p.FS.RemoveAll(opts.RDir); err != nil {
			return err
		}
		if err := fsext.CopyTree(p.FS, srcjarDir, opts.RDir); err != nil {
			return fmt.Errorf("publishing R dir: %w", err)
		}
	} else if err := fsext.CopyFile(p.FS, srcjar, opts.SrcjarOut); err != nil {
		return fmt.Errorf("publishing srcjar: %w", err)
	}
	if opts.RTextOut != "" {
		if err := fsext.CopyFile(p.FS, rTxtPath, opts.RTextOut); err != nil {
			return fmt.Errorf("publishing R.txt: %w", err)
		}
	}
	return nil
}
