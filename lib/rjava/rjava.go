// Package rjava renders R.java source files from resolved symbol tables.
//
// In the default mode every field is a final constant holding its build-time
// resource ID. In shared mode (shared resources or app-as-shared-lib) the
// IDs are only finalized at runtime, so fields are non-final and the class
// gains an onResourcesLoaded routine that rebases every ID onto a late-bound
// package id.
package rjava

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"go.resproc.io/resproc/lib/symbols"
)

// Header is required verbatim by downstream tooling that checks for
// generated files.
const Header = "/* AUTO-GENERATED FILE.  DO NOT MODIFY. */"

// Generate renders the contents of one package's R.java.
func Generate(pkg string, res symbols.Resolved, shared bool) string {
	var b strings.Builder
	b.WriteString(Header + "\n\n")
	fmt.Fprintf(&b, "package %s;\n\n", pkg)
	b.WriteString("public final class R {\n")

	kinds := res.Kinds()
	for _, kind := range kinds {
		fmt.Fprintf(&b, "    public static final class %s {\n", kind)
		for _, e := range res[kind] {
			if shared {
				fmt.Fprintf(&b, "        public static %s %s = %s;\n", e.JavaType, e.Name, e.Value)
			} else {
				fmt.Fprintf(&b, "        public static final %s %s = %s;\n", e.JavaType, e.Name, e.Value)
			}
		}
		b.WriteString("    }\n")
	}

	if shared {
		b.WriteString("    public static void onResourcesLoaded(int packageId) {\n")
		// Two passes: scalars first, then arrays. Array patching needs a
		// runtime length probe, scalar patching does not. Scalar styleable
		// fields are indices into the styleable arrays, not resource IDs,
		// so they are left alone; styleable arrays hold attr IDs and are
		// patched like any other array.
		for _, kind := range kinds {
			for _, e := range res[kind] {
				if kind == "styleable" || e.IsArray() {
					continue
				}
				// Keep each assignment on one line to make diffing against
				// regular aapt-generated files easier.
				fmt.Fprintf(&b, "        %s.%s = (%s.%s & 0x00ffffff) | (packageId << 24);\n",
					kind, e.Name, kind, e.Name)
			}
		}
		for _, kind := range kinds {
			for _, e := range res[kind] {
				if !e.IsArray() {
					continue
				}
				fmt.Fprintf(&b, "        for(int i = 0; i < %s.%s.length; ++i) {\n", kind, e.Name)
				fmt.Fprintf(&b, "            %s.%s[i] = (%s.%s[i] & 0x00ffffff) | (packageId << 24);\n",
					kind, e.Name, kind, e.Name)
				b.WriteString("        }\n")
			}
		}
		b.WriteString("    }\n")
	}

	b.WriteString("}\n")
	return b.String()
}

// WriteRFiles generates one R.java per package under srcDir. The packages'
// own R.txt files decide which resources belong to each namespace, while the
// main R.txt supplies the values.
func WriteRFiles(fs afero.Fs, srcDir, mainRTxt string, packages, rtxtFiles []string, shared bool) error {
	if len(packages) != len(rtxtFiles) {
		return fmt.Errorf("need one R.txt file per package, got %d packages and %d files",
			len(packages), len(rtxtFiles))
	}

	mainEntries, err := symbols.ParseFile(fs, mainRTxt)
	if err != nil {
		return err
	}
	canonical, err := symbols.NewCanonicalTable(mainEntries)
	if err != nil {
		return err
	}

	pkgs := make([]symbols.Package, 0, len(packages))
	for i, pkg := range packages {
		entries, err := symbols.ParseFile(fs, rtxtFiles[i])
		if err != nil {
			return err
		}
		pkgs = append(pkgs, symbols.Package{Name: pkg, Entries: entries})
	}

	resolved, err := symbols.Merge(canonical, pkgs)
	if err != nil {
		return err
	}

	for pkg, res := range resolved {
		dir := filepath.Join(append([]string{srcDir}, strings.Split(pkg, ".")...)...)
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(dir, "R.java")
		if err := afero.WriteFile(fs, path, []byte(Generate(pkg, res, shared)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
