package rjava

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.resproc.io/resproc/lib/symbols"
)

func resolvedFixture(t *testing.T) symbols.Resolved {
	t.Helper()
	canonical, err := symbols.NewCanonicalTable([]symbols.Entry{
		{JavaType: "int", ResourceType: "string", Name: "app_name", Value: "0x7f040000"},
		{JavaType: "int", ResourceType: "drawable", Name: "icon", Value: "0x7f020000"},
		{JavaType: "int[]", ResourceType: "styleable", Name: "MyView", Value: "{ 0x7f010000, 0x7f010001 }"},
		{JavaType: "int", ResourceType: "styleable", Name: "MyView_bar", Value: "1"},
	})
	require.NoError(t, err)

	pkg := symbols.Package{Name: "org.chromium.ui", Entries: []symbols.Entry{
		{JavaType: "int", ResourceType: "string", Name: "app_name", Value: "0x0"},
		{JavaType: "int", ResourceType: "drawable", Name: "icon", Value: "0x0"},
		{JavaType: "int[]", ResourceType: "styleable", Name: "MyView", Value: "{ 0x0 }"},
		{JavaType: "int", ResourceType: "styleable", Name: "MyView_bar", Value: "0"},
	}}
	resolved, err := symbols.Merge(canonical, []symbols.Package{pkg})
	require.NoError(t, err)
	return resolved["org.chromium.ui"]
}

// requireEqualText fails with a unified diff, which is much easier to read
// than testify's one-line mismatch for whole generated files.
func requireEqualText(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	require.NoError(t, err)
	t.Fatalf("generated source mismatch:\n%s", diff)
}

func TestGenerateFinal(t *testing.T) {
	got := Generate("org.chromium.ui", resolvedFixture(t), false)

	want := `/* AUTO-GENERATED FILE.  DO NOT MODIFY. */

package org.chromium.ui;

public final class R {
    public static final class drawable {
        public static final int icon = 0x7f020000;
    }
    public static final class string {
        public static final int app_name = 0x7f040000;
    }
    public static final class styleable {
        public static final int[] MyView = { 0x7f010000, 0x7f010001 };
        public static final int MyView_bar = 1;
    }
}
`
	requireEqualText(t, want, got)
}

func TestGenerateShared(t *testing.T) {
	got := Generate("org.chromium.ui", resolvedFixture(t), true)

	want := `/* AUTO-GENERATED FILE.  DO NOT MODIFY. */

package org.chromium.ui;

public final class R {
    public static final class drawable {
        public static int icon = 0x7f020000;
    }
    public static final class string {
        public static int app_name = 0x7f040000;
    }
    public static final class styleable {
        public static int[] MyView = { 0x7f010000, 0x7f010001 };
        public static int MyView_bar = 1;
    }
    public static void onResourcesLoaded(int packageId) {
        drawable.icon = (drawable.icon & 0x00ffffff) | (packageId << 24);
        string.app_name = (string.app_name & 0x00ffffff) | (packageId << 24);
        for(int i = 0; i < styleable.MyView.length; ++i) {
            styleable.MyView[i] = (styleable.MyView[i] & 0x00ffffff) | (packageId << 24);
        }
    }
}
`
	requireEqualText(t, want, got)
}

func TestGenerateSharedPatchRules(t *testing.T) {
	got := Generate("org.chromium.ui", resolvedFixture(t), true)

	// Scalar styleable fields are indices, not resource IDs; they must not
	// be patched. Styleable arrays hold attr IDs and must be.
	assert.NotContains(t, got, "styleable.MyView_bar = (")
	assert.Contains(t, got, "styleable.MyView[i] = (styleable.MyView[i] & 0x00ffffff) | (packageId << 24);")

	// All scalar patch statements come before any array patch loop.
	scalarPatch := strings.Index(got, "string.app_name = (")
	arrayPatch := strings.Index(got, "for(int i = 0;")
	require.GreaterOrEqual(t, scalarPatch, 0)
	require.GreaterOrEqual(t, arrayPatch, 0)
	assert.Less(t, scalarPatch, arrayPatch)
}

func TestWriteRFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "gen/R.txt", []byte(
		"int string app_name 0x7f040000\n"+
			"int drawable icon 0x7f020000\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "ui.R.txt", []byte(
		"int string app_name 0x0\n"), 0o644))

	t.Run("WritesPerPackage", func(t *testing.T) {
		err := WriteRFiles(fs, "java", "gen/R.txt",
			[]string{"org.chromium.ui", "org.chromium.base"},
			[]string{"ui.R.txt", "gen/R.txt"}, false)
		require.NoError(t, err)

		ui, err := afero.ReadFile(fs, "java/org/chromium/ui/R.java")
		require.NoError(t, err)
		assert.Contains(t, string(ui), "package org.chromium.ui;")
		assert.Contains(t, string(ui), "public static final int app_name = 0x7f040000;")
		assert.NotContains(t, string(ui), "icon")

		base, err := afero.ReadFile(fs, "java/org/chromium/base/R.java")
		require.NoError(t, err)
		assert.Contains(t, string(base), "public static final int icon = 0x7f020000;")
	})

	t.Run("PackageFileMismatch", func(t *testing.T) {
		err := WriteRFiles(fs, "java", "gen/R.txt", []string{"a", "b"}, []string{"ui.R.txt"}, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one R.txt file per package")
	})

	t.Run("StaleReference", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "stale.R.txt", []byte(
			"int string gone 0x0\n"), 0o644))
		err := WriteRFiles(fs, "java", "gen/R.txt",
			[]string{"org.chromium.stale"}, []string{"stale.R.txt"}, false)
		var missErr *symbols.KeyMissingError
		require.ErrorAs(t, err, &missErr)
	})
}
