package symbols

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, fs afero.Fs, path, contents string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(contents), 0o644))
}

func TestParseFile(t *testing.T) {
	t.Run("FileOrder", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTable(t, fs, "R.txt", strings.Join([]string{
			"int string app_name 0x7f040000",
			"int drawable icon 0x7f020000",
			"int[] styleable MyView { 0x7f010000, 0x7f010001 }",
			"int styleable MyView_bar 1",
			"",
			"int id main 0x7f050000",
		}, "\n")+"\n")

		entries, err := ParseFile(fs, "R.txt")
		require.NoError(t, err)
		require.Len(t, entries, 5)

		assert.Equal(t, Entry{"int", "string", "app_name", "0x7f040000"}, entries[0])
		assert.Equal(t, Entry{"int", "drawable", "icon", "0x7f020000"}, entries[1])
		assert.Equal(t, Entry{"int[]", "styleable", "MyView", "{ 0x7f010000, 0x7f010001 }"}, entries[2])
		assert.Equal(t, Entry{"int", "styleable", "MyView_bar", "1"}, entries[3])
		assert.Equal(t, Entry{"int", "id", "main", "0x7f050000"}, entries[4])

		assert.True(t, entries[2].IsArray())
		assert.False(t, entries[3].IsArray())
	})

	t.Run("RoundTrip", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		lines := []string{
			"int anim abc_fade_in 0x7f010000",
			"int[] styleable ActionBar { 0x7f020000, 0x7f020001, 0x7f020002 }",
			"int styleable ActionBar_background 0",
		}
		writeTable(t, fs, "R.txt", strings.Join(lines, "\n")+"\n")

		entries, err := ParseFile(fs, "R.txt")
		require.NoError(t, err)
		serialized := make([]string, len(entries))
		for i, e := range entries {
			serialized[i] = e.String()
		}
		assert.Equal(t, lines, serialized)
	})

	t.Run("MalformedLine", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTable(t, fs, "R.txt", "int drawable icon 0x7f020000\nbogus line here\n")

		_, err := ParseFile(fs, "R.txt")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "bogus line here", parseErr.Line)
		assert.Contains(t, err.Error(), "bogus line here")
	})

	t.Run("MissingValue", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTable(t, fs, "R.txt", "int drawable icon\n")

		_, err := ParseFile(fs, "R.txt")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("MissingFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		_, err := ParseFile(fs, "nope.txt")
		require.Error(t, err)
	})

	t.Run("Empty", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTable(t, fs, "R.txt", "")
		entries, err := ParseFile(fs, "R.txt")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
