// Package symbols handles aapt R.txt symbol tables: parsing, canonical value
// resolution and per-package merging.
package symbols

import (
	"bufio"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
)

// lineRE matches one R.txt entry of the shape
// "<javaType> <resourceType> <name> <value>". The value may contain internal
// whitespace (array literals like "{ 0x7f010001, 0x7f010002 }").
var lineRE = regexp.MustCompile(`^(int(?:\[\])?) (\w+) (\w+) (.+)$`)

// Entry represents a line from an R.txt file.
type Entry struct {
	JavaType     string
	ResourceType string
	Name         string
	Value        string
}

// IsArray reports whether the entry holds an array literal.
func (e Entry) IsArray() bool { return e.JavaType == "int[]" }

// String re-serializes the entry in R.txt line format.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s %s", e.JavaType, e.ResourceType, e.Name, e.Value)
}

// ParseError describes a malformed R.txt line. A corrupt table cannot be
// safely interpreted, so parsing always stops at the first bad line.
type ParseError struct {
	Path string
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected line in %s: %q", e.Path, e.Line)
}

// ParseFile reads an R.txt symbol table, returning its entries in file order.
func ParseFile(fs afero.Fs, path string) ([]Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, &ParseError{Path: path, Line: line}
		}
		entries = append(entries, Entry{
			JavaType:     m[1],
			ResourceType: m[2],
			Name:         m[3],
			Value:        m[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}
