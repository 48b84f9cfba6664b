package symbols

import (
	"fmt"
	"sort"
)

// Key identifies a resource uniquely within one symbol table.
type Key struct {
	ResourceType string
	Name         string
}

// CanonicalTable maps each (resourceType, name) pair to the single
// authoritative entry for the current build. It is built once from the main
// R.txt and read-only afterwards.
type CanonicalTable map[Key]Entry

// NewCanonicalTable builds the canonical map from the main table's entries.
// aapt never emits duplicate (type, name) pairs, so a collision means the
// table is corrupt rather than something to resolve last-wins.
func NewCanonicalTable(entries []Entry) (CanonicalTable, error) {
	table := make(CanonicalTable, len(entries))
	for _, e := range entries {
		k := Key{e.ResourceType, e.Name}
		if prev, ok := table[k]; ok {
			return nil, fmt.Errorf("duplicate canonical entry %s/%s (%q vs %q)",
				e.ResourceType, e.Name, prev.Value, e.Value)
		}
		table[k] = e
	}
	return table, nil
}

// Package pairs a Java package namespace with the entries of its own,
// possibly stale-valued, R.txt table.
type Package struct {
	Name    string
	Entries []Entry
}

// Resolved holds one namespace's entries grouped by resource type, with
// every value re-resolved against the canonical table.
type Resolved map[string][]Entry

// Kinds returns the grouped resource types in sorted order, for reproducible
// generation.
func (r Resolved) Kinds() []string {
	kinds := make([]string, 0, len(r))
	for k := range r {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DuplicateNamespaceError reports a package namespace supplied twice; each
// namespace must map to exactly one generated source file.
type DuplicateNamespaceError struct {
	Namespace string
}

func (e *DuplicateNamespaceError) Error() string {
	return fmt.Sprintf("package name %q appeared twice; all resource targets "+
		"must use unique package names, or no package name at all", e.Namespace)
}

// KeyMissingError reports a package table referencing a resource that is
// absent from the canonical table, which indicates a stale or inconsistent
// dependency (e.g. a removed resource).
type KeyMissingError struct {
	Namespace    string
	ResourceType string
	Name         string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("resource %s/%s from package %q is not in the main symbol table",
		e.ResourceType, e.Name, e.Namespace)
}

// Merge re-resolves each package's entries against the canonical table. The
// package tables have the wrong values at this point; they only decide which
// resources belong to a namespace, while the canonical table supplies the
// values.
func Merge(canonical CanonicalTable, packages []Package) (map[string]Resolved, error) {
	byPackage := make(map[string]Resolved, len(packages))
	for _, pkg := range packages {
		if _, ok := byPackage[pkg.Name]; ok {
			return nil, &DuplicateNamespaceError{Namespace: pkg.Name}
		}
		resolved := make(Resolved)
		for _, e := range pkg.Entries {
			canon, ok := canonical[Key{e.ResourceType, e.Name}]
			if !ok {
				return nil, &KeyMissingError{
					Namespace:    pkg.Name,
					ResourceType: e.ResourceType,
					Name:         e.Name,
				}
			}
			resolved[canon.ResourceType] = append(resolved[canon.ResourceType], canon)
		}
		byPackage[pkg.Name] = resolved
	}
	return byPackage, nil
}
