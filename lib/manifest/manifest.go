// Package manifest extracts the bits of AndroidManifest.xml the resource
// pipeline needs.
package manifest

import (
	"encoding/xml"
	"fmt"

	"github.com/spf13/afero"
)

type manifestRoot struct {
	XMLName xml.Name
	Package string `xml:"package,attr"`
}

// ExtractPackage returns the package attribute of the manifest's root
// element.
func ExtractPackage(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", err
	}
	var root manifestRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return root.Package, nil
}
