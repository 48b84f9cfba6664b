// Package v14 invokes the external generator that writes v14-compatible
// duplicates of resource files.
package v14

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Generator writes v14-compatible copies of one resource directory into an
// output directory. It is invoked once per resource directory.
type Generator interface {
	Generate(ctx context.Context, resDir, outDir string) error
}

// Tool runs an external generator binary as `<path> <resDir> <outDir>`.
type Tool struct {
	Path   string
	Logger logrus.FieldLogger
}

// Generate implements Generator.
func (t *Tool) Generate(ctx context.Context, resDir, outDir string) error {
	cmd := exec.CommandContext(ctx, t.Path, resDir, outDir)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	t.Logger.WithFields(logrus.Fields{"res": resDir, "out": outDir}).
		Debug("generating v14 compatible resources")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("v14 resource generation for %s: %w\n%s", resDir, err, stderr.String())
	}
	return nil
}
