package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"go.resproc.io/resproc/errext"
	"go.resproc.io/resproc/errext/exitcodes"
	"go.resproc.io/resproc/lib/aapt"
	"go.resproc.io/resproc/lib/pipeline"
	"go.resproc.io/resproc/lib/v14"
)

func getProcessCmd(ctx context.Context, logger *logrus.Logger) *cobra.Command {
	// processCmd represents the process command
	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Merge symbol tables, generate R.java and package resources",
		Long: `Merge symbol tables, generate R.java and package resources.

Resolves every package namespace's R.txt against the canonical symbol table
produced by aapt, generates one R.java per namespace, crunches image
resources and assembles the final resource zip (optionally plus an
aggregate zip that also contains the dependency resources).`,
		Example: `
  # Process a library's resources into a srcjar and a resource zip.
  resproc process --aapt-path=/sdk/aapt --android-sdk-jar=/sdk/android.jar \
      --android-manifest=AndroidManifest.xml --resource-dirs=res \
      --srcjar-out=out/R.srcjar --resource-zip-out=out/resources.zip --v14-skip`[1:],
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := getConfig(cmd.Flags())
			if err != nil {
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
			}
			if err := conf.Validate(); err != nil {
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
			}

			tool := &aapt.Tool{Path: conf.AAPTPath, Logger: logger}
			p := &pipeline.Pipeline{
				FS:       afero.NewOsFs(),
				Logger:   logger,
				Packager: tool,
				Cruncher: tool,
				V14:      &v14.Tool{Path: conf.V14ToolPath, Logger: logger},
			}
			return p.Run(ctx, conf.pipelineOptions())
		},
	}

	processCmd.Flags().SortFlags = false
	processCmd.Flags().AddFlagSet(processCmdFlagSet())

	return processCmd
}
