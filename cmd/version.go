package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.resproc.io/resproc/lib/consts"
)

func getVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resproc v%s\n", consts.Version)
		},
	}
}
