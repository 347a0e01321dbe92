package versioncmder

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/visorx/pkg/chatclient"
)

// Version is set at build time with -ldflags "-X ...versioncmder.Version=...".
var Version = "dev"

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the VisorX version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "visorx %s (%s, default model %s)\n",
				Version, runtime.Version(), chatclient.DefaultModel)
			return nil
		},
	}
}
