package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/harilal/tradetoggle/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the ttctl version and build target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "ttctl %s %s/%s\n",
				version.Version, runtime.GOOS, runtime.GOARCH)
			return err
		},
	}
}
