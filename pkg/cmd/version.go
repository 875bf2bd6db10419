package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/c9s/ordmap/pkg/version"
)

func init() {
	VersionCmd.Flags().Bool("short", false, "print the version name only")
	RootCmd.AddCommand(VersionCmd)
}

var VersionCmd = &cobra.Command{
	Use:          "version",
	Short:        "show version name",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}

		if short {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ordmap %s %s/%s %s\n", version.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		return nil
	},
}
