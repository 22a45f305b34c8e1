package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// toolchainCmd only verifies (installing if needed) the toolchain.
var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "Verify or install arduino-cli with the board core",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exe, err := newInstaller(newRunner(), newFetcher()).Verify(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), exe)
		return nil
	},
}
