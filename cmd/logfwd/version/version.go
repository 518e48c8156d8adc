package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

var Version = "0.0.0"

var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of logfwd",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logfwd version: %s\nhttps://github.com/txn2/logfwd\n", Version)
	},
}
