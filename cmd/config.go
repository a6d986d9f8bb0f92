package cmd

import (
	"fmt"

	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/spf13/cobra"
)

var overwriteConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var writeDefaultCmd = &cobra.Command{
	Use:   "write-default",
	Short: "Write the effective configuration to the --conf path",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Instance()
		if err := cfg.WriteDefault(cfg.Path(), overwriteConfig); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config written to", cfg.Path())
		return nil
	},
}

func init() {
	writeDefaultCmd.Flags().BoolVar(&overwriteConfig, "overwrite", false, "Replace an existing file")
	configCmd.AddCommand(writeDefaultCmd)
}
