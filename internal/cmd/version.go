package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosanma1/webforge/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("webforge %s\n", buildinfo.Version)

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		if sha := buildinfo.CommitSHA(cwd); sha != "" {
			fmt.Printf("workspace commit: %s", sha)
			if when := buildinfo.CommitTime(cwd); when != "" {
				fmt.Printf(" (%s)", when)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
