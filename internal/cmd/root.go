package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dosanma1/webforge/internal/buildinfo"
)

var rootCmd = &cobra.Command{
	Use:   "webforge",
	Short: "Webforge CLI - Browser application build orchestration",
	Long: `Webforge orchestrates bundler builds for browser applications declared
in webforge.json: it assembles the bundler configuration, runs the build,
and post-processes output (cleaning, service worker manifests).`,
	Version: buildinfo.Version,
}

func Execute() error {
	return rootCmd.Execute()
}
