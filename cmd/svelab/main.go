package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"svelab/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "svelab",
	Short: "SystemVerilog elaboration front-end",
	Long:  "svelab elaborates SystemVerilog designs and reports semantic diagnostics",
}

func main() {
	rootCmd.Version = version.Full()

	rootCmd.AddCommand(elaborateCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "path to svelab.toml (default: search upward)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// useColor resolves the --color flag against tty detection.
func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}
