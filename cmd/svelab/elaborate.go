package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"svelab/internal/diagfmt"
	"svelab/internal/driver"
	"svelab/internal/project"
)

var elaborateCmd = &cobra.Command{
	Use:   "elaborate",
	Short: "Elaborate the design and report diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest(cmd)
		if err != nil {
			return err
		}

		noCache, _ := cmd.Flags().GetBool("no-cache")
		if !noCache {
			if snap := driver.LoadSnapshot(manifest.Dir); snap != nil && snap.UpToDate() {
				if snap.ErrorCount == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "up to date")
					return nil
				}
				// stale failures always re-run so diagnostics print
			}
		}

		res, err := driver.Run(context.Background(), manifest)
		if err != nil {
			return err
		}

		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:   useColor(cmd),
			Context: true,
		})

		if !noCache {
			if err := driver.SaveSnapshot(manifest.Dir, driver.BuildSnapshot(res)); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save snapshot: %v\n", err)
			}
		}

		if res.Bag.HasErrors() {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "elaborated %d top(s), %d diagnostic(s)\n",
			len(res.Compilation.GetRoot().TopInstances), res.Bag.Len())
		return nil
	},
}

func init() {
	elaborateCmd.Flags().Bool("no-cache", false, "skip the elaboration snapshot cache")
}

func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	path, _ := cmd.Flags().GetString("project")
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path, err = project.Find(wd)
		if err != nil {
			return nil, err
		}
	}
	return project.Load(path)
}
