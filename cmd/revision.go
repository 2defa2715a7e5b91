package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/metadata"
)

var revisionLong bool

var revisionCmd = &cobra.Command{
	Use:   "revision [branch]",
	Short: "Show the masterlist revision",
	Long: `Show the revision the masterlist working copy is at.

With a branch argument, also reports whether the working copy is at the
tip of that branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := metadata.GetInfo(masterlistPath, !revisionLong)
		if err != nil {
			return err
		}
		fmt.Printf("Revision: %s\nDate:     %s\n", info.RevisionID, info.RevisionDate)

		if len(args) == 1 {
			latest, err := metadata.IsLatest(cmd.Context(), masterlistPath, args[0])
			if err != nil {
				return err
			}
			if latest {
				fmt.Printf("Up to date with branch %s\n", args[0])
			} else {
				fmt.Printf("Behind branch %s\n", args[0])
			}
		}
		return nil
	},
}

func init() {
	revisionCmd.Flags().BoolVar(&revisionLong, "long", false, "Show the full revision id")
	rootCmd.AddCommand(revisionCmd)
}
