package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/ui/styles"
)

var updateCmd = &cobra.Command{
	Use:   "update <remote-url> <branch>",
	Short: "Update the masterlist from its repository",
	Long: `Fetch the masterlist repository and fast-forward it to the named branch.

The masterlist file's parent directory is used as the working copy; it is
cloned on first use. Local modifications to the working copy block the
update.

Examples:
  loadstone update https://example.com/masterlist.git v0.13`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}

		changed, err := s.db.UpdateMasterlist(cmd.Context(), masterlistPath, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to update masterlist: %w", err)
		}

		if changed {
			fmt.Println(styles.SuccessText.Render("Masterlist updated"))
		} else {
			fmt.Println("Masterlist is already up to date")
		}

		if info, err := s.db.GetMasterlistRevision(masterlistPath, true); err == nil {
			fmt.Printf("Revision: %s (%s)\n", info.RevisionID, info.RevisionDate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
