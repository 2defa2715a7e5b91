package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the known Bash Tags",
	Long:  `List the union of the masterlist's and userlist's known Bash Tag names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}

		tags := s.db.GetKnownBashTags()
		if len(tags) == 0 {
			fmt.Println("No known Bash Tags")
			return nil
		}
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
