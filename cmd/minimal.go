package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var minimalOverwrite bool

var minimalCmd = &cobra.Command{
	Use:   "minimal <output-file>",
	Short: "Write a minimal masterlist",
	Long: `Write a reduced masterlist keeping only the plugins that carry Bash Tag
suggestions or cleaning data, and only those fields, for consumption by
downstream patch tools.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}

		if err := s.db.WriteMinimalList(args[0], minimalOverwrite); err != nil {
			return fmt.Errorf("failed to write minimal list: %w", err)
		}
		fmt.Printf("Minimal list written to %s\n", args[0])
		return nil
	},
}

func init() {
	minimalCmd.Flags().BoolVar(&minimalOverwrite, "overwrite", false, "Overwrite an existing output file")
	rootCmd.AddCommand(minimalCmd)
}
