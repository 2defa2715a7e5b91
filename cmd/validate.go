package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/ui/styles"
)

var validateCmd = &cobra.Command{
	Use:   "validate <metadata-file>",
	Short: "Check a metadata file for errors",
	Long: `Parse a metadata file and report schema or condition errors.

A file is rejected for unknown keys, duplicate plugin entries, malformed
messages, undeclared or cyclic groups, and condition strings that fail to
parse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list := metadata.NewMetadataList()
		if err := list.Load(args[0]); err != nil {
			fmt.Println(styles.ErrorText.Render("Invalid: ") + err.Error())
			return err
		}
		if _, err := list.GroupGraph(); err != nil {
			fmt.Println(styles.ErrorText.Render("Invalid: ") + err.Error())
			return err
		}

		plugins := list.Plugins()
		fmt.Println(styles.SuccessText.Render("OK: ") + fmt.Sprintf(
			"%d plugin entries, %d global messages, %d known tags, %d groups",
			len(plugins), len(list.Messages()), len(list.BashTags()), len(list.Groups())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
