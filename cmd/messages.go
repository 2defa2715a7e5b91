package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/metadata"
	"github.com/loadstone/loadstone/internal/ui/styles"
)

var (
	messagesEvaluate bool
	messagesLang     string
)

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Show the general messages",
	Long: `Show the masterlist's general messages followed by the userlist's.

With --evaluate, each message's condition is checked against the data
directory and load order, and failing messages are dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}

		messages, err := s.db.GetGeneralMessages(messagesEvaluate)
		if err != nil {
			return fmt.Errorf("failed to evaluate messages: %w", err)
		}

		if len(messages) == 0 {
			fmt.Println("No general messages")
			return nil
		}
		for _, m := range messages {
			content := m.Select(messagesLang)
			fmt.Printf("%s  %s\n", styles.FormatMessageType(m.Type.String()), content.Text)
		}
		return nil
	},
}

func init() {
	messagesCmd.Flags().BoolVar(&messagesEvaluate, "evaluate", false, "Evaluate message conditions")
	messagesCmd.Flags().StringVar(&messagesLang, "lang", metadata.DefaultLanguage, "Preferred message language")
	rootCmd.AddCommand(messagesCmd)
}
