package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/ui/styles"
	"github.com/loadstone/loadstone/internal/xerr"
)

var sortApply bool

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Compute an optimised load order",
	Long: `Sort the installed plugins into an optimised load order.

The plugin set is read from the manifest; metadata comes from the
masterlist merged with the userlist. The computed order is printed, and
written back to the load order file with --apply.

Examples:
  loadstone sort --manifest plugins.yaml
  loadstone sort --manifest plugins.yaml --userlist userlist.yaml --apply`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(true)
		if err != nil {
			return err
		}

		order, err := s.db.SortPlugins()
		if err != nil {
			var cycle *xerr.CyclicInteractionError
			if errors.As(err, &cycle) {
				fmt.Println(styles.ErrorText.Render("Cyclic interaction detected:"))
				for _, v := range cycle.Cycle {
					fmt.Printf("  %s %s\n", v.Name, styles.MutedText.Render("["+string(v.OutRule)+"]"))
				}
			}
			return err
		}

		for i, name := range order {
			marker := "      "
			if plugin, ok := s.cache.Plugin(name); ok {
				marker = styles.FormatMasterFlag(plugin.IsMaster() && !plugin.IsLightPlugin())
			}
			fmt.Printf("%3d  %s  %s\n", i, marker, name)
		}

		if sortApply {
			if err := s.loadOrder.SetLoadOrder(order); err != nil {
				return err
			}
			fmt.Println(styles.SuccessText.Render("\nLoad order written"))
		}
		return nil
	},
}

func init() {
	sortCmd.Flags().BoolVar(&sortApply, "apply", false, "Write the computed order to the load order file")
	rootCmd.AddCommand(sortCmd)
}
