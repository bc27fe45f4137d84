package cmd

import (
	"fmt"

	"BlackByte_Forum/internal/app"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recount post and reply counters and repair drifted rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			report, err := a.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forums: %d checked, %d fixed\nposts: %d checked, %d fixed\n",
				report.ForumsChecked, report.ForumsFixed, report.PostsChecked, report.PostsFixed)
			return nil
		})
	},
}
