package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check <json>",
		Short: "Validate converted JSON day records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			days, errs, err := e.loadJSON(path)
			if err != nil {
				return err
			}
			if err := printFindings(e.out, path, errs); err != nil {
				return err
			}
			if errs.Len() == 0 {
				fmt.Fprintf(e.out, "%s: %s (%d days)\n", path, successStyle.Render("ok"), len(days))
			}
			return nil
		},
	}
}
