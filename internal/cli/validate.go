package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check source logs for structural errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				lines, errs := e.validateSource(path)
				e.metrics.ObserveFindings(errs)
				if err := printFindings(e.out, path, errs); err != nil {
					failed = true
					continue
				}
				if errs.Len() == 0 {
					fmt.Fprintf(e.out, "%s: %s (%d lines)\n", path, successStyle.Render("ok"), len(lines))
				}
			}
			if failed {
				return ErrFindings
			}
			return nil
		},
	}
}
