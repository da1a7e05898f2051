package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sadopc/timetracer/internal/store"
)

// errAborted is returned when the user declines the import prompt.
var errAborted = errors.New("import aborted")

func huhConfirm(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Import").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}

func newImportCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file|json>",
		Short: "Validate a log (or JSON records) and store it in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			days, errs, err := e.load(path)
			if err != nil {
				return err
			}
			if err := printFindings(e.errOut, path, errs); err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(e.out, mutedStyle.Render("nothing to import"))
				return nil
			}

			if !yes {
				title := fmt.Sprintf("Import %d days (%s to %s)?",
					len(days), days[0].Headers.Date, days[len(days)-1].Headers.Date)
				ok, err := e.confirm(title)
				if err != nil {
					return fmt.Errorf("confirm import: %w", err)
				}
				if !ok {
					return errAborted
				}
			}

			s, err := e.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			imp, err := s.Import(cmd.Context(), days, path)
			if errors.Is(err, store.ErrDayExists) {
				return fmt.Errorf("%w (nothing was written)", err)
			}
			if err != nil {
				return err
			}
			e.metrics.ObserveImport(imp)
			e.logger.Info("imported", "batch", imp.ID, "days", imp.DayCount, "activities", imp.ActivityCount,
				"project_lookups", imp.ProjectLookups, "project_inserts", imp.ProjectInserts)
			fmt.Fprintf(e.out, "%s %d days, %d activities (batch %s)\n",
				successStyle.Render("imported"), imp.DayCount, imp.ActivityCount, imp.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Import without asking")
	return cmd
}
