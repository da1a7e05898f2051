package cli

import (
	"github.com/spf13/cobra"

	"github.com/sadopc/timetracer/internal/export"
)

func newConvertCmd(e *env) *cobra.Command {
	var outPath, csvPath string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a source log into JSON day records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			days, errs, err := e.convertFile(path)
			if err != nil {
				return err
			}
			if err := printFindings(e.errOut, path, errs); err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				if err := export.WriteJSON(e.out, days); err != nil {
					return err
				}
			} else if err := export.ToJSON(days, outPath); err != nil {
				return err
			}

			if csvPath != "" {
				if err := export.ToCSV(days, csvPath); err != nil {
					return err
				}
			}
			e.logger.Debug("convert done", "json", outPath, "csv", csvPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "JSON output file (default stdout)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write activities as CSV to this file")
	return cmd
}
