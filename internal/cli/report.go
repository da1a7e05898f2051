package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/report"
)

type reportOpts struct {
	format string
	output string
}

func newReportCmd(e *env) *cobra.Command {
	var opts reportOpts
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render stored days as markdown, LaTeX, Typst or text",
	}
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "markdown", "markdown|latex|typst|text")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output file, or a directory for the default name (default stdout)")

	cmd.AddCommand(&cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "Report one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			if err := checkDate(date); err != nil {
				return err
			}
			f, format, err := formatter(opts.format)
			if err != nil {
				return err
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.GetDay(cmd.Context(), date)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := f.Day(&buf, *d); err != nil {
				return err
			}
			return e.writeReport(buf.Bytes(), opts.output, report.FileName(format, date, ""))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "period <from> <to>",
		Short: "Report totals and the project tree over an inclusive date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := args[0], args[1]
			if err := checkDate(from); err != nil {
				return err
			}
			if err := checkDate(to); err != nil {
				return err
			}
			if from > to {
				return fmt.Errorf("period start %s is after end %s", from, to)
			}
			f, format, err := formatter(opts.format)
			if err != nil {
				return err
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			days, err := s.ListDays(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			totals, err := s.ProjectTotals(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			tree := report.NewTree()
			for _, t := range totals {
				tree.Add(t.Path, t.TotalSeconds)
			}

			var buf bytes.Buffer
			if err := f.Period(&buf, report.Period{From: from, To: to, Days: days, Tree: tree}); err != nil {
				return err
			}
			return e.writeReport(buf.Bytes(), opts.output, report.FileName(format, from, to))
		},
	})
	return cmd
}

func checkDate(s string) error {
	_, err := model.Headers{Date: s}.Time()
	return err
}

func formatter(name string) (report.Formatter, report.Format, error) {
	format, err := report.ParseFormat(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := report.New(format)
	return f, format, err
}

// writeReport sends data to stdout, to output, or to defaultName inside
// output when output is a directory.
func (e *env) writeReport(data []byte, output, defaultName string) error {
	if output == "" || output == "-" {
		_, err := e.out.Write(data)
		return err
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, defaultName)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	e.logger.Info("report written", "path", output)
	return nil
}
