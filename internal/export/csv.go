package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/timetracer/internal/model"
)

// ToCSV writes one row per activity of days to path.
func ToCSV(days []model.Day, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, days)
}

func WriteCSV(out io.Writer, days []model.Day) error {
	w := csv.NewWriter(out)

	// Header
	if err := w.Write([]string{"Date", "ID", "Activity", "Start", "End", "Duration (s)", "Duration", "Remark"}); err != nil {
		return err
	}

	for _, d := range days {
		for _, a := range d.Activities {
			row := []string{
				d.Headers.Date,
				fmt.Sprintf("%d", a.LogicalID),
				a.Category.Path(),
				a.StartTime,
				a.EndTime,
				fmt.Sprintf("%d", a.DurationSeconds),
				FormatDuration(a.DurationSeconds),
				a.Remark,
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
