package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/timetracer/internal/model"
)

// ErrDayExists is returned when an import contains a date already stored.
var ErrDayExists = errors.New("day already imported")

// Import writes days, their activities and the project paths they use in a
// single transaction. Nothing is written if any row fails.
func (s *Store) Import(ctx context.Context, days []model.Day, source string) (*Import, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	imp := &Import{
		ID:         uuid.NewString(),
		Source:     source,
		ImportedAt: time.Now().UTC().Truncate(time.Second),
		DayCount:   len(days),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, imported_at, day_count) VALUES (?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.ImportedAt.Format(time.RFC3339), imp.DayCount,
	)
	if err != nil {
		return nil, fmt.Errorf("insert import: %w", err)
	}

	dayInsert := `INSERT INTO days (date, year, month, status, exercise, sleep, remark, getup_time, ` +
		strings.Join(statColumns, ", ") + `, import_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?` +
		strings.Repeat(", ?", len(statColumns)) + `, ?)`

	r := NewResolver(tx)
	for _, d := range days {
		date, err := d.Headers.Time()
		if err != nil {
			return nil, fmt.Errorf("import day: %w", err)
		}

		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM days WHERE date = ?`, d.Headers.Date).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check day %s: %w", d.Headers.Date, err)
		}
		if exists > 0 {
			return nil, fmt.Errorf("import day %s: %w", d.Headers.Date, ErrDayExists)
		}

		var getup any
		if d.Headers.Getup != "" && d.Headers.Getup != model.NullTime {
			getup = d.Headers.Getup
		}
		args := []any{
			d.Headers.Date, date.Year(), int(date.Month()),
			boolInt(d.Headers.Status), boolInt(d.Headers.Exercise), boolInt(d.Headers.Sleep),
			d.Headers.Remark, getup,
		}
		args = append(args, statsArgs(d.GeneratedStats)...)
		args = append(args, imp.ID)
		if _, err := tx.ExecContext(ctx, dayInsert, args...); err != nil {
			return nil, fmt.Errorf("insert day %s: %w", d.Headers.Date, err)
		}

		for _, a := range d.Activities {
			pid, err := r.Resolve(ctx, a.Category.Path())
			if err != nil {
				return nil, err
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO activities (logical_id, start_ts, end_ts, date, start_time, end_time, project_id, duration, remark)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.LogicalID, a.StartTimestamp, a.EndTimestamp, d.Headers.Date,
				a.StartTime, a.EndTime, pid, a.DurationSeconds, a.Remark,
			)
			if err != nil {
				return nil, fmt.Errorf("insert activity %d: %w", a.LogicalID, err)
			}
			imp.ActivityCount++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET activity_count = ? WHERE id = ?`, imp.ActivityCount, imp.ID,
	); err != nil {
		return nil, fmt.Errorf("update import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	imp.ProjectLookups = r.Lookups()
	imp.ProjectInserts = r.Inserts()
	return imp, nil
}

func (s *Store) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, imported_at, day_count, activity_count FROM imports ORDER BY imported_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var imports []Import
	for rows.Next() {
		var imp Import
		var importedAt string
		if err := rows.Scan(&imp.ID, &imp.Source, &importedAt, &imp.DayCount, &imp.ActivityCount); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, importedAt)
		if err != nil {
			return nil, fmt.Errorf("scan import %s: %w", imp.ID, err)
		}
		imp.ImportedAt = at
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}
