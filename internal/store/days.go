package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

func dayQuery(where string) string {
	return `SELECT d.date, d.status, d.exercise, d.sleep, d.remark, d.getup_time, ` +
		"d." + strings.Join(statColumns, ", d.") + `,
		       (SELECT COUNT(*) FROM activities a WHERE a.date = d.date)
		FROM days d ` + where
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(sc scanner) (model.Day, error) {
	var (
		d                       model.Day
		status, exercise, sleep int
		getup                   sql.NullString
		stats                   = make([]int64, len(statColumns))
	)
	dest := []any{&d.Headers.Date, &status, &exercise, &sleep, &d.Headers.Remark, &getup}
	for i := range stats {
		dest = append(dest, &stats[i])
	}
	dest = append(dest, &d.Headers.ActivityCount)
	if err := sc.Scan(dest...); err != nil {
		return d, err
	}

	d.Headers.Status = status == 1
	d.Headers.Exercise = exercise == 1
	d.Headers.Sleep = sleep == 1
	d.Headers.Getup = model.NullTime
	if getup.Valid {
		d.Headers.Getup = getup.String
	}
	for i, b := range model.Buckets {
		d.GeneratedStats.Add(b, stats[i])
	}
	return d, nil
}

// GetDay loads one day with its activities. Activity categories are rebuilt
// from the project table.
func (s *Store) GetDay(ctx context.Context, date string) (*model.Day, error) {
	d, err := scanDay(s.db.QueryRowContext(ctx, dayQuery(`WHERE d.date = ?`), date))
	if err != nil {
		return nil, fmt.Errorf("get day %s: %w", date, err)
	}

	acts, err := s.ListActivities(ctx, ActivityFilter{From: date, To: date})
	if err != nil {
		return nil, err
	}
	d.Activities = make([]model.Activity, 0, len(acts))
	for _, a := range acts {
		d.Activities = append(d.Activities, a.toModel())
	}
	return &d, nil
}

// ListDays returns day headers and stats (no activities) for the inclusive
// date range; empty bounds are open.
func (s *Store) ListDays(ctx context.Context, from, to string) ([]model.Day, error) {
	where := `WHERE 1=1`
	var args []any
	if from != "" {
		where += ` AND d.date >= ?`
		args = append(args, from)
	}
	if to != "" {
		where += ` AND d.date <= ?`
		args = append(args, to)
	}
	rows, err := s.db.QueryContext(ctx, dayQuery(where+` ORDER BY d.date`), args...)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []model.Day
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// LoadDays is ListDays with the activities of every day attached.
func (s *Store) LoadDays(ctx context.Context, from, to string) ([]model.Day, error) {
	days, err := s.ListDays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	acts, err := s.ListActivities(ctx, ActivityFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]model.Activity)
	for _, a := range acts {
		byDate[a.Date] = append(byDate[a.Date], a.toModel())
	}
	for i := range days {
		days[i].Activities = byDate[days[i].Headers.Date]
	}
	return days, nil
}
