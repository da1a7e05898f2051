package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

func (s *Store) ListActivities(ctx context.Context, f ActivityFilter) ([]Activity, error) {
	query := `SELECT logical_id, date, start_ts, end_ts, start_time, end_time, project_id, duration, remark
	          FROM activities WHERE 1=1`
	var args []any

	if f.From != "" {
		query += ` AND date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND date <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY logical_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var acts []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.LogicalID, &a.Date, &a.StartTS, &a.EndTS, &a.StartTime, &a.EndTime,
			&a.ProjectID, &a.Duration, &a.Remark); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	paths, err := s.ProjectPaths(ctx)
	if err != nil {
		return nil, err
	}
	out := acts[:0]
	for _, a := range acts {
		a.Path = paths[a.ProjectID]
		if f.Project != "" && !underPath(a.Path, f.Project) {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// ProjectTotals sums durations per project over the inclusive date range.
func (s *Store) ProjectTotals(ctx context.Context, from, to string) ([]ProjectTotal, error) {
	query := `SELECT project_id, COALESCE(SUM(duration), 0), COUNT(*) FROM activities WHERE 1=1`
	var args []any
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` GROUP BY project_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("project totals: %w", err)
	}
	defer rows.Close()

	var totals []ProjectTotal
	for rows.Next() {
		var pt ProjectTotal
		if err := rows.Scan(&pt.ProjectID, &pt.TotalSeconds, &pt.ActivityCount); err != nil {
			return nil, err
		}
		totals = append(totals, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	paths, err := s.ProjectPaths(ctx)
	if err != nil {
		return nil, err
	}
	for i := range totals {
		totals[i].Path = paths[totals[i].ProjectID]
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Path < totals[j].Path })
	return totals, nil
}

func underPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"_")
}
