package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Resolver maps category paths ("a_b_c") to project ids, creating one row
// per missing segment. Resolved prefixes are cached for the resolver's
// lifetime, which is one import.
type Resolver struct {
	q       querier
	cache   map[string]int64
	lookups int
	inserts int
}

func NewResolver(q querier) *Resolver {
	return &Resolver{q: q, cache: make(map[string]int64)}
}

// Resolve returns the id of the last segment of path.
func (r *Resolver) Resolve(ctx context.Context, path string) (int64, error) {
	segs := strings.Split(path, "_")
	var (
		parent any
		id     int64
	)
	for i, seg := range segs {
		if seg == "" {
			return 0, fmt.Errorf("resolve project %q: empty segment", path)
		}
		prefix := strings.Join(segs[:i+1], "_")
		if cached, ok := r.cache[prefix]; ok {
			id, parent = cached, cached
			continue
		}

		r.lookups++
		err := r.q.QueryRowContext(ctx,
			`SELECT id FROM projects WHERE name = ? AND parent_id IS ?`, seg, parent,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			res, err := r.q.ExecContext(ctx, `INSERT INTO projects (name, parent_id) VALUES (?, ?)`, seg, parent)
			if err != nil {
				return 0, fmt.Errorf("insert project %q: %w", prefix, err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return 0, fmt.Errorf("insert project %q: %w", prefix, err)
			}
			r.inserts++
		} else if err != nil {
			return 0, fmt.Errorf("lookup project %q: %w", prefix, err)
		}
		r.cache[prefix] = id
		parent = id
	}
	return id, nil
}

// Lookups is the number of database lookups made so far.
func (r *Resolver) Lookups() int { return r.lookups }

// Inserts is the number of project rows created so far.
func (r *Resolver) Inserts() int { return r.inserts }

func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parent_id FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		var parent sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &parent); err != nil {
			return nil, err
		}
		if parent.Valid {
			v := parent.Int64
			p.ParentID = &v
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectPaths returns the full category path of every project.
func (s *Store) ProjectPaths(ctx context.Context) (map[int64]string, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	paths := make(map[int64]string, len(projects))
	var walk func(id int64, depth int) string
	walk = func(id int64, depth int) string {
		if path, ok := paths[id]; ok {
			return path
		}
		p, ok := byID[id]
		if !ok || depth > len(byID) {
			return ""
		}
		path := p.Name
		if p.ParentID != nil {
			path = walk(*p.ParentID, depth+1) + "_" + p.Name
		}
		paths[id] = path
		return path
	}
	for id := range byID {
		walk(id, 0)
	}
	return paths, nil
}
