package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/sadopc/timetracer/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testDay builds a converted day whose activities run back to back from
// 08:00 in one-hour steps.
func testDay(date string, labels ...string) model.Day {
	t, _ := model.Headers{Date: date}.Time()
	base := t.Unix()
	num := int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())

	d := model.Day{Headers: model.Headers{Date: date, Getup: "08:00", ActivityCount: len(labels)}}
	for i, l := range labels {
		start := model.Clock((8 + i) * 60)
		end := model.Clock((9 + i) * 60)
		d.Activities = append(d.Activities, model.Activity{
			LogicalID:       num*10000 + int64(i+1),
			StartTimestamp:  base + int64(start)*60,
			EndTimestamp:    base + int64(end)*60,
			StartTime:       start.String(),
			EndTime:         end.String(),
			DurationSeconds: 3600,
			Category:        model.ParseCategory(l),
		})
		if d.Activities[i].Category.Top == "study" {
			d.Headers.Status = true
			d.GeneratedStats.StudyTime += 3600
		}
	}
	return d
}

func count(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/timetracer.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Import(context.Background(), []model.Day{testDay("2025-01-01", "study_code")}, "a.txt"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration does not run again.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if n := count(t, s2, "days"); n != 1 {
		t.Fatalf("expected 1 day after reopen, got %d", n)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Project resolver
// ============================================================

func TestResolveCreatesChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := NewResolver(s.db)

	id, err := r.Resolve(ctx, "exercise_cardio_run")
	if err != nil {
		t.Fatal(err)
	}
	if r.Inserts() != 3 || r.Lookups() != 3 {
		t.Fatalf("expected 3 lookups and 3 inserts, got %d/%d", r.Lookups(), r.Inserts())
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[int64]Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	p := byID[id]
	if p.Name != "run" || p.ParentID == nil {
		t.Fatalf("unexpected leaf: %+v", p)
	}
	parent := byID[*p.ParentID]
	if parent.Name != "cardio" || parent.ParentID == nil {
		t.Fatalf("unexpected parent: %+v", parent)
	}
	root := byID[*parent.ParentID]
	if root.Name != "exercise" || root.ParentID != nil {
		t.Fatalf("unexpected root: %+v", root)
	}
}

func TestResolveIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := NewResolver(s.db)

	first, err := r.Resolve(ctx, "study_code")
	if err != nil {
		t.Fatal(err)
	}
	lookups, inserts := r.Lookups(), r.Inserts()

	second, err := r.Resolve(ctx, "study_code")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("expected same id, got %d and %d", first, second)
	}
	if r.Lookups() != lookups || r.Inserts() != inserts {
		t.Fatal("second resolve should hit the cache")
	}
}

func TestResolveSharedPrefixInsertedOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := NewResolver(s.db)

	for _, path := range []string{"study_code", "study_math", "study"} {
		if _, err := r.Resolve(ctx, path); err != nil {
			t.Fatal(err)
		}
	}
	if r.Inserts() != 3 {
		t.Fatalf("expected 3 inserts (study, code, math), got %d", r.Inserts())
	}
	if n := count(t, s, "projects"); n != 3 {
		t.Fatalf("expected 3 projects, got %d", n)
	}
}

func TestResolveReusesRowsAcrossResolvers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := NewResolver(s.db).Resolve(ctx, "sleep_night")
	r := NewResolver(s.db)
	b, err := r.Resolve(ctx, "sleep_night")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected existing row %d, got %d", a, b)
	}
	if r.Inserts() != 0 || r.Lookups() != 2 {
		t.Fatalf("expected 2 lookups and no inserts, got %d/%d", r.Lookups(), r.Inserts())
	}
}

func TestResolveEmptySegment(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s.db)
	for _, path := range []string{"", "a__b", "a_"} {
		if _, err := r.Resolve(context.Background(), path); err == nil {
			t.Fatalf("expected error for %q", path)
		}
	}
}

func TestUniqueNameParent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO projects (name, parent_id) VALUES ('x', NULL)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`INSERT INTO projects (name, parent_id) VALUES ('x', NULL)`); err == nil {
		t.Fatal("expected unique violation for duplicate root")
	}
}

func TestProjectPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := NewResolver(s.db)
	id, _ := r.Resolve(ctx, "routine_grooming_quick")
	root, _ := r.Resolve(ctx, "routine")

	paths, err := s.ProjectPaths(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if paths[id] != "routine_grooming_quick" {
		t.Fatalf("unexpected path %q", paths[id])
	}
	if paths[root] != "routine" {
		t.Fatalf("unexpected root path %q", paths[root])
	}
}

// ============================================================
// Import
// ============================================================

func TestImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	days := []model.Day{
		testDay("2025-01-01", "study_code", "meal", "study_code"),
		testDay("2025-01-02", "study_math"),
	}

	imp, err := s.Import(ctx, days, "2025.txt")
	if err != nil {
		t.Fatal(err)
	}
	if imp.ID == "" || imp.DayCount != 2 || imp.ActivityCount != 4 {
		t.Fatalf("unexpected import: %+v", imp)
	}
	// study, code, meal, math; the repeated study_code hits the cache.
	if imp.ProjectInserts != 4 || imp.ProjectLookups != 4 {
		t.Fatalf("unexpected resolver counters: %d lookups, %d inserts", imp.ProjectLookups, imp.ProjectInserts)
	}
	if n := count(t, s, "activities"); n != 4 {
		t.Fatalf("expected 4 activities, got %d", n)
	}

	imports, err := s.ListImports(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(imports) != 1 || imports[0].ID != imp.ID || imports[0].ActivityCount != 4 {
		t.Fatalf("unexpected imports: %+v", imports)
	}
}

func TestListImportsBadTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO imports (id, source, imported_at) VALUES ('x', 'a.txt', 'yesterday')`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ListImports(ctx); err == nil {
		t.Fatal("expected an error for an unparsable imported_at")
	}
}

func TestImportDuplicateDayRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Import(ctx, []model.Day{testDay("2025-01-01", "study")}, "a.txt"); err != nil {
		t.Fatal(err)
	}

	_, err := s.Import(ctx, []model.Day{
		testDay("2025-01-02", "exercise_cardio"),
		testDay("2025-01-01", "meal"),
	}, "b.txt")
	if !errors.Is(err, ErrDayExists) {
		t.Fatalf("expected ErrDayExists, got %v", err)
	}

	if n := count(t, s, "days"); n != 1 {
		t.Fatalf("expected rollback to keep 1 day, got %d", n)
	}
	if n := count(t, s, "projects"); n != 1 {
		t.Fatalf("expected rollback to keep 1 project, got %d", n)
	}
	if n := count(t, s, "imports"); n != 1 {
		t.Fatalf("expected 1 import, got %d", n)
	}
}

func TestImportBadDateRollsBack(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Import(context.Background(), []model.Day{{Headers: model.Headers{Date: "2025-02-30"}}}, "x")
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	if n := count(t, s, "imports"); n != 0 {
		t.Fatalf("expected no import rows, got %d", n)
	}
}

// ============================================================
// Queries
// ============================================================

func TestGetDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := testDay("2025-01-01", "study_code", "meal")
	in.Headers.Remark = "first\nsecond"
	if _, err := s.Import(ctx, []model.Day{in}, "a.txt"); err != nil {
		t.Fatal(err)
	}

	d, err := s.GetDay(ctx, "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Headers.Remark != "first\nsecond" || d.Headers.Getup != "08:00" || !d.Headers.Status {
		t.Fatalf("unexpected headers: %+v", d.Headers)
	}
	if d.Headers.ActivityCount != 2 || len(d.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d/%d", d.Headers.ActivityCount, len(d.Activities))
	}
	if d.Activities[0].Category.Path() != "study_code" || d.Activities[1].StartTime != "09:00" {
		t.Fatalf("unexpected activities: %+v", d.Activities)
	}
	if d.GeneratedStats.StudyTime != 3600 {
		t.Fatalf("expected studyTime 3600, got %d", d.GeneratedStats.StudyTime)
	}
}

func TestGetDayNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetDay(context.Background(), "2025-01-01")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestGetDayNullGetup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	in := testDay("2025-01-01")
	in.Headers.Getup = model.NullTime
	s.Import(ctx, []model.Day{in}, "a.txt")

	d, err := s.GetDay(ctx, "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Headers.Getup != model.NullTime {
		t.Fatalf("expected Null getup, got %q", d.Headers.Getup)
	}
}

func TestListDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Import(ctx, []model.Day{
		testDay("2025-01-01", "study"),
		testDay("2025-01-02", "meal"),
		testDay("2025-01-03", "meal", "work"),
	}, "a.txt")

	days, err := s.ListDays(ctx, "2025-01-02", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 || days[0].Headers.Date != "2025-01-02" || days[1].Headers.ActivityCount != 2 {
		t.Fatalf("unexpected days: %+v", days)
	}

	all, _ := s.ListDays(ctx, "", "")
	if len(all) != 3 {
		t.Fatalf("expected 3 days, got %d", len(all))
	}
}

func TestListActivitiesFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Import(ctx, []model.Day{
		testDay("2025-01-01", "study_code", "studying", "study"),
		testDay("2025-01-02", "study_math"),
	}, "a.txt")

	acts, err := s.ListActivities(ctx, ActivityFilter{Project: "study"})
	if err != nil {
		t.Fatal(err)
	}
	// "studying" is a different root.
	if len(acts) != 3 {
		t.Fatalf("expected 3 study activities, got %d", len(acts))
	}

	limited, _ := s.ListActivities(ctx, ActivityFilter{Project: "study", Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}

	day2, _ := s.ListActivities(ctx, ActivityFilter{From: "2025-01-02"})
	if len(day2) != 1 || day2[0].Path != "study_math" {
		t.Fatalf("unexpected activities: %+v", day2)
	}
}

func TestProjectTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Import(ctx, []model.Day{
		testDay("2025-01-01", "study_code", "meal", "study_code"),
		testDay("2025-01-02", "meal"),
	}, "a.txt")

	totals, err := s.ProjectTotals(ctx, "", "2025-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 totals, got %d", len(totals))
	}
	if totals[0].Path != "meal" || totals[0].TotalSeconds != 3600 {
		t.Fatalf("unexpected first total: %+v", totals[0])
	}
	if totals[1].Path != "study_code" || totals[1].TotalSeconds != 7200 || totals[1].ActivityCount != 2 {
		t.Fatalf("unexpected second total: %+v", totals[1])
	}
}

func TestLoadDaysAttachesActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Import(ctx, []model.Day{
		testDay("2025-01-01", "study_code", "meal"),
		testDay("2025-01-02"),
		testDay("2025-01-03", "work"),
	}, "a.txt")

	days, err := s.LoadDays(ctx, "", "2025-01-02")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if len(days[0].Activities) != 2 || days[0].Activities[0].Category.Path() != "study_code" {
		t.Fatalf("unexpected activities: %+v", days[0].Activities)
	}
	if len(days[1].Activities) != 0 {
		t.Fatalf("expected no activities on an empty day, got %d", len(days[1].Activities))
	}
}
