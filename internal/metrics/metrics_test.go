package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/store"
)

func TestObserveDays(t *testing.T) {
	m := New()
	days := []model.Day{
		{
			Activities:     make([]model.Activity, 3),
			GeneratedStats: model.GeneratedStats{StudyTime: 7200, SleepTime: 3600, SleepNightTime: 3600},
		},
		{
			Activities:     make([]model.Activity, 2),
			GeneratedStats: model.GeneratedStats{StudyTime: 1800},
		},
	}
	m.ObserveDays(days)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DaysConverted))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Activities))
	assert.Equal(t, 9000.0, testutil.ToFloat64(m.TrackedSeconds.WithLabelValues("studyTime")))
	assert.Equal(t, 3600.0, testutil.ToFloat64(m.TrackedSeconds.WithLabelValues("sleepNightTime")))
}

func TestObserveFindings(t *testing.T) {
	m := New()
	errs := &diag.Set{}
	errs.Add(3, diag.KindInvalidLineFormat, "bad line")
	errs.Add(4, diag.KindInvalidLineFormat, "another bad line")
	errs.Add(5, diag.KindUnrecognizedActivity, "unknown token")
	m.ObserveFindings(errs)
	m.ObserveFindings(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Findings.WithLabelValues(string(diag.KindInvalidLineFormat), "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues(string(diag.KindUnrecognizedActivity), "warning")))
}

func TestObserveImport(t *testing.T) {
	m := New()
	m.ObserveImport(&store.Import{DayCount: 4, ProjectLookups: 7, ProjectInserts: 3})
	m.ObserveImport(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ImportedDays))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.ProjectLookups))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ProjectInserts))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.FilesRead.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilesRead))
	assert.Zero(t, testutil.ToFloat64(b.FilesRead))
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.FilesRead.Inc()
	m.LinesRead.Add(12)

	path := filepath.Join(t.TempDir(), "timetracer.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "timetracer_files_read_total 1")
	assert.Contains(t, out, "timetracer_lines_read_total 12")
	assert.True(t, strings.Contains(out, "# HELP timetracer_imports_total"))
}

func TestWriteFileBadPath(t *testing.T) {
	m := New()
	err := m.WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
