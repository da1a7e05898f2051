// Package metrics counts what a pipeline run did and dumps the counters in
// the Prometheus text format for a node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/store"
)

const namespace = "timetracer"

// Metrics owns a private registry so repeated runs in one process (tests)
// never collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	FilesRead      prometheus.Counter
	LinesRead      prometheus.Counter
	DaysConverted  prometheus.Counter
	Activities     prometheus.Counter
	Findings       *prometheus.CounterVec
	Imports        prometheus.Counter
	ImportedDays   prometheus.Counter
	ProjectLookups prometheus.Counter
	ProjectInserts prometheus.Counter
	TrackedSeconds *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		FilesRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Source or intermediate files read.",
		}),
		LinesRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Source lines classified.",
		}),
		DaysConverted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_converted_total",
			Help:      "Day records produced by the converter.",
		}),
		Activities: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_total",
			Help:      "Activities in converted day records.",
		}),
		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Validation findings by kind and severity.",
		}, []string{"kind", "severity"}),
		Imports: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Committed import batches.",
		}),
		ImportedDays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_days_total",
			Help:      "Days written by committed imports.",
		}),
		ProjectLookups: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_lookups_total",
			Help:      "Project rows found by SELECT during imports.",
		}),
		ProjectInserts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_inserts_total",
			Help:      "Project rows created during imports.",
		}),
		TrackedSeconds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracked_seconds_total",
			Help:      "Converted activity time by statistics bucket.",
		}, []string{"bucket"}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveFindings counts every entry of errs.
func (m *Metrics) ObserveFindings(errs *diag.Set) {
	if errs == nil {
		return
	}
	for _, e := range errs.Items() {
		m.Findings.WithLabelValues(string(e.Kind), e.Severity.String()).Inc()
	}
}

// ObserveDays counts converted days, their activities and bucket totals.
func (m *Metrics) ObserveDays(days []model.Day) {
	m.DaysConverted.Add(float64(len(days)))
	for _, d := range days {
		m.Activities.Add(float64(len(d.Activities)))
		for _, b := range model.Buckets {
			if v := d.GeneratedStats.Get(b); v > 0 {
				m.TrackedSeconds.WithLabelValues(string(b)).Add(float64(v))
			}
		}
	}
}

// ObserveImport counts a committed import batch.
func (m *Metrics) ObserveImport(imp *store.Import) {
	if imp == nil {
		return
	}
	m.Imports.Inc()
	m.ImportedDays.Add(float64(imp.DayCount))
	m.ProjectLookups.Add(float64(imp.ProjectLookups))
	m.ProjectInserts.Add(float64(imp.ProjectInserts))
}

// WriteFile dumps the registry in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
