package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/report"
	"github.com/sadopc/timetracer/internal/store"
)

type statsMode int

const (
	statsDaily statsMode = iota
	statsTotals
)

// chartBuckets are the series stacked in the daily chart.
var chartBuckets = []model.Bucket{
	model.BucketSleep, model.BucketStudy, model.BucketTotalExercise,
	model.BucketRecreation, model.BucketGrooming, model.BucketToilet,
}

const statsWindowDays = 7

type statsModel struct {
	store  *store.Store
	width  int
	height int

	mode   statsMode
	anchor time.Time // last day of the window
	offset int       // windows back from anchor
	days   []model.Day

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	anchor time.Time
	days   []model.Day
	err    error
}

// refresh anchors the window on the newest stored day, since logs are
// usually imported after the fact.
func (r statsModel) refresh() tea.Cmd {
	anchor, offset := r.anchor, r.offset
	return func() tea.Msg {
		ctx := context.Background()
		if anchor.IsZero() {
			all, err := r.store.ListDays(ctx, "", "")
			if err != nil {
				return statsDataMsg{err: err}
			}
			if len(all) == 0 {
				return statsDataMsg{}
			}
			t, err := all[len(all)-1].Headers.Time()
			if err != nil {
				return statsDataMsg{err: err}
			}
			anchor = t
		}
		from, to := windowRange(anchor, offset)
		days, err := r.store.ListDays(ctx, from.Format(model.DateLayout), to.Format(model.DateLayout))
		return statsDataMsg{anchor: anchor, days: days, err: err}
	}
}

// windowRange is the inclusive date range offset windows before anchor.
func windowRange(anchor time.Time, offset int) (time.Time, time.Time) {
	to := anchor.AddDate(0, 0, -statsWindowDays*offset)
	return to.AddDate(0, 0, 1-statsWindowDays), to
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		if msg.err != nil {
			return r, errStatus(msg.err)
		}
		r.anchor = msg.anchor
		r.days = msg.days
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			if r.mode == statsDaily {
				r.mode = statsTotals
			} else {
				r.mode = statsDaily
			}
			r.buildChart()
			return r, nil
		}
	}
	return r, nil
}

func bucketStyle(b model.Bucket) lipgloss.Style {
	c, ok := bucketColors[b]
	if !ok {
		c = colorFg
	}
	return lipgloss.NewStyle().Foreground(c)
}

func (r *statsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)
	if r.anchor.IsZero() {
		return
	}

	var bars []barchart.BarData
	switch r.mode {
	case statsTotals:
		totals := report.Totals(r.days)
		for _, b := range chartBuckets {
			bars = append(bars, barchart.BarData{
				Label:  shortBucket(b),
				Values: []barchart.BarValue{{Name: string(b), Value: float64(totals.Get(b)) / 3600.0, Style: bucketStyle(b)}},
			})
		}
	default:
		byDate := make(map[string]model.Day, len(r.days))
		for _, d := range r.days {
			byDate[d.Headers.Date] = d
		}
		from, to := windowRange(r.anchor, r.offset)
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			day, ok := byDate[d.Format(model.DateLayout)]
			var values []barchart.BarValue
			if ok {
				for _, b := range chartBuckets {
					if v := day.GeneratedStats.Get(b); v > 0 {
						values = append(values, barchart.BarValue{Name: string(b), Value: float64(v) / 3600.0, Style: bucketStyle(b)})
					}
				}
			}
			if len(values) == 0 {
				values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
			}
			bars = append(bars, barchart.BarData{Label: d.Format("Mon 02"), Values: values})
		}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

// shortBucket trims the "Time" suffix for chart labels.
func shortBucket(b model.Bucket) string {
	return strings.TrimSuffix(string(b), "Time")
}

func (r statsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	totalsTab := inactiveTabStyle.Render("Totals")
	if r.mode == statsDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		totalsTab = activeTabStyle.Render("Totals")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, totalsTab)

	if r.anchor.IsZero() {
		header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Stats"), "  ", modeTabs)
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  No data yet")),
		)
	}

	from, to := windowRange(r.anchor, r.offset)
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s - %s", from.Format("Jan 02"), to.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", modeTabs, "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  m: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "", r.renderTable(w), "", nav,
		),
	)
}

func (r statsModel) renderTable(w int) string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	totals := report.Totals(r.days)
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %10s %10s", "Bucket", "Total", "Per day")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 40))))
	for _, b := range model.Buckets {
		v := totals.Get(b)
		if v == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-18s %10s %10s", b, formatSeconds(v), formatHours(v/int64(len(r.days)))))
	}
	return strings.Join(rows, "\n")
}

func (r statsModel) renderLegend() string {
	var items []string
	for _, b := range chartBuckets {
		items = append(items, fmt.Sprintf("%s %s", bucketStyle(b).Render("●"), shortBucket(b)))
	}
	return "  " + strings.Join(items, "  ")
}
