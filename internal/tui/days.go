package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/store"
)

type daysModel struct {
	store  *store.Store
	width  int
	height int

	days   []model.Day
	cursor int

	// Drill-down into one day
	detail *model.Day
}

func newDaysModel(s *store.Store) daysModel {
	return daysModel{store: s}
}

func (d daysModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *daysModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type daysDataMsg struct {
	days []model.Day
	err  error
}

type dayDetailMsg struct {
	day *model.Day
	err error
}

func (d daysModel) loadData() tea.Cmd {
	return func() tea.Msg {
		days, err := d.store.ListDays(context.Background(), "", "")
		return daysDataMsg{days: days, err: err}
	}
}

func (d daysModel) loadDetail(date string) tea.Cmd {
	return func() tea.Msg {
		day, err := d.store.GetDay(context.Background(), date)
		return dayDetailMsg{day: day, err: err}
	}
}

func (d daysModel) selected() (model.Day, bool) {
	if d.cursor >= len(d.days) {
		return model.Day{}, false
	}
	return d.days[d.cursor], true
}

func (d daysModel) update(msg tea.Msg) (daysModel, tea.Cmd) {
	switch msg := msg.(type) {
	case daysDataMsg:
		if msg.err != nil {
			return d, errStatus(msg.err)
		}
		first := d.days == nil
		d.days = msg.days
		// Open on the newest day.
		if first {
			d.cursor = len(d.days) - 1
		}
		d.cursor = clampCursor(d.cursor, len(d.days))
		return d, nil

	case dayDetailMsg:
		if msg.err != nil {
			return d, errStatus(msg.err)
		}
		d.detail = msg.day
		return d, nil

	case tea.KeyMsg:
		if d.detail != nil {
			if key.Matches(msg, keys.Back) {
				d.detail = nil
			}
			return d, nil
		}

		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.days)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if day, ok := d.selected(); ok {
				return d, d.loadDetail(day.Headers.Date)
			}
		}
	}
	return d, nil
}

func (d daysModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4
	if d.detail != nil {
		return d.renderDetail(w)
	}
	return d.renderList(w)
}

func (d daysModel) renderList(w int) string {
	title := titleStyle.Render("Days")
	if len(d.days) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No days stored. Run `timetracer import <file>` first."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%s  %s", title, mutedStyle.Render(fmt.Sprintf("%d days", len(d.days)))))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-6s %-5s %8s %8s %8s  %s",
		"Date", "Getup", "Flags", "Sleep", "Study", "Exercise", "Acts")))

	start, end := window(d.cursor, len(d.days), d.height-10)
	for i := start; i < end; i++ {
		day := d.days[i]
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		g := day.GeneratedStats
		row := fmt.Sprintf("%s%-12s %-6s %-5s %8s %8s %8s  %d",
			cursor, day.Headers.Date, day.Headers.Getup, dayFlags(day.Headers),
			formatHours(g.SleepTime), formatHours(g.StudyTime), formatHours(g.TotalExerciseTime),
			day.Headers.ActivityCount)
		rows = append(rows, style.Render(row))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: activities  e: export"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d daysModel) renderDetail(w int) string {
	day := d.detail
	title := titleStyle.Render(day.Headers.Date)
	meta := mutedStyle.Render(fmt.Sprintf("getup %s  %s", day.Headers.Getup, dayFlags(day.Headers)))

	var rows []string
	rows = append(rows, title+"  "+meta)
	if day.Headers.Remark != "" {
		for _, line := range strings.Split(day.Headers.Remark, "\n") {
			rows = append(rows, highlightStyle.Render("  "+line))
		}
	}
	rows = append(rows, "")

	if len(day.Activities) == 0 {
		rows = append(rows, mutedStyle.Render("  No activities"))
	}
	for _, a := range day.Activities {
		row := fmt.Sprintf("  %s-%s  %-28s %s", a.StartTime, a.EndTime, a.Category.Path(), formatSeconds(a.DurationSeconds))
		if a.Remark != "" {
			row += mutedStyle.Render("  " + a.Remark)
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  esc: back"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// dayFlags renders the study/exercise/sleep flags as three fixed columns.
func dayFlags(h model.Headers) string {
	flag := func(on bool, c string) string {
		if on {
			return c
		}
		return "·"
	}
	return flag(h.Status, "S") + flag(h.Exercise, "E") + flag(h.Sleep, "Z")
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}
