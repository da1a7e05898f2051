package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/report"
	"github.com/sadopc/timetracer/internal/store"
)

const projectActivityLimit = 200

// projectRow is one line of the flattened project tree.
type projectRow struct {
	path     string
	name     string
	depth    int
	duration int64
}

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	tree   *report.Node
	rows   []projectRow
	cursor int

	viewingActivities bool
	activities        []store.Activity

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formFrom *string
	formTo   *string
	from, to string
}

func newProjectsModel(s *store.Store) projectsModel {
	from, to := "", ""
	return projectsModel{
		store:    s,
		formFrom: &from,
		formTo:   &to,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	totals []store.ProjectTotal
	err    error
}

type projectActivitiesMsg struct {
	activities []store.Activity
	err        error
}

func (p projectsModel) refresh() tea.Cmd {
	from, to := p.from, p.to
	return func() tea.Msg {
		totals, err := p.store.ProjectTotals(context.Background(), from, to)
		return projectsDataMsg{totals: totals, err: err}
	}
}

func (p projectsModel) refreshActivities() tea.Cmd {
	if p.cursor >= len(p.rows) {
		return nil
	}
	f := store.ActivityFilter{From: p.from, To: p.to, Project: p.rows[p.cursor].path, Limit: projectActivityLimit}
	return func() tea.Msg {
		acts, err := p.store.ListActivities(context.Background(), f)
		return projectActivitiesMsg{activities: acts, err: err}
	}
}

// flatten lists the tree depth first; each row carries its full path.
func flatten(t *report.Node) []projectRow {
	var rows []projectRow
	var walk func(n *report.Node, prefix string, depth int)
	walk = func(n *report.Node, prefix string, depth int) {
		for _, c := range n.Sorted() {
			path := c.Name
			if prefix != "" {
				path = prefix + "_" + c.Name
			}
			rows = append(rows, projectRow{path: path, name: c.Name, depth: depth, duration: c.Duration})
			walk(c, path, depth+1)
		}
	}
	walk(t, "", 0)
	return rows
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		if msg.err != nil {
			return p, errStatus(msg.err)
		}
		p.tree = report.NewTree()
		for _, t := range msg.totals {
			p.tree.Add(t.Path, t.TotalSeconds)
		}
		p.rows = flatten(p.tree)
		p.cursor = clampCursor(p.cursor, len(p.rows))
		return p, nil

	case projectActivitiesMsg:
		if msg.err != nil {
			return p, errStatus(msg.err)
		}
		p.activities = msg.activities
		return p, nil

	case tea.KeyMsg:
		if p.viewingActivities {
			if key.Matches(msg, keys.Back) {
				p.viewingActivities = false
			}
			return p, nil
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.rows) > 0 {
			p.viewingActivities = true
			p.activities = nil
			return p, p.refreshActivities()
		}
	case key.Matches(msg, keys.Range):
		return p.showRangeForm()
	}
	return p, nil
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := (model.Headers{Date: s}).Time(); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func (p projectsModel) showRangeForm() (projectsModel, tea.Cmd) {
	*p.formFrom = p.from
	*p.formTo = p.to

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("From (YYYY-MM-DD, empty = open)").Value(p.formFrom).Validate(validDate),
			huh.NewInput().Title("To (YYYY-MM-DD, empty = open)").Value(p.formTo).Validate(validDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.from = strings.TrimSpace(*p.formFrom)
		p.to = strings.TrimSpace(*p.formTo)
		p.cursor = 0
		return p, p.refresh()
	}

	return p, cmd
}

func (p projectsModel) rangeLabel() string {
	from, to := p.from, p.to
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "end"
	}
	return from + " → " + to
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("Date Range")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingActivities {
		return p.renderActivities()
	}
	return p.renderTree()
}

func (p projectsModel) renderTree() string {
	w := p.width - 4
	title := titleStyle.Render("Projects") + "  " + mutedStyle.Render(p.rangeLabel())

	if len(p.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No activities in this range."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-32s %10s %7s", "Project", "Duration", "Share")))

	start, end := window(p.cursor, len(p.rows), p.height-10)
	for i := start; i < end; i++ {
		r := p.rows[i]
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		name := strings.Repeat("  ", r.depth) + r.name
		share := 0.0
		if p.tree.Duration > 0 {
			share = float64(r.duration) * 100 / float64(p.tree.Duration)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-32s %10s %6.1f%%", cursor, name, formatSeconds(r.duration), share)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  total %s  enter: activities  r: date range", formatSeconds(p.tree.Duration))))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderActivities() string {
	w := p.width - 4
	r := p.rows[p.cursor]
	title := titleStyle.Render(r.path) + "  " + mutedStyle.Render(p.rangeLabel())

	if len(p.activities) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Loading..."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	_, end := window(0, len(p.activities), p.height-8)
	for _, a := range p.activities[:end] {
		row := fmt.Sprintf("  %s %s-%s  %-24s %s", a.Date, a.StartTime, a.EndTime, a.Path, formatSeconds(a.Duration))
		if a.Remark != "" {
			row += mutedStyle.Render("  " + a.Remark)
		}
		rows = append(rows, row)
	}
	if end < len(p.activities) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(p.activities)-end)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  esc: back"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
