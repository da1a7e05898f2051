package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timetracer/internal/store"
)

type importsModel struct {
	store  *store.Store
	width  int
	height int

	imports []store.Import
	cursor  int
}

func newImportsModel(s *store.Store) importsModel {
	return importsModel{store: s}
}

func (m *importsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type importsDataMsg struct {
	imports []store.Import
	err     error
}

func (m importsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		imports, err := m.store.ListImports(context.Background())
		return importsDataMsg{imports: imports, err: err}
	}
}

func (m importsModel) update(msg tea.Msg) (importsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case importsDataMsg:
		if msg.err != nil {
			return m, errStatus(msg.err)
		}
		m.imports = msg.imports
		m.cursor = clampCursor(m.cursor, len(m.imports))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.imports)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m importsModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Imports")

	if len(m.imports) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing imported yet."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %-24s %6s %10s  %s", "Imported", "Source", "Days", "Activities", "Batch")))

	start, end := window(m.cursor, len(m.imports), m.height-8)
	for i := start; i < end; i++ {
		imp := m.imports[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := fmt.Sprintf("%s%-20s %-24s %6d %10d  %s",
			cursor, imp.ImportedAt.Local().Format("2006-01-02 15:04"), truncate(filepath.Base(imp.Source), 24),
			imp.DayCount, imp.ActivityCount, imp.ID[:min(8, len(imp.ID))])
		rows = append(rows, style.Render(row))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
