package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/timetracer/internal/model"
)

type text struct{}

var (
	textTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	textHeading = lipgloss.NewStyle().Bold(true)
	textMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// pad fills s to width display cells; CJK tokens take two cells each.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func (text) Day(w io.Writer, d model.Day) error {
	var b strings.Builder
	b.WriteString(textTitle.Render(d.Headers.Date) + "\n")
	b.WriteString(textMuted.Render(fmt.Sprintf("getup %s  %s", d.Headers.Getup, flags(d.Headers))) + "\n")
	if d.Headers.Remark != "" {
		b.WriteString(d.Headers.Remark + "\n")
	}

	if len(d.Activities) > 0 {
		width := 8
		for _, a := range d.Activities {
			width = max(width, runewidth.StringWidth(a.Category.Path()))
		}
		b.WriteString("\n" + textHeading.Render("Activities") + "\n")
		for _, a := range d.Activities {
			line := fmt.Sprintf("  %s-%s  %s  %s", a.StartTime, a.EndTime, pad(a.Category.Path(), width), HM(a.DurationSeconds))
			if a.Remark != "" {
				line += "  " + textMuted.Render(a.Remark)
			}
			b.WriteString(line + "\n")
		}
	}

	writeTextStats(&b, d.GeneratedStats)
	writeTextTree(&b, DayTree(d))
	_, err := io.WriteString(w, b.String())
	return err
}

func (text) Period(w io.Writer, p Period) error {
	var b strings.Builder
	b.WriteString(textTitle.Render(p.From+" to "+p.To) + "\n")
	summary := fmt.Sprintf("%d days", len(p.Days))
	if p.Tree != nil {
		summary += ", " + HM(p.Tree.Duration) + " tracked"
	}
	b.WriteString(textMuted.Render(summary) + "\n")
	writeTextStats(&b, Totals(p.Days))
	if p.Tree != nil {
		writeTextTree(&b, p.Tree)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextStats(b *strings.Builder, g model.GeneratedStats) {
	rows := nonZero(g)
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n" + textHeading.Render("Statistics") + "\n")
	for _, r := range rows {
		fmt.Fprintf(b, "  %s  %s\n", pad(r.name, 18), HM(r.secs))
	}
}

func writeTextTree(b *strings.Builder, t *Node) {
	if len(t.Children) == 0 {
		return
	}
	width := 0
	t.Walk(func(n *Node, depth int) {
		width = max(width, depth*2+runewidth.StringWidth(n.Name))
	})
	b.WriteString("\n" + textHeading.Render("Projects") + "\n")
	t.Walk(func(n *Node, depth int) {
		name := strings.Repeat("  ", depth) + n.Name
		fmt.Fprintf(b, "  %s  %s  %5.1f%%\n", pad(name, width), HM(n.Duration), percent(n.Duration, t.Duration))
	})
}
