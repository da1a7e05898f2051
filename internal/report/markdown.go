package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

type markdown struct{}

var mdEscaper = strings.NewReplacer("|", `\|`, "\n", "<br>", "*", `\*`, "_", `\_`)

func (markdown) Day(w io.Writer, d model.Day) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Headers.Date)
	fmt.Fprintf(&b, "- Getup: %s\n", d.Headers.Getup)
	fmt.Fprintf(&b, "- Flags: %s\n", flags(d.Headers))
	if d.Headers.Remark != "" {
		fmt.Fprintf(&b, "- Remark: %s\n", mdEscaper.Replace(d.Headers.Remark))
	}

	b.WriteString("\n## Activities\n\n")
	if len(d.Activities) == 0 {
		b.WriteString("No activities.\n")
	} else {
		b.WriteString("| Start | End | Activity | Duration | Remark |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, a := range d.Activities {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				a.StartTime, a.EndTime, mdEscaper.Replace(a.Category.Path()), HM(a.DurationSeconds), mdEscaper.Replace(a.Remark))
		}
	}

	writeMarkdownStats(&b, d.GeneratedStats)
	writeMarkdownTree(&b, DayTree(d))
	_, err := io.WriteString(w, b.String())
	return err
}

func (markdown) Period(w io.Writer, p Period) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s to %s\n\n", p.From, p.To)
	fmt.Fprintf(&b, "- Days: %d\n", len(p.Days))
	if p.Tree != nil {
		fmt.Fprintf(&b, "- Tracked: %s\n", HM(p.Tree.Duration))
	}
	writeMarkdownStats(&b, Totals(p.Days))
	if p.Tree != nil {
		writeMarkdownTree(&b, p.Tree)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownStats(b *strings.Builder, g model.GeneratedStats) {
	rows := nonZero(g)
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n## Statistics\n\n| Bucket | Duration |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r.name, HM(r.secs))
	}
}

func writeMarkdownTree(b *strings.Builder, t *Node) {
	if len(t.Children) == 0 {
		return
	}
	b.WriteString("\n## Projects\n\n")
	t.Walk(func(n *Node, depth int) {
		fmt.Fprintf(b, "%s- **%s** %s (%.1f%%)\n",
			strings.Repeat("  ", depth), mdEscaper.Replace(n.Name), HM(n.Duration), percent(n.Duration, t.Duration))
	})
}
