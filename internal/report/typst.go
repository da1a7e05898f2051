package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

type typst struct{}

var typEscaper = strings.NewReplacer(
	`\`, `\\`, "#", `\#`, "*", `\*`, "_", `\_`, "$", `\$`, "@", `\@`,
	"<", `\<`, ">", `\>`, "[", `\[`, "]", `\]`, "`", "\\`", "\n", ` \ `,
)

func (typst) Day(w io.Writer, d model.Day) error {
	var b strings.Builder
	fmt.Fprintf(&b, "= %s\n\n", d.Headers.Date)
	fmt.Fprintf(&b, "/ Getup: %s\n", typEscaper.Replace(d.Headers.Getup))
	fmt.Fprintf(&b, "/ Flags: %s\n", flags(d.Headers))
	if d.Headers.Remark != "" {
		fmt.Fprintf(&b, "/ Remark: %s\n", typEscaper.Replace(d.Headers.Remark))
	}

	if len(d.Activities) > 0 {
		b.WriteString("\n== Activities\n\n#table(\n  columns: 5,\n  [*Start*], [*End*], [*Activity*], [*Duration*], [*Remark*],\n")
		for _, a := range d.Activities {
			fmt.Fprintf(&b, "  [%s], [%s], [%s], [%s], [%s],\n",
				a.StartTime, a.EndTime, typEscaper.Replace(a.Category.Path()), HM(a.DurationSeconds), typEscaper.Replace(a.Remark))
		}
		b.WriteString(")\n")
	}

	writeTypstStats(&b, d.GeneratedStats)
	writeTypstTree(&b, DayTree(d))
	_, err := io.WriteString(w, b.String())
	return err
}

func (typst) Period(w io.Writer, p Period) error {
	var b strings.Builder
	fmt.Fprintf(&b, "= %s to %s\n\n", p.From, p.To)
	fmt.Fprintf(&b, "/ Days: %d\n", len(p.Days))
	if p.Tree != nil {
		fmt.Fprintf(&b, "/ Tracked: %s\n", HM(p.Tree.Duration))
	}
	writeTypstStats(&b, Totals(p.Days))
	if p.Tree != nil {
		writeTypstTree(&b, p.Tree)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTypstStats(b *strings.Builder, g model.GeneratedStats) {
	rows := nonZero(g)
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n== Statistics\n\n#table(\n  columns: 2,\n")
	for _, r := range rows {
		fmt.Fprintf(b, "  [%s], [%s],\n", r.name, HM(r.secs))
	}
	b.WriteString(")\n")
}

func writeTypstTree(b *strings.Builder, t *Node) {
	if len(t.Children) == 0 {
		return
	}
	b.WriteString("\n== Projects\n\n")
	t.Walk(func(n *Node, depth int) {
		fmt.Fprintf(b, "%s- *%s* %s (%.1f%%)\n",
			strings.Repeat("  ", depth), typEscaper.Replace(n.Name), HM(n.Duration), percent(n.Duration, t.Duration))
	})
}
