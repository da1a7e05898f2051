package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

type latex struct{}

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`, "%", `\%`, "$", `\$`, "#", `\#`, "_", `\_`,
	"{", `\{`, "}", `\}`, "~", `\textasciitilde{}`, "^", `\textasciicircum{}`,
	"\n", `\\ `,
)

func (latex) Day(w io.Writer, d model.Day) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\\section*{%s}\n\n", d.Headers.Date)
	b.WriteString("\\begin{description}\n")
	fmt.Fprintf(&b, "  \\item[Getup] %s\n", texEscaper.Replace(d.Headers.Getup))
	fmt.Fprintf(&b, "  \\item[Flags] %s\n", flags(d.Headers))
	if d.Headers.Remark != "" {
		fmt.Fprintf(&b, "  \\item[Remark] %s\n", texEscaper.Replace(d.Headers.Remark))
	}
	b.WriteString("\\end{description}\n")

	if len(d.Activities) > 0 {
		b.WriteString("\n\\subsection*{Activities}\n\\begin{tabular}{llllp{5cm}}\n")
		b.WriteString("Start & End & Activity & Duration & Remark \\\\\n\\hline\n")
		for _, a := range d.Activities {
			fmt.Fprintf(&b, "%s & %s & %s & %s & %s \\\\\n",
				a.StartTime, a.EndTime, texEscaper.Replace(a.Category.Path()), HM(a.DurationSeconds), texEscaper.Replace(a.Remark))
		}
		b.WriteString("\\end{tabular}\n")
	}

	writeLatexStats(&b, d.GeneratedStats)
	writeLatexTree(&b, DayTree(d))
	_, err := io.WriteString(w, b.String())
	return err
}

func (latex) Period(w io.Writer, p Period) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\\section*{%s to %s}\n\n", p.From, p.To)
	fmt.Fprintf(&b, "Days: %d", len(p.Days))
	if p.Tree != nil {
		fmt.Fprintf(&b, ", tracked: %s", HM(p.Tree.Duration))
	}
	b.WriteString("\n")
	writeLatexStats(&b, Totals(p.Days))
	if p.Tree != nil {
		writeLatexTree(&b, p.Tree)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeLatexStats(b *strings.Builder, g model.GeneratedStats) {
	rows := nonZero(g)
	if len(rows) == 0 {
		return
	}
	b.WriteString("\n\\subsection*{Statistics}\n\\begin{tabular}{lr}\n")
	for _, r := range rows {
		fmt.Fprintf(b, "%s & %s \\\\\n", r.name, HM(r.secs))
	}
	b.WriteString("\\end{tabular}\n")
}

func writeLatexTree(b *strings.Builder, t *Node) {
	if len(t.Children) == 0 {
		return
	}
	b.WriteString("\n\\subsection*{Projects}\n")
	depth := -1
	t.Walk(func(n *Node, d int) {
		for ; depth < d; depth++ {
			fmt.Fprintf(b, "%s\\begin{itemize}\n", strings.Repeat("  ", depth+1))
		}
		for ; depth > d; depth-- {
			fmt.Fprintf(b, "%s\\end{itemize}\n", strings.Repeat("  ", depth))
		}
		fmt.Fprintf(b, "%s\\item \\textbf{%s} %s (%.1f\\%%)\n",
			strings.Repeat("  ", d+1), texEscaper.Replace(n.Name), HM(n.Duration), percent(n.Duration, t.Duration))
	})
	for ; depth >= 0; depth-- {
		fmt.Fprintf(b, "%s\\end{itemize}\n", strings.Repeat("  ", depth))
	}
}
