// Package report renders stored days and period totals in a fixed set of
// document formats.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

type Format int

const (
	FormatMarkdown Format = iota
	FormatLaTeX
	FormatTypst
	FormatText
)

var formatNames = map[Format]string{
	FormatMarkdown: "markdown",
	FormatLaTeX:    "latex",
	FormatTypst:    "typst",
	FormatText:     "text",
}

var formatExts = map[Format]string{
	FormatMarkdown: ".md",
	FormatLaTeX:    ".tex",
	FormatTypst:    ".typ",
	FormatText:     ".txt",
}

// Formats lists every format in display order.
var Formats = []Format{FormatMarkdown, FormatLaTeX, FormatTypst, FormatText}

func (f Format) String() string {
	if n, ok := formatNames[f]; ok {
		return n
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Ext is the file extension for reports in this format.
func (f Format) Ext() string {
	return formatExts[f]
}

// ParseFormat accepts a format name or one of the short aliases md, tex, typ
// and txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "latex", "tex":
		return FormatLaTeX, nil
	case "typst", "typ":
		return FormatTypst, nil
	case "text", "txt":
		return FormatText, nil
	}
	return 0, fmt.Errorf("unknown report format %q", s)
}

// Period is the input of a period report.
type Period struct {
	From string
	To   string
	Days []model.Day
	Tree *Node
}

// Formatter renders reports.
type Formatter interface {
	Day(w io.Writer, d model.Day) error
	Period(w io.Writer, p Period) error
}

// New returns the formatter for f.
func New(f Format) (Formatter, error) {
	switch f {
	case FormatMarkdown:
		return markdown{}, nil
	case FormatLaTeX:
		return latex{}, nil
	case FormatTypst:
		return typst{}, nil
	case FormatText:
		return text{}, nil
	}
	return nil, fmt.Errorf("unknown report format %d", int(f))
}

// FileName is the default output name for a report over [from, to].
func FileName(f Format, from, to string) string {
	if to == "" || to == from {
		return "timetracer-" + from + f.Ext()
	}
	return "timetracer-" + from + "_" + to + f.Ext()
}

// HM renders seconds as HH:MM, hours unbounded.
func HM(secs int64) string {
	return fmt.Sprintf("%02d:%02d", secs/3600, (secs%3600)/60)
}

// Totals sums the generated stats of days.
func Totals(days []model.Day) model.GeneratedStats {
	var g model.GeneratedStats
	for _, d := range days {
		for _, b := range model.Buckets {
			g.Add(b, d.GeneratedStats.Get(b))
		}
	}
	return g
}

type bucketRow struct {
	name string
	secs int64
}

// nonZero lists the buckets with time in them, in column order.
func nonZero(g model.GeneratedStats) []bucketRow {
	var rows []bucketRow
	for _, b := range model.Buckets {
		if v := g.Get(b); v > 0 {
			rows = append(rows, bucketRow{name: string(b), secs: v})
		}
	}
	return rows
}

func flags(h model.Headers) string {
	var f []string
	if h.Status {
		f = append(f, "studied")
	}
	if h.Exercise {
		f = append(f, "exercised")
	}
	if h.Sleep {
		f = append(f, "slept")
	}
	if len(f) == 0 {
		return "-"
	}
	return strings.Join(f, ", ")
}

func percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}
