package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetracer/internal/model"
)

func sampleDay() model.Day {
	return model.Day{
		Headers: model.Headers{
			Date:          "2025-01-02",
			Status:        true,
			Sleep:         true,
			Getup:         "07:00",
			Remark:        "deadline_week & 100%",
			ActivityCount: 3,
		},
		Activities: []model.Activity{
			{LogicalID: 202501020001, StartTime: "23:30", EndTime: "07:00", DurationSeconds: 27000, Category: model.ParseCategory("sleep_night")},
			{LogicalID: 202501020002, StartTime: "07:00", EndTime: "09:00", DurationSeconds: 7200, Category: model.ParseCategory("study_math")},
			{LogicalID: 202501020003, StartTime: "09:00", EndTime: "09:30", DurationSeconds: 1800, Category: model.ParseCategory("study_physics"), Remark: "ch. 3"},
		},
		GeneratedStats: model.GeneratedStats{SleepTime: 27000, SleepNightTime: 27000, StudyTime: 9000},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"LaTeX", FormatLaTeX},
		{"tex", FormatLaTeX},
		{" typst ", FormatTypst},
		{"typ", FormatTypst},
		{"text", FormatText},
		{"txt", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormatStringAndExt(t *testing.T) {
	for _, f := range Formats {
		assert.NotEmpty(t, f.String())
		assert.True(t, strings.HasPrefix(f.Ext(), "."))
	}
	assert.Equal(t, "format(42)", Format(42).String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "timetracer-2025-01-02.md", FileName(FormatMarkdown, "2025-01-02", ""))
	assert.Equal(t, "timetracer-2025-01-02.tex", FileName(FormatLaTeX, "2025-01-02", "2025-01-02"))
	assert.Equal(t, "timetracer-2025-01-01_2025-01-31.typ", FileName(FormatTypst, "2025-01-01", "2025-01-31"))
}

func TestHM(t *testing.T) {
	assert.Equal(t, "00:00", HM(0))
	assert.Equal(t, "01:30", HM(5400))
	assert.Equal(t, "27:05", HM(27*3600+5*60+59))
}

func TestTree(t *testing.T) {
	tree := DayTree(sampleDay())
	assert.Equal(t, int64(36000), tree.Duration)

	top := tree.Sorted()
	require.Len(t, top, 2)
	assert.Equal(t, "sleep", top[0].Name)
	assert.Equal(t, "study", top[1].Name)
	assert.Equal(t, int64(9000), top[1].Duration)

	var names []string
	tree.Walk(func(n *Node, depth int) {
		names = append(names, strings.Repeat(">", depth)+n.Name)
	})
	assert.Equal(t, []string{"sleep", ">night", "study", ">math", ">physics"}, names)
}

func TestTotals(t *testing.T) {
	d := sampleDay()
	g := Totals([]model.Day{d, d})
	assert.Equal(t, int64(54000), g.SleepTime)
	assert.Equal(t, int64(18000), g.StudyTime)
	assert.Zero(t, g.GamingTime)
}

func TestDayReports(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatMarkdown, []string{"# 2025-01-02", "- Getup: 07:00", "studied, slept", `| 07:00 | 09:00 | study\_math | 02:00 |  |`, `deadline\_week`, "| sleepTime | 07:30 |", "**study** 02:30"}},
		{FormatLaTeX, []string{`\section*{2025-01-02}`, `deadline\_week \& 100\%`, `study\_math & 02:00`, `\begin{itemize}`, `\end{itemize}`}},
		{FormatTypst, []string{"= 2025-01-02", "#table(", `[study\_math], [02:00]`, "- *study* 02:30"}},
		{FormatText, []string{"2025-01-02", "getup 07:00", "study_math", "ch. 3", "Statistics", "physics"}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			f, err := New(tt.format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, f.Day(&buf, sampleDay()))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.NotContains(t, buf.String(), "gamingTime")
		})
	}
}

func TestLatexItemizeBalanced(t *testing.T) {
	f, err := New(FormatLaTeX)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Day(&buf, sampleDay()))
	out := buf.String()
	assert.Equal(t, strings.Count(out, `\begin{itemize}`), strings.Count(out, `\end{itemize}`))
}

func TestPeriodReports(t *testing.T) {
	d := sampleDay()
	tree := NewTree()
	for _, a := range d.Activities {
		tree.Add(a.Category.Path(), a.DurationSeconds)
	}
	p := Period{From: "2025-01-01", To: "2025-01-31", Days: []model.Day{d}, Tree: tree}

	for _, format := range Formats {
		t.Run(format.String(), func(t *testing.T) {
			f, err := New(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, f.Period(&buf, p))
			out := buf.String()
			assert.Contains(t, out, "2025-01-01")
			assert.Contains(t, out, "2025-01-31")
			assert.Contains(t, out, "10:00")
			assert.Contains(t, out, "75.0")
		})
	}
}

func TestEmptyDay(t *testing.T) {
	f, err := New(FormatMarkdown)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Day(&buf, model.Day{Headers: model.Headers{Date: "2025-01-03", Getup: model.NullTime}}))
	assert.Contains(t, buf.String(), "No activities.")
	assert.Contains(t, buf.String(), "- Flags: -")
	assert.NotContains(t, buf.String(), "## Projects")
}

func TestNewUnknown(t *testing.T) {
	_, err := New(Format(9))
	assert.Error(t, err)
}
