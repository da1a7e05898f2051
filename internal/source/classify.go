// Package source reads the plain-text activity log: it classifies each line
// and checks the document-level ordering rules.
package source

import (
	"fmt"
	"strings"

	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/model"
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindYear
	KindDate
	KindRemark
	KindInterval
)

var kindNames = []string{"unrecognized", "year", "date", "remark", "interval"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Line is one classified, non-empty source line.
type Line struct {
	Number   int
	Text     string
	Kind     Kind
	Year     int
	Month    int
	Day      int
	Remark   string
	Interval Interval
	Problem  string // why the line is unrecognized
}

// Interval is an activity line. Start is only meaningful when HasStart is set
// (explicit "HHMM~HHMM" form); otherwise the start is implied by the previous
// interval or the wake time.
type Interval struct {
	Start    model.Clock
	HasStart bool
	End      model.Clock
	Token    string
	Comment  string
	Line     int
}

// Grammar is the configuration the classifier needs.
type Grammar struct {
	RemarkPrefix string
	IsKnown      func(token string) bool
}

var commentDelims = []string{"//", "#", ";"}

// Classify maps a trimmed, non-empty line to its kind. Unknown activity
// tokens are reported to errs as warnings; errs may be nil.
func Classify(text string, number int, g Grammar, errs *diag.Set) Line {
	ln := Line{Number: number, Text: text}

	switch {
	case isYear(text):
		ln.Kind = KindYear
		ln.Year = atoi(text[1:5])
		return ln
	case len(text) == 4 && isDigits(text):
		ln.Kind = KindDate
		ln.Month = atoi(text[0:2])
		ln.Day = atoi(text[2:4])
		return ln
	case g.RemarkPrefix != "" && strings.HasPrefix(text, g.RemarkPrefix):
		rest := strings.TrimSpace(text[len(g.RemarkPrefix):])
		if rest == "" {
			ln.Problem = "empty remark"
			return ln
		}
		ln.Kind = KindRemark
		ln.Remark = rest
		return ln
	}

	iv, problem, ok := parseInterval(text)
	if !ok {
		ln.Problem = problem
		return ln
	}
	ln.Kind = KindInterval
	iv.Line = number
	ln.Interval = iv
	if errs != nil && g.IsKnown != nil && !g.IsKnown(iv.Token) {
		errs.Addf(number, diag.KindUnrecognizedActivity, "unrecognized activity %q", iv.Token)
	}
	return ln
}

func parseInterval(text string) (Interval, string, bool) {
	var iv Interval
	first, n, ok := model.ScanClock(text)
	if !ok {
		return iv, fmt.Sprintf("unrecognized line %q", text), false
	}
	rest := text[n:]
	iv.End = first
	if strings.HasPrefix(rest, "~") {
		end, m, ok := model.ScanClock(rest[1:])
		if !ok {
			return iv, fmt.Sprintf("invalid time range in %q", text), false
		}
		iv.Start, iv.HasStart, iv.End = first, true, end
		rest = rest[1+m:]
	}

	cut := len(rest)
	for _, d := range commentDelims {
		if i := strings.Index(rest, d); i >= 0 && i < cut {
			cut = i
		}
	}
	iv.Token = strings.TrimSpace(rest[:cut])
	if cut < len(rest) {
		c := strings.TrimLeft(rest[cut:], "/#;")
		iv.Comment = strings.TrimSpace(c)
	}
	if iv.Token == "" {
		return iv, fmt.Sprintf("missing activity in %q", text), false
	}
	if !model.ValidLabel(iv.Token) {
		return iv, fmt.Sprintf("empty category segment in %q", iv.Token), false
	}
	return iv, "", true
}

func isYear(s string) bool {
	return len(s) == 5 && s[0] == 'y' && isDigits(s[1:])
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
