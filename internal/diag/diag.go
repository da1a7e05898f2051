// Package diag collects validation findings for a single input file.
//
// Every validation stage appends to one Set instead of returning on the first
// problem, so a run reports the complete list of defects at once.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindFileAccess           Kind = "FileAccess"
	KindStructural           Kind = "Structural"
	KindMissingYearHeader    Kind = "Source_MissingYearHeader"
	KindInvalidLineFormat    Kind = "Source_InvalidLineFormat"
	KindRemarkAfterEvent     Kind = "Source_RemarkAfterEvent"
	KindUnrecognizedActivity Kind = "UnrecognizedActivity"
	KindUnanchoredInterval   Kind = "UnanchoredInterval"
	KindTimeDiscontinuity    Kind = "TimeDiscontinuity"
	KindDateContinuity       Kind = "DateContinuity"
	KindMissingSleepNight    Kind = "MissingSleepNight"
	KindLogical              Kind = "Logical"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// severityOf reports the default severity for a kind.
func severityOf(k Kind) Severity {
	switch k {
	case KindUnrecognizedActivity, KindUnanchoredInterval:
		return SeverityWarning
	}
	return SeverityError
}

// Error is one finding. Line is 1-based; 0 means the finding is not tied to a
// source line (e.g. checks over decoded JSON).
type Error struct {
	Line     int
	Kind     Kind
	Severity Severity
	Message  string
}

func (e Error) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: [%s] %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

type key struct {
	line int
	kind Kind
	msg  string
}

// Set is an ordered set of findings keyed by (line, kind, message).
// The zero value is ready to use.
type Set struct {
	items map[key]Error
}

func (s *Set) Add(line int, kind Kind, message string) {
	if s.items == nil {
		s.items = make(map[key]Error)
	}
	k := key{line: line, kind: kind, msg: message}
	if _, ok := s.items[k]; ok {
		return
	}
	s.items[k] = Error{Line: line, Kind: kind, Severity: severityOf(kind), Message: message}
}

func (s *Set) Addf(line int, kind Kind, format string, args ...any) {
	s.Add(line, kind, fmt.Sprintf(format, args...))
}

// Merge copies every finding of other into s.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, e := range other.items {
		s.Add(e.Line, e.Kind, e.Message)
	}
}

func (s *Set) Len() int { return len(s.items) }

// HasErrors reports whether the set contains anything above warning level.
func (s *Set) HasErrors() bool {
	for _, e := range s.items {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of findings with the given severity.
func (s *Set) Count(sev Severity) int {
	n := 0
	for _, e := range s.items {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Items returns the findings sorted by line, then kind, then message.
func (s *Set) Items() []Error {
	out := make([]Error, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
	return out
}

// ByKind returns the findings of one kind in set order.
func (s *Set) ByKind(kind Kind) []Error {
	var out []Error
	for _, e := range s.Items() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *Set) String() string {
	var b strings.Builder
	for _, e := range s.Items() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
