package source

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/logutil"
)

// GrammarFromConfig builds the classifier grammar from the converter config.
func GrammarFromConfig(cfg *config.Config) Grammar {
	return Grammar{RemarkPrefix: cfg.RemarkPrefix, IsKnown: cfg.IsKnown}
}

// Scan reads r line by line, skipping blank lines, and classifies every
// remaining line.
func Scan(r io.Reader, g Grammar, errs *diag.Set) ([]Line, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if n == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" {
			continue
		}
		lines = append(lines, Classify(text, n, g, errs))
	}
	if err := sc.Err(); err != nil {
		return lines, fmt.Errorf("read log: %w", err)
	}
	return lines, nil
}

// Validator enforces the ordering rules of a log file.
type Validator struct {
	grammar Grammar
	mode    string
	logger  *slog.Logger
}

func NewValidator(cfg *config.Config, logger *slog.Logger) *Validator {
	return &Validator{
		grammar: GrammarFromConfig(cfg),
		mode:    cfg.Grammar,
		logger:  logutil.OrDiscard(logger),
	}
}

// ValidateFile opens path and validates it. Failing to read the file is
// reported as a FileAccess finding; the returned lines are nil in that case.
func (v *Validator) ValidateFile(path string) ([]Line, *diag.Set) {
	errs := &diag.Set{}
	f, err := os.Open(path)
	if err != nil {
		errs.Addf(0, diag.KindFileAccess, "open %s: %v", path, err)
		return nil, errs
	}
	defer f.Close()
	return v.Validate(f, errs), errs
}

// Validate classifies r and checks the structure; every finding is added to
// errs. The classified lines are returned for the converter.
func (v *Validator) Validate(r io.Reader, errs *diag.Set) []Line {
	lines, err := Scan(r, v.grammar, errs)
	if err != nil {
		errs.Addf(0, diag.KindFileAccess, "%v", err)
		return nil
	}
	v.Check(lines, errs)
	v.logger.Debug("source validated", "lines", len(lines), "findings", errs.Len())
	return lines
}

type state struct {
	seenYear        bool
	seenDateInBlock bool
	seenEventInDay  bool
	year            int
	firstMonth      time.Month
	lastDate        time.Time
}

// Check runs the structural state machine over classified lines.
func (v *Validator) Check(lines []Line, errs *diag.Set) {
	var st state
	for _, ln := range lines {
		switch ln.Kind {
		case KindYear:
			v.year(&st, ln, errs)
		case KindDate:
			v.date(&st, ln, errs)
		case KindRemark:
			if !st.seenDateInBlock {
				errs.Add(ln.Number, diag.KindStructural, "remark before any date marker")
			} else if st.seenEventInDay {
				errs.Add(ln.Number, diag.KindRemarkAfterEvent, "remark after an activity of the same day")
			}
		case KindInterval:
			if !st.seenDateInBlock {
				errs.Add(ln.Number, diag.KindStructural, "activity before any date marker")
				continue
			}
			st.seenEventInDay = true
		default:
			errs.Add(ln.Number, diag.KindInvalidLineFormat, ln.Problem)
		}
	}
	if len(lines) > 0 && !st.seenYear {
		errs.Add(lines[0].Number, diag.KindMissingYearHeader, "file does not start with a year marker")
	}
}

func (v *Validator) year(st *state, ln Line, errs *diag.Set) {
	if st.seenYear {
		switch v.mode {
		case config.GrammarSingleMonth:
			errs.Addf(ln.Number, diag.KindStructural, "second year marker y%04d, a file holds one year", ln.Year)
		default:
			if ln.Year != st.year+1 {
				errs.Addf(ln.Number, diag.KindStructural, "year marker y%04d must be y%04d", ln.Year, st.year+1)
			}
		}
	}
	st.seenYear = true
	st.year = ln.Year
	st.seenDateInBlock = false
	st.seenEventInDay = false
}

func (v *Validator) date(st *state, ln Line, errs *diag.Set) {
	defer func() {
		st.seenDateInBlock = true
		st.seenEventInDay = false
	}()

	if !st.seenYear {
		errs.Addf(ln.Number, diag.KindMissingYearHeader, "date marker %s before any year marker", ln.Text)
		return
	}
	date := time.Date(st.year, time.Month(ln.Month), ln.Day, 0, 0, 0, 0, time.UTC)
	if ln.Month < 1 || ln.Month > 12 || date.Month() != time.Month(ln.Month) || date.Day() != ln.Day {
		errs.Addf(ln.Number, diag.KindInvalidLineFormat, "invalid date %s for year %d", ln.Text, st.year)
		return
	}

	if v.mode == config.GrammarSingleMonth {
		if st.firstMonth == 0 {
			st.firstMonth = date.Month()
			if ln.Day != 1 {
				errs.Addf(ln.Number, diag.KindDateContinuity, "first date %s must be the 1st of the month", ln.Text)
			}
		} else if date.Month() != st.firstMonth {
			errs.Addf(ln.Number, diag.KindDateContinuity, "date %s leaves month %02d", ln.Text, int(st.firstMonth))
		}
	}

	if !st.lastDate.IsZero() {
		switch {
		case date.Equal(st.lastDate):
			errs.Addf(ln.Number, diag.KindDateContinuity, "duplicate date %s", ln.Text)
		case date.Before(st.lastDate):
			errs.Addf(ln.Number, diag.KindDateContinuity, "date %s goes back from %s", ln.Text, st.lastDate.Format("0102"))
		}
	}
	if date.After(st.lastDate) {
		st.lastDate = date
	}
}
