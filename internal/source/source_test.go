package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/model"
)

func testGrammar() Grammar {
	return GrammarFromConfig(config.DefaultConfig())
}

func validate(t *testing.T, cfg *config.Config, text string) *diag.Set {
	t.Helper()
	errs := &diag.Set{}
	NewValidator(cfg, nil).Validate(strings.NewReader(text), errs)
	return errs
}

func kinds(s *diag.Set) []diag.Kind {
	var out []diag.Kind
	for _, e := range s.Items() {
		out = append(out, e.Kind)
	}
	return out
}

// ============================================================
// Line classifier
// ============================================================

func TestClassifyMarkers(t *testing.T) {
	g := testGrammar()

	y := Classify("y2025", 1, g, nil)
	assert.Equal(t, KindYear, y.Kind)
	assert.Equal(t, 2025, y.Year)

	d := Classify("0131", 2, g, nil)
	assert.Equal(t, KindDate, d.Kind)
	assert.Equal(t, 1, d.Month)
	assert.Equal(t, 31, d.Day)

	r := Classify("r   long day ", 3, g, nil)
	assert.Equal(t, KindRemark, r.Kind)
	assert.Equal(t, "long day", r.Remark)
}

func TestClassifyUnrecognized(t *testing.T) {
	g := testGrammar()
	for _, text := range []string{"y20251", "Y2025", "y202", "r", "hello", "2460study", "0600", "0600~abc", "0600 // only a comment", "060"} {
		ln := Classify(text, 1, g, nil)
		if text == "0600" {
			// Four digits alone are a date marker, never an interval.
			assert.Equal(t, KindDate, ln.Kind, text)
			continue
		}
		assert.Equal(t, KindUnrecognized, ln.Kind, text)
		assert.NotEmpty(t, ln.Problem, text)
	}
}

func TestClassifyIntervalForms(t *testing.T) {
	g := testGrammar()
	tests := []struct {
		text     string
		start    string
		hasStart bool
		end      string
		token    string
		comment  string
	}{
		{"0700study_code", "", false, "07:00", "study_code", ""},
		{"07:00study_code", "", false, "07:00", "study_code", ""},
		{"0600~0700study_code", "06:00", true, "07:00", "study_code", ""},
		{"06:00~07:00 study_code", "06:00", true, "07:00", "study_code", ""},
		{"0800meal // with friends", "", false, "08:00", "meal", "with friends"},
		{"0800meal#quick", "", false, "08:00", "meal", "quick"},
		{"0800meal; late", "", false, "08:00", "meal", "late"},
		{"0800meal ; a // b", "", false, "08:00", "meal", "a // b"},
	}
	for _, tt := range tests {
		ln := Classify(tt.text, 1, g, nil)
		require.Equal(t, KindInterval, ln.Kind, tt.text)
		iv := ln.Interval
		assert.Equal(t, tt.hasStart, iv.HasStart, tt.text)
		if tt.hasStart {
			assert.Equal(t, tt.start, iv.Start.String(), tt.text)
		}
		assert.Equal(t, tt.end, iv.End.String(), tt.text)
		assert.Equal(t, tt.token, iv.Token, tt.text)
		assert.Equal(t, tt.comment, iv.Comment, tt.text)
	}
}

func TestClassifyRejectsEmptyCategorySegment(t *testing.T) {
	g := testGrammar()
	for _, text := range []string{"0700study__code", "0700study_", "0700_study", "0600~0700_ // note"} {
		ln := Classify(text, 4, g, nil)
		assert.Equal(t, KindUnrecognized, ln.Kind, text)
		assert.Contains(t, ln.Problem, "empty category segment", text)
	}

	errs := validate(t, config.DefaultConfig(), "y2025\n0101\n0600起床\n0700study__code\n")
	got := errs.ByKind(diag.KindInvalidLineFormat)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
	assert.True(t, errs.HasErrors())
}

func TestClassifyUnknownTokenWarns(t *testing.T) {
	errs := &diag.Set{}
	ln := Classify("0900juggling", 7, testGrammar(), errs)
	assert.Equal(t, KindInterval, ln.Kind)
	require.Equal(t, 1, errs.Len())
	e := errs.Items()[0]
	assert.Equal(t, diag.KindUnrecognizedActivity, e.Kind)
	assert.Equal(t, diag.SeverityWarning, e.Severity)
	assert.Equal(t, 7, e.Line)
	assert.False(t, errs.HasErrors())
}

func TestClassifyWakeIsKnown(t *testing.T) {
	errs := &diag.Set{}
	ln := Classify("0600起床", 1, testGrammar(), errs)
	assert.Equal(t, KindInterval, ln.Kind)
	assert.Equal(t, "起床", ln.Interval.Token)
	assert.Equal(t, model.Clock(360), ln.Interval.End)
	assert.Equal(t, 0, errs.Len())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "interval", KindInterval.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

// ============================================================
// Structural validator
// ============================================================

func TestValidLogHasNoFindings(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0101\nr good day\n0600起床\n0700study_code\n\n0102\n0630起床\n0800meal\n")
	assert.Equal(t, 0, errs.Len(), errs.String())
}

func TestEmptyFileIsValid(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "\n   \n")
	assert.Equal(t, 0, errs.Len())
}

func TestMissingYearHeader(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "0101\n0600起床\n")
	got := errs.ByKind(diag.KindMissingYearHeader)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Line)
	assert.True(t, errs.HasErrors())
}

func TestRemarkOrdering(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\nr too early\n0101\n0600起床\nr too late\n")
	assert.Equal(t, []diag.Kind{diag.KindStructural, diag.KindRemarkAfterEvent}, kinds(errs))
	assert.Equal(t, 2, errs.Items()[0].Line)
	assert.Equal(t, 5, errs.Items()[1].Line)
}

func TestRemarkAllowedAgainOnNextDay(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0101\n0600起床\n0102\nr fine\n0700起床\n")
	assert.Equal(t, 0, errs.Len(), errs.String())
}

func TestActivityBeforeDate(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0600起床\n")
	require.Len(t, errs.ByKind(diag.KindStructural), 1)
}

func TestUnrecognizedLineDoesNotStop(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0101\nnonsense\n0600起床\n??\n")
	got := errs.ByKind(diag.KindInvalidLineFormat)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, 5, got[1].Line)
}

func TestDuplicateDate(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0101\n0600起床\n0101\n0600起床\n")
	got := errs.ByKind(diag.KindDateContinuity)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line)
	assert.True(t, errs.HasErrors())
}

func TestDateGoesBack(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0105\n0103\n")
	require.Len(t, errs.ByKind(diag.KindDateContinuity), 1)
}

func TestInvalidCalendarDate(t *testing.T) {
	errs := validate(t, config.DefaultConfig(), "y2025\n0229\n1301\n0000\n")
	assert.Len(t, errs.ByKind(diag.KindInvalidLineFormat), 3)

	leap := validate(t, config.DefaultConfig(), "y2024\n0229\n")
	assert.Equal(t, 0, leap.Len())
}

func TestMultiYearIncrement(t *testing.T) {
	cfg := config.DefaultConfig()
	ok := validate(t, cfg, "y2025\n1231\n0600起床\ny2026\n0101\n0600起床\n")
	assert.Equal(t, 0, ok.Len(), ok.String())

	bad := validate(t, cfg, "y2025\n0101\ny2027\n0101\n")
	got := bad.ByKind(diag.KindStructural)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "y2026")
}

func TestSingleMonthMode(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grammar = config.GrammarSingleMonth

	ok := validate(t, cfg, "y2025\n0201\n0600起床\n0202\n0600起床\n")
	assert.Equal(t, 0, ok.Len(), ok.String())

	errs := validate(t, cfg, "y2025\n0102\n0600起床\n0201\ny2026\n")
	assert.Len(t, errs.ByKind(diag.KindDateContinuity), 2)
	assert.Len(t, errs.ByKind(diag.KindStructural), 1)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffy2025\n0101\n0600起床\n"), 0o644))

	v := NewValidator(config.DefaultConfig(), nil)
	lines, errs := v.ValidateFile(path)
	assert.Equal(t, 0, errs.Len(), errs.String())
	assert.Len(t, lines, 3)

	lines, errs = v.ValidateFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Nil(t, lines)
	require.Len(t, errs.ByKind(diag.KindFileAccess), 1)
}
