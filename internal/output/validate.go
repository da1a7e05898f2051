// Package output re-validates intermediate day records. It works on decoded
// records only, so it checks converter output and externally produced files
// the same way.
package output

import (
	"log/slog"
	"time"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/logutil"
	"github.com/sadopc/timetracer/internal/model"
)

type Validator struct {
	grammar     string
	dateCheck   string
	sleepAnchor string
	logger      *slog.Logger
}

func NewValidator(cfg *config.Config, logger *slog.Logger) *Validator {
	return &Validator{
		grammar:     cfg.Grammar,
		dateCheck:   cfg.DateCheck,
		sleepAnchor: cfg.SleepAnchor,
		logger:      logutil.OrDiscard(logger),
	}
}

// Validate runs every check over days and adds the findings to errs.
func (v *Validator) Validate(days []model.Day, errs *diag.Set) {
	for _, d := range days {
		v.timeContinuity(d, errs)
		v.sleepNight(d, errs)
		v.categories(d, errs)
	}
	v.dateContinuity(days, errs)
	v.logger.Debug("output validated", "days", len(days), "findings", errs.Len())
}

func (v *Validator) timeContinuity(d model.Day, errs *diag.Set) {
	if len(d.Activities) == 0 {
		return
	}
	for i, a := range d.Activities {
		if _, err := model.ParseClock(a.StartTime); err != nil {
			errs.Addf(0, diag.KindLogical, "%s: activity %d: %v", d.Headers.Date, a.LogicalID, err)
			return
		}
		if _, err := model.ParseClock(a.EndTime); err != nil {
			errs.Addf(0, diag.KindLogical, "%s: activity %d: %v", d.Headers.Date, a.LogicalID, err)
			return
		}
		if a.EndTimestamp < a.StartTimestamp {
			errs.Addf(0, diag.KindLogical, "%s: activity %d ends before it starts", d.Headers.Date, a.LogicalID)
		}
		if i > 0 && a.LogicalID <= d.Activities[i-1].LogicalID {
			errs.Addf(0, diag.KindLogical, "%s: activity id %d is not increasing", d.Headers.Date, a.LogicalID)
		}
	}

	expected := d.Headers.Getup
	anchored := expected != "" && expected != model.NullTime
	if !anchored {
		expected = d.Activities[0].StartTime
	} else if _, err := model.ParseClock(expected); err != nil {
		errs.Addf(0, diag.KindLogical, "%s: getup: %v", d.Headers.Date, err)
		return
	}

	acts := d.Activities
	if anchored && d.Headers.Sleep && v.sleepAnchor == config.SleepAnchorFirst {
		// The overnight sleep ends at getup; whatever precedes it carries on
		// from the previous day.
		if overnight(acts, expected) < 0 {
			errs.Addf(0, diag.KindTimeDiscontinuity, "%s: no activity ends at getup %s",
				d.Headers.Date, expected)
			return
		}
		expected = acts[0].StartTime
	}
	for _, a := range acts {
		if a.StartTime != expected {
			errs.Addf(0, diag.KindTimeDiscontinuity, "%s: activity %d starts at %s, expected %s",
				d.Headers.Date, a.LogicalID, a.StartTime, expected)
			return
		}
		expected = a.EndTime
	}
}

// categories flags activity paths the project store cannot resolve.
func (v *Validator) categories(d model.Day, errs *diag.Set) {
	for _, a := range d.Activities {
		if !a.Category.Valid() {
			errs.Addf(0, diag.KindLogical, "%s: activity %d has an invalid category %q",
				d.Headers.Date, a.LogicalID, a.Category.Path())
		}
	}
}

func (v *Validator) sleepNight(d model.Day, errs *diag.Set) {
	if !d.Headers.Sleep {
		return
	}
	if len(d.Activities) == 0 {
		errs.Addf(0, diag.KindMissingSleepNight, "%s: marked slept but has no activities", d.Headers.Date)
		return
	}
	a := d.Activities[0]
	where := "overnight"
	if v.sleepAnchor == config.SleepAnchorLast {
		a = d.Activities[len(d.Activities)-1]
		where = "last"
	} else if k := overnight(d.Activities, d.Headers.Getup); k >= 0 {
		a = d.Activities[k]
	}
	if a.Category.Top != "sleep" {
		errs.Addf(0, diag.KindMissingSleepNight, "%s: marked slept but %s activity is %s",
			d.Headers.Date, where, a.Category.Path())
	}
}

// overnight returns the index of the first activity ending at getup, or -1.
func overnight(acts []model.Activity, getup string) int {
	for i, a := range acts {
		if a.EndTime == getup {
			return i
		}
	}
	return -1
}

// dateContinuity flags missing and duplicate dates. A single-month file is
// checked from the 1st of its month; a multi-year log from its first date.
// With DateCheckFull the range extends to the end of the last month.
func (v *Validator) dateContinuity(days []model.Day, errs *diag.Set) {
	if v.dateCheck == config.DateCheckNone || len(days) == 0 {
		return
	}

	seen := make(map[string]bool)
	var first, lo, hi time.Time
	for _, d := range days {
		t, err := d.Headers.Time()
		if err != nil {
			errs.Addf(0, diag.KindLogical, "%v", err)
			continue
		}
		if first.IsZero() {
			first = t
		}
		if v.grammar == config.GrammarSingleMonth && (t.Year() != first.Year() || t.Month() != first.Month()) {
			errs.Addf(0, diag.KindDateContinuity, "%s is outside %s", d.Headers.Date, first.Format("2006-01"))
			continue
		}
		key := t.Format(model.DateLayout)
		if seen[key] {
			errs.Addf(0, diag.KindDateContinuity, "duplicate date %s", key)
		}
		seen[key] = true
		if lo.IsZero() || t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	if first.IsZero() {
		return
	}

	from := lo
	if v.grammar == config.GrammarSingleMonth || v.dateCheck == config.DateCheckFull {
		from = time.Date(lo.Year(), lo.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	to := hi
	if v.dateCheck == config.DateCheckFull {
		to = time.Date(hi.Year(), hi.Month(), DaysIn(hi.Year(), hi.Month()), 0, 0, 0, 0, time.UTC)
	}
	for t := from; !t.After(to); t = t.AddDate(0, 0, 1) {
		if key := t.Format(model.DateLayout); !seen[key] {
			errs.Addf(0, diag.KindDateContinuity, "missing date %s", key)
		}
	}
}

// DaysIn returns the length of a month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
