// Package stats turns a linked day into the intermediate day record: it
// numbers the activities, computes durations and absolute timestamps, and
// folds durations into the GeneratedStats buckets.
package stats

import (
	"strings"
	"time"

	"github.com/sadopc/timetracer/internal/model"
)

// Span is one mapped activity before aggregation.
type Span struct {
	Start    model.Clock
	End      model.Clock
	Category model.Category
	Remark   string
}

// Rule adds an activity's duration to Bucket when the top category matches
// and, if Subs is non-empty, at least one of Subs is among its sub-categories.
type Rule struct {
	Top    string
	Subs   []string
	Bucket model.Bucket
}

func (r Rule) matches(c model.Category) bool {
	if r.Top != c.Top {
		return false
	}
	return len(r.Subs) == 0 || c.HasSub(r.Subs...)
}

// DefaultRules is the bucket table used by the converter.
var DefaultRules = []Rule{
	{Top: "sleep", Bucket: model.BucketSleep},
	{Top: "sleep", Subs: []string{"night"}, Bucket: model.BucketSleepNight},
	{Top: "sleep", Subs: []string{"day"}, Bucket: model.BucketSleepDay},
	{Top: "exercise", Bucket: model.BucketTotalExercise},
	{Top: "exercise", Subs: []string{"cardio"}, Bucket: model.BucketCardio},
	{Top: "exercise", Subs: []string{"anaerobic"}, Bucket: model.BucketAnaerobic},
	{Top: "routine", Subs: []string{"grooming"}, Bucket: model.BucketGrooming},
	{Top: "routine", Subs: []string{"toilet"}, Bucket: model.BucketToilet},
	{Top: "recreation", Subs: []string{"game"}, Bucket: model.BucketGaming},
	{Top: "study", Bucket: model.BucketStudy},
	{Top: "recreation", Bucket: model.BucketRecreation},
}

// Day is a fully linked day ready for aggregation.
// Carried is the number of leading spans that belong to the night before the
// day: the activities up to and including the overnight sleep, or the first
// span of a continuation day. When one of them crosses midnight they start on
// the previous calendar day.
type Day struct {
	Date    time.Time
	Getup   string
	Remark  string
	Sleep   bool
	Carried int
	Spans   []Span
}

type Aggregator struct {
	rules []Rule
	loc   *time.Location
}

// New returns an aggregator; nil rules means DefaultRules and a nil location
// means time.Local.
func New(rules []Rule, loc *time.Location) *Aggregator {
	if rules == nil {
		rules = DefaultRules
	}
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{rules: rules, loc: loc}
}

// Duration returns the seconds between two clocks, wrapping past midnight.
func Duration(start, end model.Clock) int64 {
	return start.Until(end)
}

// SequenceID returns YYYYMMDD*10000 + ordinal.
func SequenceID(date time.Time, ordinal int) int64 {
	return DateNumber(date)*10000 + int64(ordinal)
}

// DateNumber returns the date as the integer YYYYMMDD.
func DateNumber(date time.Time) int64 {
	y, m, d := date.Date()
	return int64(y)*10000 + int64(m)*100 + int64(d)
}

// Fold applies every matching rule to every span.
func (a *Aggregator) Fold(spans []Span) model.GeneratedStats {
	var g model.GeneratedStats
	for _, s := range spans {
		d := Duration(s.Start, s.End)
		for _, r := range a.rules {
			if r.matches(s.Category) {
				g.Add(r.Bucket, d)
			}
		}
	}
	return g
}

func (a *Aggregator) timestamp(date time.Time, dayOffset int, c model.Clock) int64 {
	y, m, d := date.Date()
	return time.Date(y, m, d+dayOffset, int(c)/60, int(c)%60, 0, 0, a.loc).Unix()
}

// Build produces the intermediate record for one day.
func (a *Aggregator) Build(in Day) model.Day {
	day := model.Day{
		Headers: model.Headers{
			Date:          in.Date.Format(model.DateLayout),
			Sleep:         in.Sleep,
			Getup:         in.Getup,
			Remark:        in.Remark,
			ActivityCount: len(in.Spans),
		},
		Activities:     make([]model.Activity, 0, len(in.Spans)),
		GeneratedStats: a.Fold(in.Spans),
	}
	if day.Headers.Getup == "" {
		day.Headers.Getup = model.NullTime
	}

	offset := 0
	for _, s := range in.Spans[:min(in.Carried, len(in.Spans))] {
		if s.End < s.Start {
			offset = -1
			break
		}
	}
	for i, s := range in.Spans {
		startTs := a.timestamp(in.Date, offset, s.Start)
		if s.End < s.Start {
			offset++
		}
		endTs := a.timestamp(in.Date, offset, s.End)

		day.Activities = append(day.Activities, model.Activity{
			LogicalID:       SequenceID(in.Date, i+1),
			StartTimestamp:  startTs,
			EndTimestamp:    endTs,
			StartTime:       s.Start.String(),
			EndTime:         s.End.String(),
			DurationSeconds: Duration(s.Start, s.End),
			Category:        s.Category,
			Remark:          s.Remark,
		})

		if s.Category.Top == "study" || strings.Contains(s.Category.Path(), "study") {
			day.Headers.Status = true
		}
		if s.Category.Top == "exercise" || strings.Contains(s.Category.Path(), "exercise") {
			day.Headers.Exercise = true
		}
	}
	return day
}
