// Package convert turns validated source lines into intermediate day records.
package convert

import (
	"strings"
	"time"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/source"
	"github.com/sadopc/timetracer/internal/stats"
)

// DayBlock is everything between one date marker and the next.
type DayBlock struct {
	Line      int
	Date      time.Time
	Remarks   []string
	Intervals []source.Interval

	// Getup is the end of the first wake interval. A block without one is a
	// continuation day.
	Getup        model.Clock
	HasGetup     bool
	Continuation bool

	// Carry is where the previous day's last interval ended; the mapper
	// starts its cursor there.
	Carry    model.Clock
	HasCarry bool

	// SleepFrom is the cursor when the first wake token was reached and
	// WakeAt the number of spans emitted before it. The linker puts the
	// overnight sleep there.
	SleepFrom    model.Clock
	HasSleepFrom bool
	WakeAt       int

	Spans    []stats.Span
	HasSleep bool
	SleepAt  int // index of the overnight sleep in Spans
}

// LastEnd returns the end of the block's last raw interval.
func (b *DayBlock) LastEnd() (model.Clock, bool) {
	if len(b.Intervals) == 0 {
		return 0, false
	}
	return b.Intervals[len(b.Intervals)-1].End, true
}

// Remark joins the block's remark lines.
func (b *DayBlock) Remark() string {
	return strings.Join(b.Remarks, "\n")
}

// Blocks groups classified lines into day blocks. Lines the validator would
// reject (a date before any year, an interval before any date) are skipped.
func Blocks(lines []source.Line, cfg *config.Config) []*DayBlock {
	var (
		blocks []*DayBlock
		cur    *DayBlock
		year   int
	)
	for _, ln := range lines {
		switch ln.Kind {
		case source.KindYear:
			year = ln.Year
		case source.KindDate:
			if year == 0 {
				cur = nil
				continue
			}
			cur = &DayBlock{
				Line:         ln.Number,
				Date:         time.Date(year, time.Month(ln.Month), ln.Day, 0, 0, 0, 0, time.UTC),
				Continuation: true,
			}
			blocks = append(blocks, cur)
		case source.KindRemark:
			if cur != nil {
				cur.Remarks = append(cur.Remarks, ln.Remark)
			}
		case source.KindInterval:
			if cur == nil {
				continue
			}
			iv := ln.Interval
			if cfg.IsWake(iv.Token) && cur.Continuation {
				cur.Getup, cur.HasGetup, cur.Continuation = iv.End, true, false
			}
			cur.Intervals = append(cur.Intervals, iv)
		}
	}
	return blocks
}
