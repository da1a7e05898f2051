package convert

import (
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/stats"
)

// SleepNightLabel is the category of the synthesized overnight sleep.
const SleepNightLabel = "sleep_night"

// Linker stitches adjacent day blocks together.
type Linker struct{}

// Prepare runs before mapping: every day starts where the previous day's
// last interval ended.
func (Linker) Prepare(prev, day *DayBlock) {
	day.Carry, day.HasCarry = 0, false
	if prev == nil {
		return
	}
	day.Carry, day.HasCarry = prev.LastEnd()
}

// Link runs after mapping: the gap between the last interval before the wake
// token and getup becomes a sleep_night span ahead of the waking activities.
// When that gap is empty an explicitly logged sleep ending at getup counts.
func (Linker) Link(day *DayBlock) {
	day.HasSleep, day.SleepAt = false, 0
	if day.Continuation || !day.HasGetup || !day.HasCarry || !day.HasSleepFrom {
		return
	}
	if day.SleepFrom == day.Getup {
		if k := day.WakeAt - 1; k >= 0 && day.Spans[k].Category.Top == "sleep" {
			day.HasSleep, day.SleepAt = true, k
		}
		return
	}

	sleep := stats.Span{
		Start:    day.SleepFrom,
		End:      day.Getup,
		Category: model.ParseCategory(SleepNightLabel),
	}
	spans := make([]stats.Span, 0, len(day.Spans)+1)
	spans = append(spans, day.Spans[:day.WakeAt]...)
	spans = append(spans, sleep)
	spans = append(spans, day.Spans[day.WakeAt:]...)
	day.Spans = spans
	day.HasSleep, day.SleepAt = true, day.WakeAt
}
