package convert

import (
	"log/slog"
	"strings"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/logutil"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/stats"
)

// Mapper resolves raw activity tokens to categories.
type Mapper struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewMapper(cfg *config.Config, logger *slog.Logger) *Mapper {
	return &Mapper{cfg: cfg, logger: logutil.OrDiscard(logger)}
}

// Label applies the text, duration-text and duration-threshold tables in
// that order. secs is the interval's duration measured from the cursor.
func (m *Mapper) Label(token string, secs int64) string {
	label := token
	if v, ok := m.cfg.TextMappings[label]; ok {
		label = v
	}
	if v, ok := m.cfg.TextDurationMappings[label]; ok {
		label = v
	}
	for _, r := range m.cfg.DurationMappings[label] {
		if secs < int64(r.LessThanMinutes)*60 {
			return r.Value
		}
	}
	return label
}

// Category splits label and applies the top category aliases.
func (m *Mapper) Category(label string) model.Category {
	c := model.ParseCategory(label)
	if alias, ok := m.cfg.TopCategoryAliases[c.Top]; ok {
		c.Top = alias
	}
	return c
}

// Map fills b.Spans from b.Intervals. Wake intervals move the cursor and are
// not emitted. The cursor starts where the previous day ended; an interval
// with nothing to start from only seeds it, which is reported to errs.
func (m *Mapper) Map(b *DayBlock, errs *diag.Set) {
	cursor, haveCursor := b.Carry, b.HasCarry
	b.Spans = b.Spans[:0]
	b.HasSleepFrom, b.WakeAt = false, 0
	woke := false
	for _, iv := range b.Intervals {
		if m.cfg.IsWake(iv.Token) {
			if !woke {
				b.SleepFrom, b.HasSleepFrom, b.WakeAt = cursor, haveCursor, len(b.Spans)
				woke = true
			}
			cursor, haveCursor = iv.End, true
			continue
		}

		start := cursor
		switch {
		case iv.HasStart:
			start = iv.Start
		case !haveCursor:
			if errs != nil {
				errs.Addf(iv.Line, diag.KindUnanchoredInterval,
					"%s: %s at %s has no start time and only marks where the next activity begins",
					b.Date.Format(model.DateLayout), iv.Token, iv.End)
			}
			cursor, haveCursor = iv.End, true
			continue
		}

		label := m.Label(strings.TrimSpace(iv.Token), start.Until(iv.End))
		b.Spans = append(b.Spans, stats.Span{
			Start:    start,
			End:      iv.End,
			Category: m.Category(label),
			Remark:   iv.Comment,
		})
		cursor, haveCursor = iv.End, true
	}
}
