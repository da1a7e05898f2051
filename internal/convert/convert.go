package convert

import (
	"io"
	"log/slog"

	"github.com/sadopc/timetracer/internal/config"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/logutil"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/source"
	"github.com/sadopc/timetracer/internal/stats"
)

// Converter runs mapping, linking and aggregation over a validated log.
type Converter struct {
	cfg       *config.Config
	validator *source.Validator
	mapper    *Mapper
	linker    Linker
	agg       *stats.Aggregator
	logger    *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*Converter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger = logutil.OrDiscard(logger)
	return &Converter{
		cfg:       cfg,
		validator: source.NewValidator(cfg, logger),
		mapper:    NewMapper(cfg, logger),
		agg:       stats.New(stats.DefaultRules, loc),
		logger:    logger,
	}, nil
}

// Convert builds one day record per date marker. Mapping findings are added
// to errs, which may be nil.
func (c *Converter) Convert(lines []source.Line, errs *diag.Set) []model.Day {
	blocks := Blocks(lines, c.cfg)
	days := make([]model.Day, 0, len(blocks))

	var prev *DayBlock
	for _, b := range blocks {
		c.linker.Prepare(prev, b)
		c.mapper.Map(b, errs)
		c.linker.Link(b)

		getup := model.NullTime
		if b.HasGetup {
			getup = b.Getup.String()
		}
		carried := 0
		switch {
		case b.HasSleep:
			carried = b.SleepAt + 1
		case b.Continuation && b.HasCarry && len(b.Spans) > 0:
			carried = 1
		}
		days = append(days, c.agg.Build(stats.Day{
			Date:    b.Date,
			Getup:   getup,
			Remark:  b.Remark(),
			Sleep:   b.HasSleep,
			Carried: carried,
			Spans:   b.Spans,
		}))
		prev = b
	}
	c.logger.Debug("converted", "days", len(days))
	return days
}

// ConvertReader validates r and converts it. No days are returned when the
// source has error-severity findings.
func (c *Converter) ConvertReader(r io.Reader) ([]model.Day, *diag.Set) {
	errs := &diag.Set{}
	lines := c.validator.Validate(r, errs)
	if errs.HasErrors() {
		return nil, errs
	}
	return c.Convert(lines, errs), errs
}

// ConvertFile is ConvertReader over a file.
func (c *Converter) ConvertFile(path string) ([]model.Day, *diag.Set) {
	lines, errs := c.validator.ValidateFile(path)
	if errs.HasErrors() {
		return nil, errs
	}
	return c.Convert(lines, errs), errs
}
