package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sadopc/timetracer/internal/convert"
	"github.com/sadopc/timetracer/internal/diag"
	"github.com/sadopc/timetracer/internal/export"
	"github.com/sadopc/timetracer/internal/model"
	"github.com/sadopc/timetracer/internal/output"
	"github.com/sadopc/timetracer/internal/source"
)

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// validateSource runs the classifier and structural validator over one log.
func (e *env) validateSource(path string) ([]source.Line, *diag.Set) {
	e.metrics.FilesRead.Inc()
	lines, errs := source.NewValidator(e.cfg, e.logger).ValidateFile(path)
	e.metrics.LinesRead.Add(float64(len(lines)))
	return lines, errs
}

// convertFile validates a log, converts it and validates the output. Days
// are nil when the source has errors.
func (e *env) convertFile(path string) ([]model.Day, *diag.Set, error) {
	lines, errs := e.validateSource(path)
	if errs.HasErrors() {
		e.metrics.ObserveFindings(errs)
		return nil, errs, nil
	}

	conv, err := convert.New(e.cfg, e.logger)
	if err != nil {
		return nil, errs, err
	}
	days := conv.Convert(lines, errs)
	output.NewValidator(e.cfg, e.logger).Validate(days, errs)

	e.metrics.ObserveDays(days)
	e.metrics.ObserveFindings(errs)
	e.logger.Info("converted", "file", path, "days", len(days), "findings", errs.Len())
	return days, errs, nil
}

// loadJSON reads intermediate records and runs the output validator.
func (e *env) loadJSON(path string) ([]model.Day, *diag.Set, error) {
	e.metrics.FilesRead.Inc()
	days, err := export.LoadJSON(path)
	if err != nil {
		return nil, nil, err
	}
	errs := &diag.Set{}
	output.NewValidator(e.cfg, e.logger).Validate(days, errs)
	e.metrics.ObserveFindings(errs)
	return days, errs, nil
}

// load dispatches on the file extension: .json is intermediate records,
// anything else a source log.
func (e *env) load(path string) ([]model.Day, *diag.Set, error) {
	if isJSON(path) {
		return e.loadJSON(path)
	}
	return e.convertFile(path)
}

// printFindings writes errs and returns ErrFindings when any is an error.
func printFindings(w io.Writer, path string, errs *diag.Set) error {
	if errs == nil || errs.Len() == 0 {
		return nil
	}
	for _, f := range errs.Items() {
		loc := path
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", path, f.Line)
		}
		sev := warningStyle.Render(f.Severity.String())
		if f.Severity == diag.SeverityError {
			sev = errorStyle.Render(f.Severity.String())
		}
		fmt.Fprintf(w, "%s: %s [%s] %s\n", loc, sev, f.Kind, f.Message)
	}
	nErr, nWarn := errs.Count(diag.SeverityError), errs.Count(diag.SeverityWarning)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s: %d errors, %d warnings", path, nErr, nWarn)))
	if nErr > 0 {
		return ErrFindings
	}
	return nil
}
