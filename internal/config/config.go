// Package config loads the converter configuration: the grammar mode, the
// remark prefix, wake keywords and the activity mapping tables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/timetracer/internal/model"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Grammar modes for the structural validator.
const (
	GrammarMultiYear   = "multi_year"
	GrammarSingleMonth = "single_month"
)

// Date continuity check modes for the output validator.
const (
	DateCheckNone       = "none"
	DateCheckContinuity = "continuity"
	DateCheckFull       = "full"
)

// Position of a day's overnight sleep activity.
const (
	SleepAnchorFirst = "first"
	SleepAnchorLast  = "last"
)

// Config is the converter configuration.
type Config struct {
	Grammar              string                    `yaml:"grammar" validate:"oneof=multi_year single_month"`
	RemarkPrefix         string                    `yaml:"remark_prefix" validate:"required"`
	WakeKeywords         []string                  `yaml:"wake_keywords" validate:"required,min=1,dive,required"`
	TopCategories        []string                  `yaml:"top_categories" validate:"dive,required"`
	TextMappings         map[string]string         `yaml:"text_mappings" validate:"dive,keys,required,endkeys,required"`
	TextDurationMappings map[string]string         `yaml:"text_duration_mappings" validate:"dive,keys,required,endkeys,required"`
	DurationMappings     map[string][]DurationRule `yaml:"duration_mappings" validate:"dive,keys,required,endkeys,dive"`
	TopCategoryAliases   map[string]string         `yaml:"top_category_aliases" validate:"dive,keys,required,endkeys,required"`
	DateCheck            string                    `yaml:"date_check" validate:"oneof=none continuity full"`
	SleepAnchor          string                    `yaml:"sleep_anchor" validate:"oneof=first last"`
	Timezone             string                    `yaml:"timezone"`
}

// DurationRule replaces a label with Value when the interval is shorter than
// LessThanMinutes. Rules for one label are tried in file order.
type DurationRule struct {
	LessThanMinutes int    `yaml:"less_than_minutes" validate:"gt=0"`
	Value           string `yaml:"value" validate:"required"`
}

var validate = validator.New()

// DefaultConfig returns a configuration that accepts the sample logs in the
// test suites and a typical daily log.
func DefaultConfig() *Config {
	return &Config{
		Grammar:      GrammarMultiYear,
		RemarkPrefix: "r ",
		WakeKeywords: []string{"起床", "wake"},
		TopCategories: []string{
			"study", "exercise", "sleep", "routine", "recreation", "meal", "work", "commute",
		},
		TextMappings: map[string]string{
			"code":   "study_code",
			"run":    "exercise_cardio",
			"lift":   "exercise_anaerobic",
			"nap":    "sleep_day",
			"game":   "recreation_game",
			"toilet": "routine_toilet",
		},
		TextDurationMappings: map[string]string{
			"洗澡":   "routine_grooming",
			"wash": "routine_grooming",
		},
		DurationMappings: map[string][]DurationRule{
			"routine_grooming": {
				{LessThanMinutes: 10, Value: "routine_grooming_quick"},
			},
		},
		TopCategoryAliases: map[string]string{
			"rest": "recreation",
		},
		DateCheck:   DateCheckContinuity,
		SleepAnchor: SleepAnchorFirst,
		Timezone:    "Local",
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// default values; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills unset keys from DefaultConfig and validates the
// result. A table present in the file replaces the default table entirely.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Grammar == "" {
		c.Grammar = d.Grammar
	}
	if c.RemarkPrefix == "" {
		c.RemarkPrefix = d.RemarkPrefix
	}
	if c.WakeKeywords == nil {
		c.WakeKeywords = d.WakeKeywords
	}
	if c.TopCategories == nil {
		c.TopCategories = d.TopCategories
	}
	if c.TextMappings == nil {
		c.TextMappings = d.TextMappings
	}
	if c.TextDurationMappings == nil {
		c.TextDurationMappings = d.TextDurationMappings
	}
	if c.DurationMappings == nil {
		c.DurationMappings = d.DurationMappings
	}
	if c.TopCategoryAliases == nil {
		c.TopCategoryAliases = d.TopCategoryAliases
	}
	if c.DateCheck == "" {
		c.DateCheck = d.DateCheck
	}
	if c.SleepAnchor == "" {
		c.SleepAnchor = d.SleepAnchor
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.RemarkPrefix) == "" {
		return fmt.Errorf("%w: remark_prefix must contain a non-space character", ErrInvalidConfig)
	}
	for _, w := range c.WakeKeywords {
		if strings.Contains(w, "_") {
			return fmt.Errorf("%w: wake keyword %q must not contain '_'", ErrInvalidConfig, w)
		}
	}
	if err := c.validateLabels(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// validateLabels rejects mapping targets that would split into an empty
// category segment, and aliases that would split at all.
func (c *Config) validateLabels() error {
	for k, v := range c.TextMappings {
		if !model.ValidLabel(v) {
			return fmt.Errorf("%w: text_mappings[%s]: empty segment in %q", ErrInvalidConfig, k, v)
		}
	}
	for k, v := range c.TextDurationMappings {
		if !model.ValidLabel(v) {
			return fmt.Errorf("%w: text_duration_mappings[%s]: empty segment in %q", ErrInvalidConfig, k, v)
		}
	}
	for k, rules := range c.DurationMappings {
		for _, r := range rules {
			if !model.ValidLabel(r.Value) {
				return fmt.Errorf("%w: duration_mappings[%s]: empty segment in %q", ErrInvalidConfig, k, r.Value)
			}
		}
	}
	for k, v := range c.TopCategoryAliases {
		if strings.Contains(v, "_") {
			return fmt.Errorf("%w: top_category_aliases[%s]: %q must not contain '_'", ErrInvalidConfig, k, v)
		}
	}
	return nil
}

// Location resolves Timezone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsWake reports whether token is one of the wake keywords.
func (c *Config) IsWake(token string) bool {
	for _, w := range c.WakeKeywords {
		if w == token {
			return true
		}
	}
	return false
}

// IsKnown reports whether an activity token is covered by the configuration:
// a wake keyword, a key of any mapping table, or a label whose first segment
// is a configured top category (before or after aliasing).
func (c *Config) IsKnown(token string) bool {
	if c.IsWake(token) {
		return true
	}
	if _, ok := c.TextMappings[token]; ok {
		return true
	}
	if _, ok := c.TextDurationMappings[token]; ok {
		return true
	}
	if _, ok := c.DurationMappings[token]; ok {
		return true
	}
	top, _, _ := strings.Cut(token, "_")
	if alias, ok := c.TopCategoryAliases[top]; ok {
		top = alias
	}
	for _, cat := range c.TopCategories {
		if cat == top {
			return true
		}
	}
	return false
}
