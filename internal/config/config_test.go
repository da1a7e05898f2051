package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, GrammarMultiYear, cfg.Grammar)
	assert.Equal(t, "r ", cfg.RemarkPrefix)
	assert.Equal(t, DateCheckContinuity, cfg.DateCheck)
	assert.Equal(t, SleepAnchorFirst, cfg.SleepAnchor)
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
grammar: single_month
remark_prefix: "// "
wake_keywords: [up]
text_mappings:
  read: study_reading
duration_mappings:
  meal:
    - less_than_minutes: 15
      value: meal_snack
    - less_than_minutes: 60
      value: meal_regular
date_check: full
timezone: UTC
`)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, GrammarSingleMonth, cfg.Grammar)
	assert.Equal(t, "// ", cfg.RemarkPrefix)
	assert.Equal(t, []string{"up"}, cfg.WakeKeywords)
	assert.Equal(t, map[string]string{"read": "study_reading"}, cfg.TextMappings)
	require.Len(t, cfg.DurationMappings["meal"], 2)
	assert.Equal(t, "meal_snack", cfg.DurationMappings["meal"][0].Value)
	assert.Equal(t, DateCheckFull, cfg.DateCheck)
	// Untouched keys keep defaults.
	assert.Equal(t, SleepAnchorFirst, cfg.SleepAnchor)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestParseEmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown grammar", "grammar: weekly\n"},
		{"unknown date check", "date_check: sometimes\n"},
		{"unknown anchor", "sleep_anchor: middle\n"},
		{"empty wake list", "wake_keywords: []\n"},
		{"blank remark prefix", "remark_prefix: \"  \"\n"},
		{"zero threshold", "duration_mappings:\n  meal:\n    - less_than_minutes: 0\n      value: x\n"},
		{"empty rule value", "duration_mappings:\n  meal:\n    - less_than_minutes: 5\n      value: \"\"\n"},
		{"empty mapping value", "text_mappings:\n  read: \"\"\n"},
		{"wake with underscore", "wake_keywords: [get_up]\n"},
		{"alias with underscore", "top_category_aliases:\n  rest: recreation_idle\n"},
		{"mapping with empty segment", "text_mappings:\n  read: study__reading\n"},
		{"duration mapping with trailing delimiter", "text_duration_mappings:\n  wash: routine_\n"},
		{"rule value with leading delimiter", "duration_mappings:\n  meal:\n    - less_than_minutes: 5\n      value: _snack\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("colour: blue\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remark_prefix: \"note:\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "note:", cfg.RemarkPrefix)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestIsKnown(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		token string
		want  bool
	}{
		{"起床", true},
		{"code", true},
		{"洗澡", true},
		{"routine_grooming", true},
		{"study_code", true},
		{"study", true},
		{"rest_music", true},
		{"juggling", false},
		{"juggling_clubs", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.IsKnown(tt.token), tt.token)
	}
}
