// Package model defines the intermediate day records produced by the
// converter and consumed by the output validator, the exporters and the store.
package model

import (
	"fmt"
	"strings"
	"time"
)

// NullTime marks a day without a recorded wake time.
const NullTime = "Null"

// DateLayout is the layout of Headers.Date.
const DateLayout = "2006-01-02"

type Day struct {
	Headers        Headers        `json:"headers"`
	Activities     []Activity     `json:"activities"`
	GeneratedStats GeneratedStats `json:"generatedStats"`
}

type Headers struct {
	Date          string `json:"date"`
	Status        bool   `json:"status"`
	Exercise      bool   `json:"exercise"`
	Sleep         bool   `json:"sleep"`
	Getup         string `json:"getup"`
	Remark        string `json:"remark"`
	ActivityCount int    `json:"activityCount"`
}

// Time parses Headers.Date.
func (h Headers) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, h.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", h.Date, err)
	}
	return t, nil
}

type Activity struct {
	LogicalID       int64    `json:"logicalId"`
	StartTimestamp  int64    `json:"startTimestamp"`
	EndTimestamp    int64    `json:"endTimestamp"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	DurationSeconds int64    `json:"durationSeconds"`
	Category        Category `json:"activity"`
	Remark          string   `json:"activityRemark"`
}

// Category is a hierarchical activity path split into its first segment and
// the remaining segments in order.
type Category struct {
	Top  string   `json:"topParent"`
	Subs []string `json:"parents"`
}

// ParseCategory splits an underscore-delimited label.
func ParseCategory(label string) Category {
	parts := strings.Split(label, "_")
	c := Category{Top: parts[0]}
	if len(parts) > 1 {
		c.Subs = append([]string(nil), parts[1:]...)
	}
	return c
}

// ValidLabel reports whether label is non-empty and has no empty
// underscore-delimited segment ("a__b", "_a" and "a_" do).
func ValidLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, seg := range strings.Split(label, "_") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Valid reports whether every segment of the category is non-empty and free
// of the path delimiter.
func (c Category) Valid() bool {
	if c.Top == "" || strings.Contains(c.Top, "_") {
		return false
	}
	for _, s := range c.Subs {
		if s == "" || strings.Contains(s, "_") {
			return false
		}
	}
	return true
}

// Path joins the category back into "top_sub_sub".
func (c Category) Path() string {
	if len(c.Subs) == 0 {
		return c.Top
	}
	return c.Top + "_" + strings.Join(c.Subs, "_")
}

// HasSub reports whether any of names is one of the sub-categories.
func (c Category) HasSub(names ...string) bool {
	for _, s := range c.Subs {
		for _, n := range names {
			if s == n {
				return true
			}
		}
	}
	return false
}
