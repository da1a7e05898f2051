package store

import (
	"time"

	"github.com/sadopc/timetracer/internal/model"
)

// Project is one segment of a category path.
type Project struct {
	ID       int64
	Name     string
	ParentID *int64
}

// Activity is a stored activity row joined with its project path.
type Activity struct {
	LogicalID int64
	Date      string
	StartTS   int64
	EndTS     int64
	StartTime string
	EndTime   string
	ProjectID int64
	Path      string
	Duration  int64 // seconds
	Remark    string
}

func (a Activity) toModel() model.Activity {
	return model.Activity{
		LogicalID:       a.LogicalID,
		StartTimestamp:  a.StartTS,
		EndTimestamp:    a.EndTS,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationSeconds: a.Duration,
		Category:        model.ParseCategory(a.Path),
		Remark:          a.Remark,
	}
}

// Import records one import batch.
type Import struct {
	ID            string
	Source        string
	ImportedAt    time.Time
	DayCount      int
	ActivityCount int

	// Resolver counters for the batch; not persisted.
	ProjectLookups int
	ProjectInserts int
}

// ActivityFilter is used to filter activities in queries. Dates are
// inclusive "YYYY-MM-DD" bounds; Project matches the path and its children.
type ActivityFilter struct {
	From    string
	To      string
	Project string
	Limit   int
}

// ProjectTotal is the time logged against one project path.
type ProjectTotal struct {
	ProjectID     int64
	Path          string
	TotalSeconds  int64
	ActivityCount int
}
