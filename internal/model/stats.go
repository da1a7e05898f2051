package model

// Bucket names one accumulator of GeneratedStats.
type Bucket string

const (
	BucketSleep         Bucket = "sleepTime"
	BucketSleepNight    Bucket = "sleepNightTime"
	BucketSleepDay      Bucket = "sleepDayTime"
	BucketTotalExercise Bucket = "totalExerciseTime"
	BucketCardio        Bucket = "cardioTime"
	BucketAnaerobic     Bucket = "anaerobicTime"
	BucketGrooming      Bucket = "groomingTime"
	BucketToilet        Bucket = "toiletTime"
	BucketGaming        Bucket = "gamingTime"
	BucketStudy         Bucket = "studyTime"
	BucketRecreation    Bucket = "recreationTime"
)

// Buckets lists every bucket in column order.
var Buckets = []Bucket{
	BucketSleep, BucketSleepNight, BucketSleepDay,
	BucketTotalExercise, BucketCardio, BucketAnaerobic,
	BucketGrooming, BucketToilet, BucketGaming,
	BucketStudy, BucketRecreation,
}

// GeneratedStats holds per-day durations in seconds.
type GeneratedStats struct {
	SleepTime         int64 `json:"sleepTime"`
	SleepNightTime    int64 `json:"sleepNightTime"`
	SleepDayTime      int64 `json:"sleepDayTime"`
	TotalExerciseTime int64 `json:"totalExerciseTime"`
	CardioTime        int64 `json:"cardioTime"`
	AnaerobicTime     int64 `json:"anaerobicTime"`
	GroomingTime      int64 `json:"groomingTime"`
	ToiletTime        int64 `json:"toiletTime"`
	GamingTime        int64 `json:"gamingTime"`
	StudyTime         int64 `json:"studyTime"`
	RecreationTime    int64 `json:"recreationTime"`
}

func (g *GeneratedStats) field(b Bucket) *int64 {
	switch b {
	case BucketSleep:
		return &g.SleepTime
	case BucketSleepNight:
		return &g.SleepNightTime
	case BucketSleepDay:
		return &g.SleepDayTime
	case BucketTotalExercise:
		return &g.TotalExerciseTime
	case BucketCardio:
		return &g.CardioTime
	case BucketAnaerobic:
		return &g.AnaerobicTime
	case BucketGrooming:
		return &g.GroomingTime
	case BucketToilet:
		return &g.ToiletTime
	case BucketGaming:
		return &g.GamingTime
	case BucketStudy:
		return &g.StudyTime
	case BucketRecreation:
		return &g.RecreationTime
	}
	return nil
}

// Add accumulates secs into bucket b. Unknown buckets are ignored.
func (g *GeneratedStats) Add(b Bucket, secs int64) {
	if p := g.field(b); p != nil {
		*p += secs
	}
}

// Get returns the value of bucket b.
func (g GeneratedStats) Get(b Bucket) int64 {
	if p := g.field(b); p != nil {
		return *p
	}
	return 0
}
