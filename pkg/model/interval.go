package model

import "time"

// Interval is a half-open time range [Start, End). It is the only place the
// overlap rule lives; the store filters are written to agree with it.
type Interval struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

func NewInterval(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Empty reports whether the interval covers no time. An inverted interval
// (End before Start) is treated as zero-width.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// Normalize clamps an inverted interval to a zero-width one at Start.
func (i Interval) Normalize() Interval {
	if i.End.Before(i.Start) {
		return Interval{Start: i.Start, End: i.Start}
	}
	return i
}

// Overlaps reports whether the two intervals share at least one instant:
// a.Start < b.End && a.End > b.Start. Touching intervals do not overlap and
// an empty interval overlaps nothing.
func (i Interval) Overlaps(other Interval) bool {
	if i.Empty() || other.Empty() {
		return false
	}
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

func (i Interval) Duration() time.Duration {
	if i.Empty() {
		return 0
	}
	return i.End.Sub(i.Start)
}
