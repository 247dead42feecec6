package stats

import (
	"fmt"
	"time"
)

type Timeframe string

const (
	Last7Days  Timeframe = "7days"
	Last30Days Timeframe = "30days"
	Last90Days Timeframe = "90days"
)

func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case Last7Days, Last30Days, Last90Days:
		return tf, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
}

// bucket is a half-open interval [Start, End).
type bucket struct {
	Name       string
	Start, End time.Time
}

func (b bucket) contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// buckets splits the timeframe ending today into report buckets, oldest
// first. now carries the location that defines "today".
func buckets(tf Timeframe, now time.Time) []bucket {
	tomorrow := midnight(now).AddDate(0, 0, 1)

	switch tf {
	case Last7Days:
		out := make([]bucket, 7)
		for i := range out {
			start := tomorrow.AddDate(0, 0, i-7)
			out[i] = bucket{Name: start.Weekday().String()[:3], Start: start, End: start.AddDate(0, 0, 1)}
		}
		return out
	case Last30Days:
		out := make([]bucket, 4)
		for i := range out {
			end := tomorrow.AddDate(0, 0, -7*(3-i))
			out[i] = bucket{Name: fmt.Sprintf("Week %d", i+1), Start: end.AddDate(0, 0, -7), End: end}
		}
		return out
	case Last90Days:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		out := make([]bucket, 3)
		for i := range out {
			start := first.AddDate(0, i-2, 0)
			out[i] = bucket{Name: start.Month().String()[:3], Start: start, End: start.AddDate(0, 1, 0)}
		}
		return out
	}
	return nil
}

// window spans all buckets.
func window(bs []bucket) bucket {
	if len(bs) == 0 {
		return bucket{}
	}
	return bucket{Start: bs[0].Start, End: bs[len(bs)-1].End}
}
