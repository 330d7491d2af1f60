package availability

import "time"

// MinSlotLength is the shortest remainder worth materializing as a new open
// slot; anything shorter is absorbed into the booked block.
const MinSlotLength = time.Hour

type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Overlaps reports whether two half-open intervals [a.Start,a.End) and
// [b.Start,b.End) intersect.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Contains reports whether inner lies fully within outer.
func Contains(outer, inner Interval) bool {
	return !inner.Start.Before(outer.Start) && !inner.End.After(outer.End)
}

// SplitAround returns the open remainders of outer once booked is carved out:
// a "before" remainder [outer.Start, booked.Start) and an "after" remainder
// [booked.End, outer.End). Remainders shorter than min are dropped so no
// unusable slivers are offered. booked must lie within outer.
func SplitAround(outer, booked Interval, min time.Duration) []Interval {
	var out []Interval
	if before := (Interval{Start: outer.Start, End: booked.Start}); before.Duration() >= min {
		out = append(out, before)
	}
	if after := (Interval{Start: booked.End, End: outer.End}); after.Duration() >= min {
		out = append(out, after)
	}
	return out
}
