package service

import (
	"sort"
	"time"

	"fitnesstime/internal/entities"
	apperrors "fitnesstime/internal/errors"
)

// DefaultMinGap is the smallest free interval worth suggesting as an event
// slot. Gaps must be strictly longer than the threshold to qualify.
const DefaultMinGap = 30 * time.Minute

// ComputeFreeIntervals returns the gaps inside [windowStart, windowEnd]
// during which none of the busy intervals is running. Busy intervals need not
// be sorted and may overlap each other; they are clipped to the window before
// processing, so intervals reaching past either boundary only count for their
// in-window portion. Each returned gap is strictly longer than minGap, and
// the gaps are chronological and non-overlapping.
func ComputeFreeIntervals(busy []entities.Interval, windowStart, windowEnd time.Time, minGap time.Duration) ([]entities.Interval, error) {
	if windowStart.After(windowEnd) {
		return nil, apperrors.ErrInvalidWindow
	}

	clipped := make([]entities.Interval, 0, len(busy))
	for _, iv := range busy {
		if !iv.Start.Before(iv.End) {
			return nil, apperrors.ErrInvalidInterval
		}
		start, end := iv.Start, iv.End
		if start.Before(windowStart) {
			start = windowStart
		}
		if end.After(windowEnd) {
			end = windowEnd
		}
		if !start.Before(end) {
			// Entirely outside the window.
			continue
		}
		clipped = append(clipped, entities.Interval{Start: start, End: end})
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var gaps []entities.Interval
	cursor := windowStart
	for _, iv := range clipped {
		if iv.Start.Sub(cursor) > minGap {
			gaps = append(gaps, entities.Interval{Start: cursor, End: iv.Start})
		}
		if iv.End.After(cursor) {
			cursor = iv.End
		}
	}
	if windowEnd.Sub(cursor) > minGap {
		gaps = append(gaps, entities.Interval{Start: cursor, End: windowEnd})
	}
	return gaps, nil
}
