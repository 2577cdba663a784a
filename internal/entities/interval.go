package entities

import "time"

// Interval is a half-open time block [Start, End). It is used both for a
// member's committed events and for the computed free gaps between them.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FreeIntervalsResponse struct {
	GroupID       int        `json:"group_id"`
	From          time.Time  `json:"from"`
	Until         time.Time  `json:"until"`
	MinGapMinutes int        `json:"min_gap_minutes"`
	FreeIntervals []Interval `json:"free_intervals"`
}
