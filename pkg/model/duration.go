package model

import "time"

// Duration is the lesson length in minutes. Only 30 and 60 minute
// lessons exist; a 60 minute lesson always consumes two consecutive
// 30 minute slots.
type Duration int

const (
	DurationThirty Duration = 30
	DurationSixty  Duration = 60

	// SlotLength is the atomic unit of bookable time. Slots are never
	// stored at any other granularity.
	SlotLength = 30 * time.Minute
)

func (d Duration) Valid() bool {
	return d == DurationThirty || d == DurationSixty
}

// Units returns how many 30 minute slots the duration consumes.
func (d Duration) Units() int {
	return int(d) / 30
}

func (d Duration) Minutes() time.Duration {
	return time.Duration(d) * time.Minute
}
