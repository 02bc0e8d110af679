package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestUnbookedStartRangeFilter_KeepsLastSlotOfDay(t *testing.T) {
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	dayEnd := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)

	filter := unbookedStartRangeFilter(dayStart, dayEnd)

	if _, ok := filter["end_time"]; ok {
		// The 23:30 slot ends at next-day midnight; bounding end_time
		// would drop it from the day listing.
		t.Fatal("day filter must not constrain end_time")
	}
	if filter["is_booked"] != false {
		t.Errorf("is_booked constraint %v, want false", filter["is_booked"])
	}

	startRange, ok := filter["start_time"].(bson.M)
	if !ok {
		t.Fatalf("start_time constraint %v, want a range", filter["start_time"])
	}
	if !startRange["$gte"].(time.Time).Equal(dayStart) || !startRange["$lte"].(time.Time).Equal(dayEnd) {
		t.Errorf("start_time range %v, want [%v, %v]", startRange, dayStart, dayEnd)
	}

	lastSlotStart := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	if lastSlotStart.Before(dayStart) || lastSlotStart.After(dayEnd) {
		t.Error("23:30 start must satisfy the day range")
	}
}

func TestUnbookedRangeFilter_BoundsWholeWindow(t *testing.T) {
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	filter := unbookedRangeFilter(start, end)

	startCond, ok := filter["start_time"].(bson.M)
	if !ok || !startCond["$gte"].(time.Time).Equal(start) {
		t.Errorf("start_time constraint %v, want $gte %v", filter["start_time"], start)
	}
	endCond, ok := filter["end_time"].(bson.M)
	if !ok || !endCond["$lte"].(time.Time).Equal(end) {
		// Booking queries must only match slots lying wholly inside
		// the requested window.
		t.Errorf("end_time constraint %v, want $lte %v", filter["end_time"], end)
	}
	if filter["is_booked"] != false {
		t.Errorf("is_booked constraint %v, want false", filter["is_booked"])
	}
}
