package model

import (
	"time"
)

// Slot is a single 30 minute unit of bookable time owned by one tutor.
// EndTime is always StartTime + 30 minutes and a tutor never holds two
// slots with the same start time (enforced by a unique index).
type Slot struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TutorID   string    `json:"tutor_id" bson:"tutor_id" validate:"required,min=1,max=64"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	IsBooked  bool      `json:"is_booked" bson:"is_booked"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SlotRegistration is the tutor-facing request to open availability.
// A 60 minute registration is split into two 30 minute slots.
type SlotRegistration struct {
	TutorID     string    `json:"tutor_id" validate:"required,min=1,max=64"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	DurationMin Duration  `json:"duration_min" validate:"required"`
}

// TimeSlot is one open entry in the daily availability listing,
// labelled as HH:MM in the day being browsed.
type TimeSlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// TutorSlots lists the open time labels of a single tutor for a day.
type TutorSlots struct {
	TutorID        string   `json:"tutor_id"`
	AvailableTimes []string `json:"available_times"`
}
