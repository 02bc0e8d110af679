package model

import (
	"time"
)

const (
	LessonConfirmed = "confirmed"
)

// Lesson is a confirmed booking. It consumes one or two consecutive
// slots of a single tutor; the tutor may differ from the one originally
// requested when an alternative was substituted. Lessons are immutable
// once created.
type Lesson struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StudentID   string    `json:"student_id" bson:"student_id" validate:"required,min=1,max=64"`
	TutorID     string    `json:"tutor_id" bson:"tutor_id" validate:"required,min=1,max=64"`
	StartTime   time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	DurationMin Duration  `json:"duration_min" bson:"duration_min" validate:"required"`
	Status      string    `json:"status" bson:"status" validate:"required,oneof=confirmed"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// LessonRequest is the booking request a student submits. When
// AllowAlternativeTutor is set and the requested tutor cannot serve the
// window, another tutor with an equivalent open slot group may be
// assigned instead.
type LessonRequest struct {
	TutorID               string    `json:"tutor_id" validate:"required,min=1,max=64"`
	StudentID             string    `json:"student_id" validate:"required,min=1,max=64"`
	StartTime             time.Time `json:"start_time" validate:"required"`
	DurationMin           Duration  `json:"duration_min" validate:"required"`
	AllowAlternativeTutor bool      `json:"allow_alternative_tutor"`
}
