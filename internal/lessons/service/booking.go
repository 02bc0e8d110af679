package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	availabilityerrors "tutorly/internal/availability/errors"
	slotrepo "tutorly/internal/availability/repository"
	"tutorly/internal/lessons/repository"
	"tutorly/internal/lessons/validator"
	"tutorly/pkg/config"
	apperrors "tutorly/pkg/errors"
	"tutorly/pkg/kafka"
	"tutorly/pkg/lock"
	"tutorly/pkg/model"
)

const (
	// EventLessonBooked is the event type attached to messages published
	// after a successful booking.
	EventLessonBooked = "lesson.booked"

	eventSource = "lessons"
)

// EventPublisher is the slice of the Kafka producer the booking flow
// needs. A nil publisher disables event publication.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// LessonService books lessons and lists a student's booking history.
type LessonService interface {
	Book(ctx context.Context, req *model.LessonRequest) (*model.Lesson, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Lesson, error)
}

type lessonService struct {
	lessons   repository.LessonRepository
	slots     slotrepo.SlotRepository
	validator *validator.LessonValidator
	locks     lock.Manager
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewLessonService(
	lessons repository.LessonRepository,
	slots slotrepo.SlotRepository,
	validator *validator.LessonValidator,
	locks lock.Manager,
	publisher EventPublisher,
	cfg *config.Config,
) LessonService {
	return &lessonService{
		lessons:   lessons,
		slots:     slots,
		validator: validator,
		locks:     locks,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// lockKey names the advisory lock for one tutor's slot window. Two
// requests for the same tutor and start time always contend on the same
// key regardless of the wall clock zone they were expressed in.
func lockKey(tutorID string, start time.Time) string {
	return "booking:" + tutorID + ":" + start.UTC().Format(time.RFC3339)
}

// Book reserves the requested window for the student. The whole
// read-match-write sequence runs under the advisory lock for the
// requested tutor and start time; the conditional slot flips inside the
// transaction make the booking safe even against writers that bypass
// the lock.
func (s *lessonService) Book(ctx context.Context, req *model.LessonRequest) (*model.Lesson, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Lesson request validation failed", "student_id", req.StudentID, "error", err)
		return nil, apperrors.Validation("Lesson request validation failed", map[string]any{"error": err.Error()})
	}

	start := req.StartTime
	if start.Before(s.now()) {
		return nil, apperrors.TimePassed("Cannot book a lesson in the past")
	}
	if minute := start.Minute(); minute != 0 && minute != 30 || start.Second() != 0 || start.Nanosecond() != 0 {
		return nil, apperrors.InvalidStartTime("Start time must fall on a :00 or :30 boundary")
	}

	var lesson *model.Lesson
	err := s.locks.WithLock(ctx, lockKey(req.TutorID, start), s.cfg.LockWaitTimeout, s.cfg.LockLeaseTimeout, func(ctx context.Context) error {
		booked, err := s.bookLocked(ctx, req)
		if err != nil {
			return err
		}
		lesson = booked
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			s.cfg.Log.Warn("Booking lock not acquired",
				"tutor_id", req.TutorID,
				"start_time", start,
				"wait_timeout", s.cfg.LockWaitTimeout,
			)
			return nil, apperrors.LockTimeout("Another booking for this slot is in progress")
		}
		return nil, err
	}

	s.cfg.Log.Info("Lesson booked",
		"lesson_id", lesson.ID,
		"student_id", lesson.StudentID,
		"tutor_id", lesson.TutorID,
		"start_time", lesson.StartTime,
		"duration_min", int(lesson.DurationMin),
	)
	s.publishBooked(ctx, lesson)
	return lesson, nil
}

// bookLocked runs with the advisory lock held.
func (s *lessonService) bookLocked(ctx context.Context, req *model.LessonRequest) (*model.Lesson, error) {
	start := req.StartTime
	end := start.Add(req.DurationMin.Minutes())

	open, err := s.slots.FindUnbookedByTutorInRange(ctx, req.TutorID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load tutor slots", "tutor_id", req.TutorID, "error", err)
		return nil, apperrors.Internal("Failed to book lesson", err)
	}

	tutorID := req.TutorID
	matched, ok := matchWindow(open, start, req.DurationMin)
	if !ok {
		if !req.AllowAlternativeTutor {
			return nil, apperrors.NoTutorAvailable("Requested tutor has no open slots for this time")
		}

		others, err := s.slots.FindUnbookedExcludingTutorInRange(ctx, req.TutorID, start, end)
		if err != nil {
			s.cfg.Log.Error("Failed to load alternative slots", "tutor_id", req.TutorID, "error", err)
			return nil, apperrors.Internal("Failed to book lesson", err)
		}
		tutorID, matched, ok = matchAlternative(others, start, req.DurationMin)
		if !ok {
			return nil, apperrors.NoTutorAvailable("No tutor has open slots for this time")
		}
		s.cfg.Log.Info("Alternative tutor substituted",
			"requested_tutor_id", req.TutorID,
			"assigned_tutor_id", tutorID,
			"start_time", start,
		)
	}

	lesson := &model.Lesson{
		StudentID:   req.StudentID,
		TutorID:     tutorID,
		StartTime:   start,
		EndTime:     end,
		DurationMin: req.DurationMin,
		Status:      model.LessonConfirmed,
	}

	err = s.lessons.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.lessons.Create(sessCtx, lesson); err != nil {
			return err
		}
		for _, slot := range matched {
			if err := s.slots.MarkBooked(sessCtx, slot.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// An alternative tutor's slot can be consumed by that tutor's
		// own lock holder between the read above and the flip; the
		// conditional update catches it and the transaction rolls back.
		if errors.Is(err, availabilityerrors.ErrSlotTaken) {
			return nil, apperrors.AlreadyBooked("Slot was booked concurrently")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		s.cfg.Log.Error("Booking transaction failed", "student_id", req.StudentID, "error", err)
		return nil, apperrors.Internal("Failed to book lesson", err)
	}

	return lesson, nil
}

// publishBooked emits the booking event. Publication is best effort: a
// broker failure is logged and never unwinds a committed booking.
func (s *lessonService) publishBooked(ctx context.Context, lesson *model.Lesson) {
	if s.publisher == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(lesson.TutorID).
		WithValue(lesson).
		WithEventType(EventLessonBooked).
		WithSource(eventSource).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "lesson_id", lesson.ID, "error", err)
		return
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "lesson_id", lesson.ID, "error", err)
	}
}

func (s *lessonService) ListByStudent(ctx context.Context, studentID string) ([]*model.Lesson, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	lessons, err := s.lessons.FindByStudentOrderedByStartDesc(ctx, studentID)
	if err != nil {
		s.cfg.Log.Error("Failed to list lessons", "student_id", studentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve lessons", err)
	}

	return lessons, nil
}
