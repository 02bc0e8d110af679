package service

import (
	"context"
	"time"

	"tutorly/internal/availability/repository"
	"tutorly/pkg/config"
	apperrors "tutorly/pkg/errors"
	"tutorly/pkg/model"
)

// StudentAvailabilityService is the browsing read path. It runs
// unlocked: listings are advisory and every booking re-validates under
// the slot lock, so staleness against in-flight bookings is acceptable.
type StudentAvailabilityService interface {
	AvailableTimes(ctx context.Context, date time.Time, duration model.Duration) ([]model.TimeSlot, error)
	TutorsForDate(ctx context.Context, date time.Time) ([]model.TutorSlots, error)
}

type studentAvailabilityService struct {
	repo repository.SlotRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewStudentAvailabilityService(repo repository.SlotRepository, cfg *config.Config) StudentAvailabilityService {
	return &studentAvailabilityService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// AvailableTimes lists every 30 minute boundary of the day at which a
// lesson of the requested length could start. For a 60 minute lesson
// the two consecutive units may belong to different tutors at this
// level; booking later requires a single tutor for the whole window.
func (s *studentAvailabilityService) AvailableTimes(ctx context.Context, date time.Time, duration model.Duration) ([]model.TimeSlot, error) {
	if !duration.Valid() {
		return nil, apperrors.InvalidInput("duration_min must be 30 or 60")
	}

	scanStart, err := s.scanStart(date)
	if err != nil {
		return nil, err
	}
	dayEnd := dayAt(date, 23, 59)

	// One range query for the day; membership checks run against the
	// resulting start-time set.
	slots, err := s.repo.FindUnbookedInRange(ctx, dayStart(date), dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load day availability", "date", date.Format("2006-01-02"), "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}

	open := make(map[int64]bool, len(slots))
	for _, slot := range slots {
		open[slot.StartTime.Unix()] = true
	}

	var result []model.TimeSlot
	for t := scanStart; t.Before(dayEnd); t = t.Add(model.SlotLength) {
		available := open[t.Unix()]
		if duration == model.DurationSixty {
			available = available && open[t.Add(model.SlotLength).Unix()]
		}
		if available {
			result = append(result, model.TimeSlot{
				Time:      t.Format("15:04"),
				Available: true,
			})
		}
	}

	return result, nil
}

// TutorsForDate lists, per tutor, the open time labels of the day in
// the order the slots were encountered.
func (s *studentAvailabilityService) TutorsForDate(ctx context.Context, date time.Time) ([]model.TutorSlots, error) {
	if date.Before(dayStart(s.now().UTC())) {
		return nil, apperrors.DateInPast("Cannot browse availability for a past date")
	}

	slots, err := s.repo.FindUnbookedInRange(ctx, dayStart(date), dayAt(date, 23, 59))
	if err != nil {
		s.cfg.Log.Error("Failed to load tutor availability", "date", date.Format("2006-01-02"), "error", err)
		return nil, apperrors.Internal("Failed to retrieve availability", err)
	}
	if len(slots) == 0 {
		return nil, apperrors.NoTutorAvailable("No tutor has open slots on this date")
	}

	// Group by tutor preserving first-seen order.
	index := make(map[string]int, len(slots))
	var result []model.TutorSlots
	for _, slot := range slots {
		i, seen := index[slot.TutorID]
		if !seen {
			i = len(result)
			index[slot.TutorID] = i
			result = append(result, model.TutorSlots{TutorID: slot.TutorID})
		}
		result[i].AvailableTimes = append(result[i].AvailableTimes, slot.StartTime.Format("15:04"))
	}

	return result, nil
}

// scanStart picks the first boundary to inspect: today starts at the
// next :00/:30 boundary after now, future dates at midnight, past
// dates are rejected. The clock is normalized to UTC so the today/
// future comparison agrees with the UTC-parsed request date regardless
// of the host zone.
func (s *studentAvailabilityService) scanStart(date time.Time) (time.Time, error) {
	now := s.now().UTC()
	today := dayStart(now)
	target := dayStart(date)

	if target.Before(today) {
		return time.Time{}, apperrors.DateInPast("Cannot browse availability for a past date")
	}
	if target.After(today) {
		return target, nil
	}

	hourStart := now.Truncate(time.Hour)
	if now.Minute() < 30 {
		return hourStart.Add(30 * time.Minute), nil
	}
	return hourStart.Add(time.Hour), nil
}

func dayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func dayAt(t time.Time, hour, minute int) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, t.Location())
}
