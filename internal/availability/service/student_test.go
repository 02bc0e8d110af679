package service

import (
	"context"
	"testing"
	"time"

	apperrors "tutorly/pkg/errors"
	"tutorly/pkg/model"
)

func newStudentService(repo *mockSlotRepository, now time.Time) *studentAvailabilityService {
	return &studentAvailabilityService{
		repo: repo,
		cfg:  testConfig(),
		now:  func() time.Time { return now },
	}
}

func unbooked(tutorID string, start time.Time) *model.Slot {
	return &model.Slot{
		TutorID:   tutorID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
	}
}

func TestAvailableTimes_TodayScansFromNextBoundary(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		wantFirst time.Time
	}{
		{"minute below thirty rounds to half hour", day.Add(14*time.Hour + 10*time.Minute), day.Add(14*time.Hour + 30*time.Minute)},
		{"minute at or above thirty rounds to next hour", day.Add(14*time.Hour + 35*time.Minute), day.Add(15 * time.Hour)},
		{"exactly on the hour still skips to half hour", day.Add(14 * time.Hour), day.Add(14*time.Hour + 30*time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockSlotRepository{
				findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
					// Everything before the rounded boundary is open in
					// the store but must not be reported.
					return []*model.Slot{
						unbooked("tutor-1", day.Add(13*time.Hour)),
						unbooked("tutor-1", tt.wantFirst),
					}, nil
				},
			}
			svc := newStudentService(repo, tt.now)

			times, err := svc.AvailableTimes(context.Background(), day, model.DurationThirty)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(times) != 1 {
				t.Fatalf("expected 1 open time, got %d (%v)", len(times), times)
			}
			if want := tt.wantFirst.Format("15:04"); times[0].Time != want {
				t.Errorf("first open time %s, want %s", times[0].Time, want)
			}
		})
	}
}

func TestAvailableTimes_FutureDateScansFromMidnight(t *testing.T) {
	now := time.Date(2026, 3, 2, 22, 45, 0, 0, time.UTC)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			if !start.Equal(day) {
				t.Errorf("range starts at %v, want midnight %v", start, day)
			}
			return []*model.Slot{unbooked("tutor-1", day)}, nil
		},
	}
	svc := newStudentService(repo, now)

	times, err := svc.AvailableTimes(context.Background(), day, model.DurationThirty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 1 || times[0].Time != "00:00" {
		t.Fatalf("expected midnight slot, got %v", times)
	}
}

func TestAvailableTimes_HostZoneDoesNotShiftToday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// 23:30 in UTC+9 is 14:30 UTC on the same calendar day; the scan
	// must treat the request as "today" and start at 15:00 UTC, not at
	// midnight.
	now := time.Date(2026, 3, 2, 23, 30, 0, 0, time.FixedZone("UTC+9", 9*60*60))

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			return []*model.Slot{
				unbooked("tutor-1", day.Add(1*time.Hour)), // already past
				unbooked("tutor-1", day.Add(15*time.Hour)),
			}, nil
		},
	}
	svc := newStudentService(repo, now)

	times, err := svc.AvailableTimes(context.Background(), day, model.DurationThirty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 1 || times[0].Time != "15:00" {
		t.Fatalf("expected only 15:00 open, got %v", times)
	}
}

func TestTutorsForDate_HostZoneAheadOfUTC(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	// 08:00 next day in UTC+9 is still 23:00 UTC on the requested date;
	// the date must not be rejected as past.
	now := time.Date(2026, 3, 3, 8, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			return []*model.Slot{unbooked("tutor-1", day.Add(23*time.Hour+30*time.Minute))}, nil
		},
	}
	svc := newStudentService(repo, now)

	tutors, err := svc.TutorsForDate(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tutors) != 1 || tutors[0].AvailableTimes[0] != "23:30" {
		t.Fatalf("expected tutor-1 open at 23:30, got %v", tutors)
	}
}

func TestAvailableTimes_LastSlotOfDayListed(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	lastStart := day.Add(23*time.Hour + 30*time.Minute)

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			// The day query must keep the 23:30 slot in range even
			// though it ends at next-day midnight.
			if lastStart.Before(start) || lastStart.After(end) {
				t.Errorf("day range [%v, %v] excludes the 23:30 start", start, end)
			}
			return []*model.Slot{unbooked("tutor-1", lastStart)}, nil
		},
	}
	svc := newStudentService(repo, now)

	times, err := svc.AvailableTimes(context.Background(), day, model.DurationThirty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 1 || times[0].Time != "23:30" {
		t.Fatalf("expected 23:30 listed, got %v", times)
	}
}

func TestAvailableTimes_PastDateRejected(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc := newStudentService(&mockSlotRepository{}, now)

	_, err := svc.AvailableTimes(context.Background(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), model.DurationThirty)
	assertCode(t, err, apperrors.CodeDateInPast)
}

func TestAvailableTimes_SixtyNeedsBothUnits(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			return []*model.Slot{
				unbooked("tutor-1", day.Add(10*time.Hour)),
				unbooked("tutor-1", day.Add(10*time.Hour+30*time.Minute)),
				unbooked("tutor-1", day.Add(12*time.Hour)), // isolated unit
			}, nil
		},
	}
	svc := newStudentService(repo, now)

	times, err := svc.AvailableTimes(context.Background(), day, model.DurationSixty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 1 || times[0].Time != "10:00" {
		t.Fatalf("expected only 10:00 open for sixty minutes, got %v", times)
	}
}

func TestAvailableTimes_SixtyUnitsMaySpanTutors(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	// The day listing only asks whether each boundary is open somewhere;
	// tutor continuity is enforced at booking time.
	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			return []*model.Slot{
				unbooked("tutor-1", day.Add(10*time.Hour)),
				unbooked("tutor-2", day.Add(10*time.Hour+30*time.Minute)),
			}, nil
		},
	}
	svc := newStudentService(repo, now)

	times, err := svc.AvailableTimes(context.Background(), day, model.DurationSixty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(times) != 1 || times[0].Time != "10:00" {
		t.Fatalf("expected 10:00 open across tutors, got %v", times)
	}
}

func TestTutorsForDate_GroupsByFirstSeenOrder(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	repo := &mockSlotRepository{
		findUnbookedFunc: func(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
			return []*model.Slot{
				unbooked("tutor-b", day.Add(9*time.Hour)),
				unbooked("tutor-a", day.Add(9*time.Hour+30*time.Minute)),
				unbooked("tutor-b", day.Add(11*time.Hour)),
			}, nil
		},
	}
	svc := newStudentService(repo, now)

	tutors, err := svc.TutorsForDate(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tutors) != 2 {
		t.Fatalf("expected 2 tutors, got %d", len(tutors))
	}
	if tutors[0].TutorID != "tutor-b" || tutors[1].TutorID != "tutor-a" {
		t.Errorf("tutor order %s, %s; want first-seen order tutor-b, tutor-a", tutors[0].TutorID, tutors[1].TutorID)
	}
	if len(tutors[0].AvailableTimes) != 2 || tutors[0].AvailableTimes[1] != "11:00" {
		t.Errorf("tutor-b times %v, want [09:00 11:00]", tutors[0].AvailableTimes)
	}
}

func TestTutorsForDate_EmptyDay(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := newStudentService(&mockSlotRepository{}, now)

	_, err := svc.TutorsForDate(context.Background(), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	assertCode(t, err, apperrors.CodeNoTutorAvailable)
}
