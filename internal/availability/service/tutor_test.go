package service

import (
	"context"
	"testing"
	"time"

	availabilityerrors "tutorly/internal/availability/errors"
	"tutorly/internal/availability/validator"
	apperrors "tutorly/pkg/errors"
	"tutorly/pkg/model"
)

func newTutorService(repo *mockSlotRepository, now time.Time) *tutorAvailabilityService {
	cfg := testConfig()
	return &tutorAvailabilityService{
		repo:      repo,
		validator: validator.NewSlotValidator(cfg.Log),
		cfg:       cfg,
		now:       func() time.Time { return now },
	}
}

func TestRegister_SixtySplitsIntoTwoSlots(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	var created []*model.Slot
	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.Slot) error {
			created = append(created, slot)
			return nil
		},
	}
	svc := newTutorService(repo, now)

	slots, err := svc.Register(context.Background(), &model.SlotRegistration{
		TutorID:     "tutor-1",
		StartTime:   start,
		DurationMin: model.DurationSixty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 || len(created) != 2 {
		t.Fatalf("expected 2 slots, got %d returned / %d created", len(slots), len(created))
	}
	if !created[0].StartTime.Equal(start) {
		t.Errorf("first slot starts at %v, want %v", created[0].StartTime, start)
	}
	if !created[1].StartTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("second slot starts at %v, want %v", created[1].StartTime, start.Add(30*time.Minute))
	}
	if !created[1].EndTime.Equal(start.Add(60 * time.Minute)) {
		t.Errorf("second slot ends at %v, want %v", created[1].EndTime, start.Add(60*time.Minute))
	}
}

func TestRegister_ExistingUnitsAreSkipped(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	var created []*model.Slot
	repo := &mockSlotRepository{
		existsFunc: func(ctx context.Context, tutorID string, s time.Time) (bool, error) {
			return s.Equal(start), nil
		},
		createFunc: func(ctx context.Context, slot *model.Slot) error {
			created = append(created, slot)
			return nil
		},
	}
	svc := newTutorService(repo, now)

	slots, err := svc.Register(context.Background(), &model.SlotRegistration{
		TutorID:     "tutor-1",
		StartTime:   start,
		DurationMin: model.DurationSixty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 new slot, got %d", len(slots))
	}
	if !slots[0].StartTime.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("new slot starts at %v, want %v", slots[0].StartTime, start.Add(30*time.Minute))
	}
}

func TestRegister_DuplicateRaceTreatedAsSkip(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.Slot) error {
			return availabilityerrors.ErrDuplicateSlot
		},
	}
	svc := newTutorService(repo, now)

	slots, err := svc.Register(context.Background(), &model.SlotRegistration{
		TutorID:     "tutor-1",
		StartTime:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		DurationMin: model.DurationThirty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no new slots, got %d", len(slots))
	}
}

func TestRegister_RejectsPastStart(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	svc := newTutorService(&mockSlotRepository{}, now)

	_, err := svc.Register(context.Background(), &model.SlotRegistration{
		TutorID:     "tutor-1",
		StartTime:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		DurationMin: model.DurationThirty,
	})
	assertCode(t, err, apperrors.CodeTimePassed)
}

func TestRegister_RejectsUnalignedStart(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTutorService(&mockSlotRepository{}, now)

	for _, start := range []time.Time{
		time.Date(2026, 3, 2, 14, 15, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 14, 30, 10, 0, time.UTC),
	} {
		_, err := svc.Register(context.Background(), &model.SlotRegistration{
			TutorID:     "tutor-1",
			StartTime:   start,
			DurationMin: model.DurationThirty,
		})
		assertCode(t, err, apperrors.CodeInvalidStartTime)
	}
}

func TestRegister_RejectsInvalidDuration(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTutorService(&mockSlotRepository{}, now)

	_, err := svc.Register(context.Background(), &model.SlotRegistration{
		TutorID:     "tutor-1",
		StartTime:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		DurationMin: model.Duration(45),
	})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return nil, availabilityerrors.ErrNotFound
		},
	}
	svc := newTutorService(repo, time.Now())

	err := svc.Delete(context.Background(), "65f000000000000000000001", "tutor-1")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestDelete_ForbiddenForOtherTutor(t *testing.T) {
	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return &model.Slot{ID: id, TutorID: "tutor-2"}, nil
		},
	}
	svc := newTutorService(repo, time.Now())

	err := svc.Delete(context.Background(), "65f000000000000000000001", "tutor-1")
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestDelete_BookedSlotRejected(t *testing.T) {
	deleted := false
	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return &model.Slot{ID: id, TutorID: "tutor-1", IsBooked: true}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTutorService(repo, time.Now())

	err := svc.Delete(context.Background(), "65f000000000000000000001", "tutor-1")
	assertCode(t, err, apperrors.CodeAlreadyBooked)
	if deleted {
		t.Error("booked slot must not be deleted")
	}
}

func TestDelete_Success(t *testing.T) {
	deleted := ""
	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return &model.Slot{ID: id, TutorID: "tutor-1"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := newTutorService(repo, time.Now())

	if err := svc.Delete(context.Background(), "65f000000000000000000001", "tutor-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "65f000000000000000000001" {
		t.Errorf("deleted %q, want the requested slot", deleted)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code)
	}
}
