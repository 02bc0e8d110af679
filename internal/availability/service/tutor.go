package service

import (
	"context"
	"errors"
	"time"

	availabilityerrors "tutorly/internal/availability/errors"
	"tutorly/internal/availability/repository"
	"tutorly/internal/availability/validator"
	"tutorly/pkg/config"
	apperrors "tutorly/pkg/errors"
	"tutorly/pkg/model"
)

// TutorAvailabilityService manages a tutor's own slots: opening
// availability ahead of time, withdrawing unbooked slots, and listing
// what is registered.
type TutorAvailabilityService interface {
	Register(ctx context.Context, reg *model.SlotRegistration) ([]*model.Slot, error)
	Delete(ctx context.Context, slotID, tutorID string) error
	ListByTutor(ctx context.Context, tutorID string) ([]*model.Slot, error)
}

type tutorAvailabilityService struct {
	repo      repository.SlotRepository
	validator *validator.SlotValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewTutorAvailabilityService(
	repo repository.SlotRepository,
	validator *validator.SlotValidator,
	cfg *config.Config,
) TutorAvailabilityService {
	return &tutorAvailabilityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register opens one or two 30 minute slots starting at the requested
// time. Units that already exist for the tutor are silently skipped, so
// repeating a registration is harmless.
func (s *tutorAvailabilityService) Register(ctx context.Context, reg *model.SlotRegistration) ([]*model.Slot, error) {
	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Slot registration validation failed", "tutor_id", reg.TutorID, "error", err)
		return nil, apperrors.Validation("Slot registration validation failed", map[string]any{"error": err.Error()})
	}

	start := reg.StartTime
	if start.Before(s.now()) {
		return nil, apperrors.TimePassed("Cannot register availability in the past")
	}
	if minute := start.Minute(); minute != 0 && minute != 30 || start.Second() != 0 || start.Nanosecond() != 0 {
		return nil, apperrors.InvalidStartTime("Start time must fall on a :00 or :30 boundary")
	}

	created := make([]*model.Slot, 0, reg.DurationMin.Units())
	for i := 0; i < reg.DurationMin.Units(); i++ {
		slotStart := start.Add(time.Duration(i) * model.SlotLength)

		exists, err := s.repo.ExistsByTutorAndStart(ctx, reg.TutorID, slotStart)
		if err != nil {
			s.cfg.Log.Error("Failed to check slot existence", "tutor_id", reg.TutorID, "error", err)
			return nil, apperrors.Internal("Failed to register slot", err)
		}
		if exists {
			continue
		}

		slot := &model.Slot{
			TutorID:   reg.TutorID,
			StartTime: slotStart,
			EndTime:   slotStart.Add(model.SlotLength),
			IsBooked:  false,
		}
		if err := s.repo.Create(ctx, slot); err != nil {
			// A concurrent registration won the unique index; same
			// outcome as the exists check above.
			if errors.Is(err, availabilityerrors.ErrDuplicateSlot) {
				continue
			}
			s.cfg.Log.Error("Failed to create slot", "tutor_id", reg.TutorID, "error", err)
			return nil, apperrors.Internal("Failed to register slot", err)
		}
		created = append(created, slot)
	}

	s.cfg.Log.Info("Availability registered",
		"tutor_id", reg.TutorID,
		"start_time", start,
		"duration_min", int(reg.DurationMin),
		"slots_created", len(created),
	)
	return created, nil
}

// Delete removes an unbooked slot owned by the calling tutor.
func (s *tutorAvailabilityService) Delete(ctx context.Context, slotID, tutorID string) error {
	if slotID == "" || tutorID == "" {
		return apperrors.InvalidInput("Slot ID and tutor ID are required")
	}

	slot, err := s.repo.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Slot", slotID)
		}
		if errors.Is(err, availabilityerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid slot ID format")
		}
		return apperrors.Internal("Failed to retrieve slot", err)
	}

	if slot.TutorID != tutorID {
		return apperrors.Forbidden("Only the owning tutor may delete a slot")
	}
	if slot.IsBooked {
		return apperrors.AlreadyBooked("Booked slots cannot be deleted")
	}

	if err := s.repo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, availabilityerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Slot", slotID)
		}
		return apperrors.Internal("Failed to delete slot", err)
	}

	s.cfg.Log.Info("Slot deleted", "slot_id", slotID, "tutor_id", tutorID)
	return nil
}

func (s *tutorAvailabilityService) ListByTutor(ctx context.Context, tutorID string) ([]*model.Slot, error) {
	if tutorID == "" {
		return nil, apperrors.InvalidInput("Tutor ID cannot be empty")
	}

	slots, err := s.repo.FindByTutorOrderedByStart(ctx, tutorID)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "tutor_id", tutorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	return slots, nil
}
