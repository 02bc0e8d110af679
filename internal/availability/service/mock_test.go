package service

import (
	"context"
	"time"

	"tutorly/pkg/config"
	mongotx "tutorly/pkg/db/mongo"
	"tutorly/pkg/logger"
	"tutorly/pkg/model"
)

// Mock repository for testing
type mockSlotRepository struct {
	createFunc             func(ctx context.Context, slot *model.Slot) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Slot, error)
	deleteFunc             func(ctx context.Context, id string) error
	findByTutorFunc        func(ctx context.Context, tutorID string) ([]*model.Slot, error)
	existsFunc             func(ctx context.Context, tutorID string, start time.Time) (bool, error)
	findUnbookedFunc       func(ctx context.Context, start, end time.Time) ([]*model.Slot, error)
	findByTutorRangeFunc   func(ctx context.Context, tutorID string, start, end time.Time) ([]*model.Slot, error)
	findExcludingFunc      func(ctx context.Context, excludedTutorID string, start, end time.Time) ([]*model.Slot, error)
	markBookedFunc         func(ctx context.Context, id string) error
	executeTransactionFunc func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, slot)
	}
	return nil
}

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSlotRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockSlotRepository) FindByTutorOrderedByStart(ctx context.Context, tutorID string) ([]*model.Slot, error) {
	if m.findByTutorFunc != nil {
		return m.findByTutorFunc(ctx, tutorID)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) ExistsByTutorAndStart(ctx context.Context, tutorID string, start time.Time) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, tutorID, start)
	}
	return false, nil
}

func (m *mockSlotRepository) FindUnbookedInRange(ctx context.Context, start, end time.Time) ([]*model.Slot, error) {
	if m.findUnbookedFunc != nil {
		return m.findUnbookedFunc(ctx, start, end)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) FindUnbookedByTutorInRange(ctx context.Context, tutorID string, start, end time.Time) ([]*model.Slot, error) {
	if m.findByTutorRangeFunc != nil {
		return m.findByTutorRangeFunc(ctx, tutorID, start, end)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) FindUnbookedExcludingTutorInRange(ctx context.Context, excludedTutorID string, start, end time.Time) ([]*model.Slot, error) {
	if m.findExcludingFunc != nil {
		return m.findExcludingFunc(ctx, excludedTutorID, start, end)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) MarkBooked(ctx context.Context, id string) error {
	if m.markBookedFunc != nil {
		return m.markBookedFunc(ctx, id)
	}
	return nil
}

func (m *mockSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:   logger.INFO,
		Format:  logger.JSON,
		Service: "test",
	})
	return &config.Config{Log: log}
}
