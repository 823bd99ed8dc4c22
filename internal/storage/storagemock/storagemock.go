// Package storagemock contains testify mocks for the storage interfaces.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

var _ storage.Repository = (*MockRepository)(nil)

func (m *MockRepository) CreateTask(ctx context.Context, t model.Task) (uint64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockRepository) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockRepository) UpdateTask(ctx context.Context, t model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) DeleteTask(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListTasks(ctx context.Context, f storage.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockRepository) TaskCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockRepository) GetBalance(ctx context.Context, holder string, assetID uint64) (uint64, error) {
	args := m.Called(ctx, holder, assetID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockRepository) AddBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	args := m.Called(ctx, holder, assetID, amount)
	return args.Error(0)
}

func (m *MockRepository) SubBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error {
	args := m.Called(ctx, holder, assetID, amount)
	return args.Error(0)
}

func (m *MockRepository) ListBadgeAssets(ctx context.Context, holder string) ([]uint64, error) {
	args := m.Called(ctx, holder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *MockRepository) GetLedgerState(ctx context.Context) (model.LedgerState, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.LedgerState), args.Error(1)
}

func (m *MockRepository) SetLedgerState(ctx context.Context, s model.LedgerState) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) GetUserStats(ctx context.Context, user string) (model.UserStats, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.UserStats), args.Error(1)
}

func (m *MockRepository) UpsertUserStats(ctx context.Context, s model.UserStats) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) HasAward(ctx context.Context, user string, t model.AchievementType) (bool, error) {
	args := m.Called(ctx, user, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateAward(ctx context.Context, a model.Award) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) ListAwards(ctx context.Context, user string) ([]model.Award, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Award), args.Error(1)
}

func (m *MockRepository) AppendEvent(ctx context.Context, e model.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) ListEventsAfter(ctx context.Context, seq uint64, limit int) ([]model.Event, error) {
	args := m.Called(ctx, seq, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockRepository) LatestEventSeq(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockRepository) HasCapability(ctx context.Context, principal string, c model.Capability) (bool, error) {
	args := m.Called(ctx, principal, c)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) AddGrant(ctx context.Context, g model.Grant) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockRepository) RemoveGrant(ctx context.Context, g model.Grant) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockRepository) ListGrants(ctx context.Context, c model.Capability) ([]model.Grant, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Grant), args.Error(1)
}

// Atomic runs fn directly against the mock, so expectations set on the mock
// apply inside transactional blocks too. It is intentionally not recorded as
// a call.
func (m *MockRepository) Atomic(ctx context.Context, fn func(ctx context.Context, r storage.Repository) error) error {
	return fn(ctx, m)
}
