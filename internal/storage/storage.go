package storage

import (
	"context"

	"github.com/sidequests/questd/internal/model"
)

// TaskFilter selects tasks on list operations. Zero value matches all tasks.
type TaskFilter struct {
	Creator string
	Worker  string
	Status  model.TaskStatus
	// OpenOnly limits to tasks a worker could still pick up (created or in
	// progress).
	OpenOnly bool
}

// TaskRepository is the persistence interface for task entities.
type TaskRepository interface {
	// CreateTask stores a new task and returns its assigned id. Ids are
	// monotonically increasing and never reused, including after deletes.
	CreateTask(ctx context.Context, t model.Task) (uint64, error)
	GetTask(ctx context.Context, id uint64) (*model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id uint64) error
	ListTasks(ctx context.Context, f TaskFilter) ([]model.Task, error)
	// TaskCount returns the number of tasks ever created (the id counter),
	// not the number of rows currently stored.
	TaskCount(ctx context.Context) (uint64, error)
}

// BalanceRepository is the persistence interface for reward ledger balances.
type BalanceRepository interface {
	GetBalance(ctx context.Context, holder string, assetID uint64) (uint64, error)
	AddBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error
	SubBalance(ctx context.Context, holder string, assetID uint64, amount uint64) error
	// ListBadgeAssets returns the badge asset ids (>=1) the holder has a
	// positive balance of.
	ListBadgeAssets(ctx context.Context, holder string) ([]uint64, error)
	GetLedgerState(ctx context.Context) (model.LedgerState, error)
	SetLedgerState(ctx context.Context, s model.LedgerState) error
}

// AchievementRepository is the persistence interface for per-user counters
// and one-shot award flags.
type AchievementRepository interface {
	// GetUserStats returns the user's counters, zero-valued if the user has
	// no recorded activity yet.
	GetUserStats(ctx context.Context, user string) (model.UserStats, error)
	UpsertUserStats(ctx context.Context, s model.UserStats) error
	HasAward(ctx context.Context, user string, t model.AchievementType) (bool, error)
	CreateAward(ctx context.Context, a model.Award) error
	ListAwards(ctx context.Context, user string) ([]model.Award, error)
}

// EventRepository is the persistence interface for the committed event log.
// Events are appended inside the transaction that produces them, so the log
// never records a state change that was rolled back.
type EventRepository interface {
	// AppendEvent stores an event. The repository assigns it the next
	// sequence number.
	AppendEvent(ctx context.Context, e model.Event) error
	// ListEventsAfter returns up to limit events with a sequence number
	// strictly greater than seq, in sequence order.
	ListEventsAfter(ctx context.Context, seq uint64, limit int) ([]model.Event, error)
	// LatestEventSeq returns the sequence number of the newest event, zero
	// if the log is empty.
	LatestEventSeq(ctx context.Context) (uint64, error)
}

// AccessRepository is the persistence interface for the capability set.
type AccessRepository interface {
	HasCapability(ctx context.Context, principal string, c model.Capability) (bool, error)
	AddGrant(ctx context.Context, g model.Grant) error
	RemoveGrant(ctx context.Context, g model.Grant) error
	ListGrants(ctx context.Context, c model.Capability) ([]model.Grant, error)
}

// Repository aggregates all core persistence behind a single transactional
// boundary.
type Repository interface {
	TaskRepository
	BalanceRepository
	AchievementRepository
	AccessRepository
	EventRepository

	// Atomic runs fn against a transactional view of the repository: every
	// repository call made through the view commits or rolls back as one
	// unit. Implementations serialize concurrent Atomic blocks (single
	// writer). Calling Atomic on a view that is already transactional runs
	// fn directly on that view.
	Atomic(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
