package model

import (
	"fmt"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusCreated indicates the task is open and unclaimed.
	TaskStatusCreated TaskStatus = "created"
	// TaskStatusInProgress indicates a worker has claimed the task.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the worker marked the task done and it
	// awaits verification by the creator.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusVerified indicates the creator verified the task and the
	// reward was paid. Terminal.
	TaskStatusVerified TaskStatus = "verified"
)

// RewardEntry is one (asset, amount) pair of a task's reward specification.
type RewardEntry struct {
	AssetID uint64
	Amount  uint64
}

// Task represents a marketplace task and its lifecycle state.
//
// Worker is empty while the task is open; it is set exactly once when the
// task is claimed and never changes afterwards.
type Task struct {
	ID          uint64
	Creator     string
	Worker      string
	MetadataURI string
	Reward      []RewardEntry
	Status      TaskStatus
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time
}

// ValidateReward validates a task reward specification: at least one entry,
// every amount strictly positive.
func ValidateReward(reward []RewardEntry) error {
	if len(reward) == 0 {
		return fmt.Errorf("reward spec requires at least one entry: %w", ErrNotValid)
	}
	for _, e := range reward {
		if e.Amount == 0 {
			return fmt.Errorf("reward amount for asset %d must be positive: %w", e.AssetID, ErrNotValid)
		}
	}
	return nil
}

// CanClaim reports whether the task can be claimed by the given worker.
func (t *Task) CanClaim(worker string) error {
	if t.Status != TaskStatusCreated {
		return fmt.Errorf("task %d is not open (status: %s): %w", t.ID, t.Status, ErrInvalidState)
	}
	if worker == t.Creator {
		return fmt.Errorf("creator cannot claim their own task: %w", ErrNotValid)
	}
	return nil
}

// CanComplete reports whether the given caller can mark the task completed.
func (t *Task) CanComplete(caller string) error {
	if caller != t.Worker {
		return fmt.Errorf("only the assigned worker can complete task %d: %w", t.ID, ErrUnauthorized)
	}
	if t.Status != TaskStatusInProgress {
		return fmt.Errorf("task %d is not in progress (status: %s): %w", t.ID, t.Status, ErrInvalidState)
	}
	return nil
}

// CanVerify reports whether the given caller can verify the task.
func (t *Task) CanVerify(caller string) error {
	if caller != t.Creator {
		return fmt.Errorf("only the creator can verify task %d: %w", t.ID, ErrUnauthorized)
	}
	if t.Status != TaskStatusCompleted {
		return fmt.Errorf("task %d is not completed (status: %s): %w", t.ID, t.Status, ErrInvalidState)
	}
	return nil
}

// CanCancel reports whether the given caller can cancel the task.
// Only unclaimed tasks can be cancelled.
func (t *Task) CanCancel(caller string) error {
	if caller != t.Creator {
		return fmt.Errorf("only the creator can cancel task %d: %w", t.ID, ErrUnauthorized)
	}
	if t.Status != TaskStatusCreated || t.Worker != "" {
		return fmt.Errorf("task %d is already assigned or finished (status: %s): %w", t.ID, t.Status, ErrInvalidState)
	}
	return nil
}
