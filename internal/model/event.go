package model

import "time"

// EventType identifies a state change emitted by the core for external
// indexers and UIs.
type EventType string

const (
	EventTaskCreated      EventType = "task_created"
	EventTaskClaimed      EventType = "task_claimed"
	EventTaskCompleted    EventType = "task_completed"
	EventTaskVerified     EventType = "task_verified"
	EventTaskCancelled    EventType = "task_cancelled"
	EventBadgeMinted      EventType = "badge_minted"
	EventMilestoneReached EventType = "milestone_reached"
)

// Event is a committed state change. Events are appended to storage inside
// the transaction that produces them and published to in-process
// subscribers only after that transaction has committed.
type Event struct {
	// Seq is the storage sequence number, assigned on append. Zero for
	// events that have not been persisted.
	Seq  uint64
	ID   string
	Type EventType
	At   time.Time

	// TaskID is set for task lifecycle events.
	TaskID uint64
	// User is the affected principal (creator, worker or badge recipient).
	User string
	// Metadata carries the task metadata URI on creation events.
	Metadata string
	// AchievementType is set for badge/milestone events.
	AchievementType AchievementType
	// AssetID is set for badge mint events.
	AssetID uint64
}
