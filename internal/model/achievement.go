package model

// AchievementType identifies one badge in the static achievement catalog.
type AchievementType uint64

const (
	AchievementFirstQuest       AchievementType = 0
	AchievementGettingStarted   AchievementType = 1
	AchievementTaskHunter       AchievementType = 2
	AchievementDedicatedWorker  AchievementType = 3
	AchievementVeteranQuester   AchievementType = 4
	AchievementQuestMaster      AchievementType = 5
	AchievementEarlyAdopter     AchievementType = 6
	AchievementTokenCollector   AchievementType = 7
	AchievementWealthBuilder    AchievementType = 8
	AchievementTokenWhale       AchievementType = 9
	AchievementCommunityBuilder AchievementType = 10
	AchievementMentor           AchievementType = 11
	AchievementWeekWarrior      AchievementType = 12
	AchievementMonthlyChampion  AchievementType = 13
	AchievementTopPerformer     AchievementType = 14
	AchievementHelpfulReviewer  AchievementType = 15
)

// Rarity is the badge rarity tier (1-4).
type Rarity int

const (
	RarityCommon    Rarity = 1
	RarityRare      Rarity = 2
	RarityEpic      Rarity = 3
	RarityLegendary Rarity = 4
)

// String returns the display name of the rarity tier.
func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	}
	return "Unknown"
}

// BadgeMeta is the static, immutable metadata of one achievement type.
type BadgeMeta struct {
	Type        AchievementType
	Title       string
	Description string
	ImageURI    string
	Rarity      Rarity
}

// UserStats are the per-user achievement counters.
//
// Counters are monotonically increasing, except CurrentStreak which resets
// when a day is skipped. LastCompletionDay is a UTC day number (unix/86400);
// zero means the user never completed a task.
type UserStats struct {
	User              string
	TasksCompleted    uint64
	TokensEarned      uint64
	TasksCreated      uint64
	CurrentStreak     uint64
	MaxStreak         uint64
	LastCompletionDay uint64
}

// Award records a one-time achievement badge granted to a user.
// Once written, it is never removed.
type Award struct {
	User     string
	Type     AchievementType
	MintedAt int64
}
