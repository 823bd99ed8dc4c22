package achievement

import "github.com/sidequests/questd/internal/model"

// The badge catalog is static and immutable: title, description, image and
// rarity are a pure function of the achievement type.
var catalog = map[model.AchievementType]model.BadgeMeta{
	model.AchievementFirstQuest: {
		Type:        model.AchievementFirstQuest,
		Title:       "First Quest",
		Description: "Completed your first task",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/bullseye.png",
		Rarity:      model.RarityCommon,
	},
	model.AchievementGettingStarted: {
		Type:        model.AchievementGettingStarted,
		Title:       "Getting Started",
		Description: "Completed 5 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/running.png",
		Rarity:      model.RarityCommon,
	},
	model.AchievementTaskHunter: {
		Type:        model.AchievementTaskHunter,
		Title:       "Task Hunter",
		Description: "Completed 10 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/search.png",
		Rarity:      model.RarityRare,
	},
	model.AchievementDedicatedWorker: {
		Type:        model.AchievementDedicatedWorker,
		Title:       "Dedicated Worker",
		Description: "Completed 25 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/worker-male.png",
		Rarity:      model.RarityRare,
	},
	model.AchievementVeteranQuester: {
		Type:        model.AchievementVeteranQuester,
		Title:       "Veteran Quester",
		Description: "Completed 50 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/medal.png",
		Rarity:      model.RarityEpic,
	},
	model.AchievementQuestMaster: {
		Type:        model.AchievementQuestMaster,
		Title:       "Quest Master",
		Description: "Completed 100 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/crown.png",
		Rarity:      model.RarityLegendary,
	},
	model.AchievementEarlyAdopter: {
		Type:        model.AchievementEarlyAdopter,
		Title:       "Early Adopter",
		Description: "One of the first members of the platform",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/rocket.png",
		Rarity:      model.RarityRare,
	},
	model.AchievementTokenCollector: {
		Type:        model.AchievementTokenCollector,
		Title:       "Token Collector",
		Description: "Earned 100 tokens",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/money-bag.png",
		Rarity:      model.RarityCommon,
	},
	model.AchievementWealthBuilder: {
		Type:        model.AchievementWealthBuilder,
		Title:       "Wealth Builder",
		Description: "Earned 500 tokens",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/profit.png",
		Rarity:      model.RarityRare,
	},
	model.AchievementTokenWhale: {
		Type:        model.AchievementTokenWhale,
		Title:       "Token Whale",
		Description: "Earned 1000 tokens",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/whale.png",
		Rarity:      model.RarityEpic,
	},
	model.AchievementCommunityBuilder: {
		Type:        model.AchievementCommunityBuilder,
		Title:       "Community Builder",
		Description: "Created 10 tasks",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/conference-call.png",
		Rarity:      model.RarityRare,
	},
	model.AchievementMentor: {
		Type:        model.AchievementMentor,
		Title:       "Mentor",
		Description: "Helped other members grow",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/teacher.png",
		Rarity:      model.RarityEpic,
	},
	model.AchievementWeekWarrior: {
		Type:        model.AchievementWeekWarrior,
		Title:       "Week Warrior",
		Description: "Completed tasks 7 days in a row",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/calendar-7.png",
		Rarity:      model.RarityEpic,
	},
	model.AchievementMonthlyChampion: {
		Type:        model.AchievementMonthlyChampion,
		Title:       "Monthly Champion",
		Description: "Completed tasks 30 days in a row",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/calendar-30.png",
		Rarity:      model.RarityLegendary,
	},
	model.AchievementTopPerformer: {
		Type:        model.AchievementTopPerformer,
		Title:       "Top Performer",
		Description: "Recognized as a top performer",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/trophy.png",
		Rarity:      model.RarityLegendary,
	},
	model.AchievementHelpfulReviewer: {
		Type:        model.AchievementHelpfulReviewer,
		Title:       "Helpful Reviewer",
		Description: "Provided outstanding task reviews",
		ImageURI:    "https://img.icons8.com/fluency/96/000000/rating.png",
		Rarity:      model.RarityRare,
	},
}

// Meta returns the static metadata of an achievement type.
func Meta(t model.AchievementType) (model.BadgeMeta, bool) {
	m, ok := catalog[t]
	return m, ok
}

// manualTypes are badges awarded by an admin, not by counter thresholds.
var manualTypes = map[model.AchievementType]bool{
	model.AchievementEarlyAdopter:    true,
	model.AchievementMentor:          true,
	model.AchievementTopPerformer:    true,
	model.AchievementHelpfulReviewer: true,
}

// IsManual reports whether the achievement is admin awarded.
func IsManual(t model.AchievementType) bool { return manualTypes[t] }

// counterKind identifies the counter family a threshold rule watches.
type counterKind int

const (
	counterTasksCompleted counterKind = iota
	counterTokensEarned
	counterTasksCreated
	counterStreak
)

type thresholdRule struct {
	counter counterKind
	value   uint64
	badge   model.AchievementType
}

// thresholds are evaluated independently: a counter jumping past several
// values in one update awards every crossed badge, not only the first
// matching one.
var thresholds = []thresholdRule{
	{counterTasksCompleted, 1, model.AchievementFirstQuest},
	{counterTasksCompleted, 5, model.AchievementGettingStarted},
	{counterTasksCompleted, 10, model.AchievementTaskHunter},
	{counterTasksCompleted, 25, model.AchievementDedicatedWorker},
	{counterTasksCompleted, 50, model.AchievementVeteranQuester},
	{counterTasksCompleted, 100, model.AchievementQuestMaster},
	{counterTokensEarned, 100, model.AchievementTokenCollector},
	{counterTokensEarned, 500, model.AchievementWealthBuilder},
	{counterTokensEarned, 1000, model.AchievementTokenWhale},
	{counterTasksCreated, 10, model.AchievementCommunityBuilder},
	{counterStreak, 7, model.AchievementWeekWarrior},
	{counterStreak, 30, model.AchievementMonthlyChampion},
}

func counterValue(s model.UserStats, k counterKind) uint64 {
	switch k {
	case counterTasksCompleted:
		return s.TasksCompleted
	case counterTokensEarned:
		return s.TokensEarned
	case counterTasksCreated:
		return s.TasksCreated
	case counterStreak:
		return s.CurrentStreak
	}
	return 0
}
