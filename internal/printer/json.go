package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/model"
)

// JSONPrinter prints marketplace information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// rewardOutput represents a reward entry output.
type rewardOutput struct {
	AssetID uint64 `json:"asset_id"`
	Amount  uint64 `json:"amount"`
}

// taskOutput represents a task output.
type taskOutput struct {
	ID          uint64         `json:"id"`
	Status      string         `json:"status"`
	Creator     string         `json:"creator"`
	Worker      string         `json:"worker,omitempty"`
	MetadataURI string         `json:"metadata_uri"`
	Reward      []rewardOutput `json:"reward"`
	CreatedAt   time.Time      `json:"created_at"`
	ClaimedAt   *time.Time     `json:"claimed_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	VerifiedAt  *time.Time     `json:"verified_at,omitempty"`
}

// badgeOutput represents a badge output.
type badgeOutput struct {
	Type        uint64 `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURI    string `json:"image_uri"`
	Rarity      string `json:"rarity"`
	MintedAt    int64  `json:"minted_at"`
}

// profileOutput represents a user profile output.
type profileOutput struct {
	User           string        `json:"user"`
	Balance        uint64        `json:"balance"`
	TasksCompleted uint64        `json:"tasks_completed"`
	TasksCreated   uint64        `json:"tasks_created"`
	TokensEarned   uint64        `json:"tokens_earned"`
	CurrentStreak  uint64        `json:"current_streak"`
	MaxStreak      uint64        `json:"max_streak"`
	Badges         []badgeOutput `json:"badges"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func newTaskOutput(t model.Task) taskOutput {
	reward := make([]rewardOutput, 0, len(t.Reward))
	for _, r := range t.Reward {
		reward = append(reward, rewardOutput{AssetID: r.AssetID, Amount: r.Amount})
	}

	return taskOutput{
		ID:          t.ID,
		Status:      string(t.Status),
		Creator:     t.Creator,
		Worker:      t.Worker,
		MetadataURI: t.MetadataURI,
		Reward:      reward,
		CreatedAt:   t.CreatedAt.UTC(),
		ClaimedAt:   utcPtr(t.ClaimedAt),
		CompletedAt: utcPtr(t.CompletedAt),
		VerifiedAt:  utcPtr(t.VerifiedAt),
	}
}

func newBadgeOutput(b achievement.Badge) badgeOutput {
	return badgeOutput{
		Type:        uint64(b.Meta.Type),
		Title:       b.Meta.Title,
		Description: b.Meta.Description,
		ImageURI:    b.Meta.ImageURI,
		Rarity:      b.Meta.Rarity.String(),
		MintedAt:    b.MintedAt,
	}
}

// PrintTaskList prints tasks in JSON format.
func (j *JSONPrinter) PrintTaskList(tasks []model.Task) error {
	items := make([]taskOutput, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, newTaskOutput(t))
	}

	return j.encode(items)
}

// PrintTask prints a single task in JSON format.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	return j.encode(newTaskOutput(task))
}

// PrintProfile prints a user profile in JSON format.
func (j *JSONPrinter) PrintProfile(profile userstats.Result) error {
	badges := make([]badgeOutput, 0, len(profile.Badges))
	for _, b := range profile.Badges {
		badges = append(badges, newBadgeOutput(b))
	}

	return j.encode(profileOutput{
		User:           profile.Stats.User,
		Balance:        profile.Balance,
		TasksCompleted: profile.Stats.TasksCompleted,
		TasksCreated:   profile.Stats.TasksCreated,
		TokensEarned:   profile.Stats.TokensEarned,
		CurrentStreak:  profile.Stats.CurrentStreak,
		MaxStreak:      profile.Stats.MaxStreak,
		Badges:         badges,
	})
}

// PrintBadges prints badges in JSON format.
func (j *JSONPrinter) PrintBadges(badges []achievement.Badge) error {
	items := make([]badgeOutput, 0, len(badges))
	for _, b := range badges {
		items = append(items, newBadgeOutput(b))
	}

	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v interface{}) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
