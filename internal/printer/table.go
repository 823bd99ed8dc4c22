package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/model"
)

// TablePrinter prints marketplace information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskList prints tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tCREATOR\tWORKER\tREWARD\tCREATED")

	for _, task := range tasks {
		worker := task.Worker
		if worker == "" {
			worker = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			task.ID, task.Status, task.Creator, worker,
			formatReward(task.Reward), TimeAgo(task.CreatedAt))
	}

	return nil
}

// PrintTask prints detailed task status.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:         %d\n", task.ID)
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Creator:    %s\n", task.Creator)
	if task.Worker != "" {
		fmt.Fprintf(t.writer, "Worker:     %s\n", task.Worker)
	}
	fmt.Fprintf(t.writer, "Metadata:   %s\n", task.MetadataURI)
	fmt.Fprintf(t.writer, "Reward:     %s\n", formatReward(task.Reward))
	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(task.CreatedAt))

	if task.ClaimedAt != nil {
		fmt.Fprintf(t.writer, "Claimed:    %s\n", FormatTimestamp(*task.ClaimedAt))
	}
	if task.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*task.CompletedAt))
	}
	if task.VerifiedAt != nil {
		fmt.Fprintf(t.writer, "Verified:   %s\n", FormatTimestamp(*task.VerifiedAt))
	}

	return nil
}

// PrintProfile prints a user profile snapshot.
func (t *TablePrinter) PrintProfile(profile userstats.Result) error {
	fmt.Fprintf(t.writer, "User:             %s\n", profile.Stats.User)
	fmt.Fprintf(t.writer, "Balance:          %d\n", profile.Balance)
	fmt.Fprintf(t.writer, "Tasks completed:  %d\n", profile.Stats.TasksCompleted)
	fmt.Fprintf(t.writer, "Tasks created:    %d\n", profile.Stats.TasksCreated)
	fmt.Fprintf(t.writer, "Tokens earned:    %d\n", profile.Stats.TokensEarned)
	fmt.Fprintf(t.writer, "Current streak:   %d\n", profile.Stats.CurrentStreak)
	fmt.Fprintf(t.writer, "Max streak:       %d\n", profile.Stats.MaxStreak)
	fmt.Fprintf(t.writer, "Badges:           %d\n", len(profile.Badges))

	return nil
}

// PrintBadges prints badges in a table format.
func (t *TablePrinter) PrintBadges(badges []achievement.Badge) error {
	if len(badges) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "BADGE\tRARITY\tDESCRIPTION\tMINTED")

	for _, b := range badges {
		minted := time.Unix(b.MintedAt, 0)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			b.Meta.Title, b.Meta.Rarity, b.Meta.Description, TimeAgo(minted))
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func formatReward(reward []model.RewardEntry) string {
	parts := make([]string, 0, len(reward))
	for _, r := range reward {
		parts = append(parts, fmt.Sprintf("%d x asset %d", r.Amount, r.AssetID))
	}
	return strings.Join(parts, ", ")
}
