package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/taskcreate"
	"github.com/sidequests/questd/internal/model"
)

type TaskCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	metadataURI string
	rewards     []string
}

// NewTaskCreateCommand returns the task create command.
func NewTaskCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskCreateCommand {
	c := &TaskCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a new task.")
	c.Cmd.Flag("metadata", "Task metadata URI.").Required().StringVar(&c.metadataURI)
	c.Cmd.Flag("reward", "Reward entry as <asset-id>:<amount>. Repeatable.").Required().StringsVar(&c.rewards)

	return c
}

func (c TaskCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCreateCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	reward, err := parseRewards(c.rewards)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := taskcreate.NewService(taskcreate.ServiceConfig{
		Repository:   repo,
		Notifier:     newNotifier(c.rootCmd),
		MintIdentity: ServiceIdentity,
		Logger:       c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskcreate.Request{
		Creator:     c.rootCmd.Caller,
		MetadataURI: c.metadataURI,
		Reward:      reward,
	})
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task %d created\n", task.ID)

	return nil
}

// parseRewards parses repeated <asset-id>:<amount> flag values.
func parseRewards(raw []string) ([]model.RewardEntry, error) {
	reward := make([]model.RewardEntry, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid reward %q, expected <asset-id>:<amount>", r)
		}

		assetID, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reward asset id %q: %w", parts[0], err)
		}

		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid reward amount %q: %w", parts[1], err)
		}

		reward = append(reward, model.RewardEntry{AssetID: assetID, Amount: amount})
	}

	return reward, nil
}
