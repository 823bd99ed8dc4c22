package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/taskclaim"
)

type TaskClaimCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID uint64
}

// NewTaskClaimCommand returns the task claim command.
func NewTaskClaimCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskClaimCommand {
	c := &TaskClaimCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("claim", "Claim an open task.")
	c.Cmd.Arg("id", "Task id.").Required().Uint64Var(&c.taskID)

	return c
}

func (c TaskClaimCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskClaimCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := taskclaim.NewService(taskclaim.ServiceConfig{
		Repository: repo,
		Notifier:   newNotifier(c.rootCmd),
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskclaim.Request{TaskID: c.taskID, Worker: c.rootCmd.Caller})
	if err != nil {
		return fmt.Errorf("could not claim task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task %d claimed by %s\n", task.ID, task.Worker)

	return nil
}
