package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/taskcancel"
)

type TaskCancelCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID uint64
}

// NewTaskCancelCommand returns the task cancel command.
func NewTaskCancelCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskCancelCommand {
	c := &TaskCancelCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("cancel", "Cancel an unclaimed task.")
	c.Cmd.Arg("id", "Task id.").Required().Uint64Var(&c.taskID)

	return c
}

func (c TaskCancelCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCancelCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := taskcancel.NewService(taskcancel.ServiceConfig{
		Repository: repo,
		Notifier:   newNotifier(c.rootCmd),
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Run(ctx, taskcancel.Request{TaskID: c.taskID, Caller: c.rootCmd.Caller}); err != nil {
		return fmt.Errorf("could not cancel task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task %d cancelled\n", c.taskID)

	return nil
}
