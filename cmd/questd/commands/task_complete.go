package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/taskcomplete"
)

type TaskCompleteCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID uint64
}

// NewTaskCompleteCommand returns the task complete command.
func NewTaskCompleteCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskCompleteCommand {
	c := &TaskCompleteCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("complete", "Mark a claimed task as completed.")
	c.Cmd.Arg("id", "Task id.").Required().Uint64Var(&c.taskID)

	return c
}

func (c TaskCompleteCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCompleteCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := taskcomplete.NewService(taskcomplete.ServiceConfig{
		Repository: repo,
		Notifier:   newNotifier(c.rootCmd),
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	task, err := svc.Run(ctx, taskcomplete.Request{TaskID: c.taskID, Caller: c.rootCmd.Caller})
	if err != nil {
		return fmt.Errorf("could not complete task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task %d completed, pending verification by %s\n", task.ID, task.Creator)

	return nil
}
