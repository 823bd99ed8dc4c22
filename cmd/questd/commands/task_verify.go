package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/taskverify"
)

type TaskVerifyCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID uint64
}

// NewTaskVerifyCommand returns the task verify command.
func NewTaskVerifyCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskVerifyCommand {
	c := &TaskVerifyCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("verify", "Verify a completed task and pay the worker.")
	c.Cmd.Arg("id", "Task id.").Required().Uint64Var(&c.taskID)

	return c
}

func (c TaskVerifyCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskVerifyCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := taskverify.NewService(taskverify.ServiceConfig{
		Repository:   repo,
		Notifier:     newNotifier(c.rootCmd),
		MintIdentity: ServiceIdentity,
		Logger:       c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskverify.Request{TaskID: c.taskID, Caller: c.rootCmd.Caller})
	if err != nil {
		return fmt.Errorf("could not verify task: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Task %d verified, reward paid to %s\n", res.Task.ID, res.Task.Worker)
	for _, m := range res.Milestones {
		fmt.Fprintf(c.rootCmd.Stdout, "  Milestone reached: %s (%s)\n", m.Title, m.Rarity)
	}

	return nil
}
