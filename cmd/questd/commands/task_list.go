package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/tasklist"
	"github.com/sidequests/questd/internal/model"
	"github.com/sidequests/questd/internal/storage"
)

type TaskListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	creator  string
	worker   string
	status   string
	openOnly bool
}

// NewTaskListCommand returns the task list command.
func NewTaskListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TaskListCommand {
	c := &TaskListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List tasks.")
	c.Cmd.Flag("creator", "Filter by creator.").StringVar(&c.creator)
	c.Cmd.Flag("worker", "Filter by worker.").StringVar(&c.worker)
	c.Cmd.Flag("status", "Filter by status.").EnumVar(&c.status,
		string(model.TaskStatusCreated), string(model.TaskStatusInProgress),
		string(model.TaskStatusCompleted), string(model.TaskStatusVerified))
	c.Cmd.Flag("open", "Only tasks still claimable or in progress.").BoolVar(&c.openOnly)

	return c
}

func (c TaskListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskListCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, tasklist.Request{Filter: storage.TaskFilter{
		Creator:  c.creator,
		Worker:   c.worker,
		Status:   model.TaskStatus(c.status),
		OpenOnly: c.openOnly,
	}})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	return c.rootCmd.Printer().PrintTaskList(tasks)
}
