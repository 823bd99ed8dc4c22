package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/userstats"
)

type StatsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	user string
}

// NewStatsCommand returns the stats command.
func NewStatsCommand(rootCmd *RootCommand, app *kingpin.Application) *StatsCommand {
	c := &StatsCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("stats", "Show a user profile: counters, balance and badges.")
	c.Cmd.Arg("user", "User to show.").Required().StringVar(&c.user)

	return c
}

func (c StatsCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatsCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	engine, err := achievement.NewEngine(achievement.EngineConfig{
		Repository: repo,
		Identity:   ServiceIdentity,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create achievement engine: %w", err)
	}

	svc, err := userstats.NewService(userstats.ServiceConfig{
		Repository: repo,
		Engine:     engine,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	profile, err := svc.Run(ctx, userstats.Request{User: c.user})
	if err != nil {
		return fmt.Errorf("could not get profile: %w", err)
	}

	return c.rootCmd.Printer().PrintProfile(*profile)
}
