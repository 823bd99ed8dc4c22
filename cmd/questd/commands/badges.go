package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/achievement"
)

type BadgesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	user string
}

// NewBadgesCommand returns the badges command.
func NewBadgesCommand(rootCmd *RootCommand, app *kingpin.Application) *BadgesCommand {
	c := &BadgesCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("badges", "List the badges a user holds.")
	c.Cmd.Arg("user", "User to show.").Required().StringVar(&c.user)

	return c
}

func (c BadgesCommand) Name() string { return c.Cmd.FullCommand() }

func (c BadgesCommand) Run(ctx context.Context) error {
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

	badges, err := engine.Badges(ctx, c.user)
	if err != nil {
		return fmt.Errorf("could not get badges: %w", err)
	}

	return c.rootCmd.Printer().PrintBadges(badges)
}
