package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/app/badgeaward"
	"github.com/sidequests/questd/internal/model"
)

// NewBadgeCommand returns the parent command for badge subcommands.
func NewBadgeCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("badge", "Manage achievement badges.")
}

type BadgeAwardCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	user      string
	badgeType uint64
}

// NewBadgeAwardCommand returns the badge award command.
func NewBadgeAwardCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *BadgeAwardCommand {
	c := &BadgeAwardCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("award", "Award a manual badge to a user (admin only).")
	c.Cmd.Arg("user", "Badge recipient.").Required().StringVar(&c.user)
	c.Cmd.Arg("type", "Achievement type id.").Required().Uint64Var(&c.badgeType)

	return c
}

func (c BadgeAwardCommand) Name() string { return c.Cmd.FullCommand() }

func (c BadgeAwardCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := badgeaward.NewService(badgeaward.ServiceConfig{
		Repository:   repo,
		Notifier:     newNotifier(c.rootCmd),
		MintIdentity: ServiceIdentity,
		Logger:       c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	meta, err := svc.Run(ctx, badgeaward.Request{
		Caller: c.rootCmd.Caller,
		User:   c.user,
		Type:   model.AchievementType(c.badgeType),
	})
	if err != nil {
		return fmt.Errorf("could not award badge: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Awarded %q (%s) to %s\n", meta.Title, meta.Rarity, c.user)

	return nil
}
