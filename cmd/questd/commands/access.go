package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/access"
	"github.com/sidequests/questd/internal/model"
)

// NewAccessCommand returns the parent command for access subcommands.
func NewAccessCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("access", "Manage capability grants.")
}

func newAccessController(ctx context.Context, rootCmd *RootCommand) (*access.Controller, error) {
	repo, err := newRepository(ctx, rootCmd)
	if err != nil {
		return nil, err
	}

	controller, err := access.NewController(access.ControllerConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create access controller: %w", err)
	}

	return controller, nil
}

type AccessGrantCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	capability string
	principal  string
}

// NewAccessGrantCommand returns the access grant command.
func NewAccessGrantCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessGrantCommand {
	c := &AccessGrantCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("grant", "Grant a capability to a principal (admin only).")
	c.Cmd.Arg("capability", "Capability to grant.").Required().EnumVar(&c.capability,
		string(model.CapabilityMinter), string(model.CapabilityPauser))
	c.Cmd.Arg("principal", "Principal receiving the capability.").Required().StringVar(&c.principal)

	return c
}

func (c AccessGrantCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessGrantCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	controller, err := newAccessController(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := controller.Grant(ctx, c.rootCmd.Caller, model.Capability(c.capability), c.principal); err != nil {
		return fmt.Errorf("could not grant capability: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Granted %s to %s\n", c.capability, c.principal)

	return nil
}

type AccessRevokeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	capability string
	principal  string
}

// NewAccessRevokeCommand returns the access revoke command.
func NewAccessRevokeCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessRevokeCommand {
	c := &AccessRevokeCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("revoke", "Revoke a capability from a principal (admin only).")
	c.Cmd.Arg("capability", "Capability to revoke.").Required().EnumVar(&c.capability,
		string(model.CapabilityMinter), string(model.CapabilityPauser))
	c.Cmd.Arg("principal", "Principal losing the capability.").Required().StringVar(&c.principal)

	return c
}

func (c AccessRevokeCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessRevokeCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	controller, err := newAccessController(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := controller.Revoke(ctx, c.rootCmd.Caller, model.Capability(c.capability), c.principal); err != nil {
		return fmt.Errorf("could not revoke capability: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Revoked %s from %s\n", c.capability, c.principal)

	return nil
}

type AccessTransferAdminCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	newAdmin string
}

// NewAccessTransferAdminCommand returns the access transfer-admin command.
func NewAccessTransferAdminCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AccessTransferAdminCommand {
	c := &AccessTransferAdminCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("transfer-admin", "Transfer adminship to another principal (admin only).")
	c.Cmd.Arg("principal", "New admin.").Required().StringVar(&c.newAdmin)

	return c
}

func (c AccessTransferAdminCommand) Name() string { return c.Cmd.FullCommand() }

func (c AccessTransferAdminCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	controller, err := newAccessController(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := controller.TransferAdmin(ctx, c.rootCmd.Caller, c.newAdmin); err != nil {
		return fmt.Errorf("could not transfer adminship: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Adminship transferred to %s\n", c.newAdmin)

	return nil
}
