package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/ledger"
)

// NewLedgerCommand returns the parent command for ledger subcommands.
func NewLedgerCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("ledger", "Manage the reward ledger.")
}

func newLedgerService(ctx context.Context, rootCmd *RootCommand) (*ledger.Service, error) {
	repo, err := newRepository(ctx, rootCmd)
	if err != nil {
		return nil, err
	}

	svc, err := ledger.NewService(ledger.ServiceConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, nil
}

type LedgerMintCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	to      string
	assetID uint64
	amount  uint64
}

// NewLedgerMintCommand returns the ledger mint command.
func NewLedgerMintCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LedgerMintCommand {
	c := &LedgerMintCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("mint", "Mint an asset to a recipient (minter only).")
	c.Cmd.Arg("to", "Recipient.").Required().StringVar(&c.to)
	c.Cmd.Arg("amount", "Amount to mint.").Required().Uint64Var(&c.amount)
	c.Cmd.Flag("asset", "Asset id.").Default("0").Uint64Var(&c.assetID)

	return c
}

func (c LedgerMintCommand) Name() string { return c.Cmd.FullCommand() }

func (c LedgerMintCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	svc, err := newLedgerService(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := svc.Mint(ctx, c.rootCmd.Caller, c.to, c.assetID, c.amount); err != nil {
		return fmt.Errorf("could not mint: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Minted %d of asset %d to %s\n", c.amount, c.assetID, c.to)

	return nil
}

type LedgerBurnCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	amount uint64
}

// NewLedgerBurnCommand returns the ledger burn command.
func NewLedgerBurnCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LedgerBurnCommand {
	c := &LedgerBurnCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("burn", "Burn currency from the caller's own balance.")
	c.Cmd.Arg("amount", "Amount to burn.").Required().Uint64Var(&c.amount)

	return c
}

func (c LedgerBurnCommand) Name() string { return c.Cmd.FullCommand() }

func (c LedgerBurnCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	svc, err := newLedgerService(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := svc.Burn(ctx, c.rootCmd.Caller, c.amount); err != nil {
		return fmt.Errorf("could not burn: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Burned %d from %s\n", c.amount, c.rootCmd.Caller)

	return nil
}

type LedgerPauseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewLedgerPauseCommand returns the ledger pause command.
func NewLedgerPauseCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LedgerPauseCommand {
	c := &LedgerPauseCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("pause", "Pause all mint and burn operations (pauser only).")

	return c
}

func (c LedgerPauseCommand) Name() string { return c.Cmd.FullCommand() }

func (c LedgerPauseCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	svc, err := newLedgerService(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := svc.Pause(ctx, c.rootCmd.Caller); err != nil {
		return fmt.Errorf("could not pause ledger: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Ledger paused\n")

	return nil
}

type LedgerUnpauseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewLedgerUnpauseCommand returns the ledger unpause command.
func NewLedgerUnpauseCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LedgerUnpauseCommand {
	c := &LedgerUnpauseCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("unpause", "Resume mint and burn operations (pauser only).")

	return c
}

func (c LedgerUnpauseCommand) Name() string { return c.Cmd.FullCommand() }

func (c LedgerUnpauseCommand) Run(ctx context.Context) error {
	if err := c.rootCmd.requireCaller(); err != nil {
		return err
	}

	svc, err := newLedgerService(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	if err := svc.Unpause(ctx, c.rootCmd.Caller); err != nil {
		return fmt.Errorf("could not unpause ledger: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Ledger unpaused\n")

	return nil
}
