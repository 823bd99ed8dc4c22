package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/ledger"
	"github.com/sidequests/questd/internal/model"
)

type BalanceCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	user    string
	assetID uint64
}

// NewBalanceCommand returns the balance command.
func NewBalanceCommand(rootCmd *RootCommand, app *kingpin.Application) *BalanceCommand {
	c := &BalanceCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("balance", "Show a user's balance of one asset.")
	c.Cmd.Arg("user", "Balance holder.").Required().StringVar(&c.user)
	c.Cmd.Flag("asset", "Asset id.").Default(fmt.Sprint(model.FungibleAssetID)).Uint64Var(&c.assetID)

	return c
}

func (c BalanceCommand) Name() string { return c.Cmd.FullCommand() }

func (c BalanceCommand) Run(ctx context.Context) error {
	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	svc, err := ledger.NewService(ledger.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	amount, err := svc.BalanceOf(ctx, c.user, c.assetID)
	if err != nil {
		return fmt.Errorf("could not get balance: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "%d\n", amount)

	return nil
}
