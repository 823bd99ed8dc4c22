package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/sidequests/questd/internal/access"
	storageio "github.com/sidequests/questd/internal/storage/io"
)

type InitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	genesisPath string
}

// NewInitCommand returns the init command.
func NewInitCommand(rootCmd *RootCommand, app *kingpin.Application) *InitCommand {
	c := &InitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("init", "Initialize the marketplace from a genesis file.")
	c.Cmd.Flag("genesis", "Path to the genesis YAML file.").Required().StringVar(&c.genesisPath)

	return c
}

func (c InitCommand) Name() string { return c.Cmd.FullCommand() }

func (c InitCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	abs, err := filepath.Abs(c.genesisPath)
	if err != nil {
		return fmt.Errorf("invalid genesis path: %w", err)
	}

	genesisRepo := storageio.NewGenesisYAMLRepository(os.DirFS(filepath.Dir(abs)))
	genesis, err := genesisRepo.GetGenesis(ctx, filepath.Base(abs))
	if err != nil {
		return fmt.Errorf("could not load genesis: %w", err)
	}

	// The daemon identity mints rewards and badges, it always gets the
	// minter capability.
	genesis.Minters = append(genesis.Minters, ServiceIdentity)

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	controller, err := access.NewController(access.ControllerConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create access controller: %w", err)
	}

	if err := controller.Seed(ctx, genesis); err != nil {
		return fmt.Errorf("could not seed genesis: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Marketplace initialized\n")
	fmt.Fprintf(c.rootCmd.Stdout, "  Admin:    %s\n", genesis.Admin)
	fmt.Fprintf(c.rootCmd.Stdout, "  Currency: %s (%s)\n", genesis.Currency.Name, genesis.Currency.Symbol)

	return nil
}
