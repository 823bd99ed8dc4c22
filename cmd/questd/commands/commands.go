package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/sidequests/questd/internal/conventions"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/log"
	"github.com/sidequests/questd/internal/printer"
	"github.com/sidequests/questd/internal/storage"
	"github.com/sidequests/questd/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	// OutputTable is the table output format.
	OutputTable = "table"
	// OutputJSON is the JSON output format.
	OutputJSON = "json"
)

// ServiceIdentity is the principal rewards and badges are minted as. It is
// granted the minter capability at genesis.
const ServiceIdentity = "questd"

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	Output     string
	DBPath     string
	Caller     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("output", "Selects the output format.").Short('o').Default(OutputTable).EnumVar(&c.Output, OutputTable, OutputJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir, conventions.DBFile)
	app.Flag("db-path", "Path to the SQLite database file.").Envar("QUESTD_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	app.Flag("as", "Principal acting as the caller of the command.").Envar("QUESTD_AS").StringVar(&c.Caller)

	return c
}

// Printer returns the printer matching the selected output format.
func (c *RootCommand) Printer() printer.Printer {
	if c.Output == OutputJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout)
}

// requireCaller validates that a caller identity was provided.
func (c *RootCommand) requireCaller() error {
	if c.Caller == "" {
		return fmt.Errorf("--as (or QUESTD_AS) is required for this command")
	}
	return nil
}

// newRepository opens the sqlite repository and runs pending migrations.
func newRepository(ctx context.Context, rootCmd *RootCommand) (storage.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, nil
}

// newNotifier returns an event notifier for one-shot commands. CLI commands
// have no live subscribers; their events reach the serve daemon's websocket
// feed through the persisted event log, which the daemon tails.
func newNotifier(rootCmd *RootCommand) *event.Notifier {
	return event.NewNotifier(event.NotifierConfig{Logger: rootCmd.Logger})
}
