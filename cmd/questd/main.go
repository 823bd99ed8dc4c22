package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/sidequests/questd/cmd/questd/commands"
	"github.com/sidequests/questd/internal/log"
	loglogrus "github.com/sidequests/questd/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	// Optional .env file for local development.
	_ = godotenv.Load()

	app := kingpin.New("questd", "Gamified task marketplace daemon and CLI.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	initCmd := commands.NewInitCommand(rootCmd, app)
	statsCmd := commands.NewStatsCommand(rootCmd, app)
	badgesCmd := commands.NewBadgesCommand(rootCmd, app)
	balanceCmd := commands.NewBalanceCommand(rootCmd, app)
	serveCmd := commands.NewServeCommand(rootCmd, app)

	// Task subcommands share a parent command.
	taskCmd := commands.NewTaskCommand(app)
	taskCreateCmd := commands.NewTaskCreateCommand(rootCmd, taskCmd)
	taskClaimCmd := commands.NewTaskClaimCommand(rootCmd, taskCmd)
	taskCompleteCmd := commands.NewTaskCompleteCommand(rootCmd, taskCmd)
	taskVerifyCmd := commands.NewTaskVerifyCommand(rootCmd, taskCmd)
	taskCancelCmd := commands.NewTaskCancelCommand(rootCmd, taskCmd)
	taskListCmd := commands.NewTaskListCommand(rootCmd, taskCmd)
	taskStatusCmd := commands.NewTaskStatusCommand(rootCmd, taskCmd)

	// Ledger subcommands share a parent command.
	ledgerCmd := commands.NewLedgerCommand(app)
	ledgerMintCmd := commands.NewLedgerMintCommand(rootCmd, ledgerCmd)
	ledgerBurnCmd := commands.NewLedgerBurnCommand(rootCmd, ledgerCmd)
	ledgerPauseCmd := commands.NewLedgerPauseCommand(rootCmd, ledgerCmd)
	ledgerUnpauseCmd := commands.NewLedgerUnpauseCommand(rootCmd, ledgerCmd)

	// Access subcommands share a parent command.
	accessCmd := commands.NewAccessCommand(app)
	accessGrantCmd := commands.NewAccessGrantCommand(rootCmd, accessCmd)
	accessRevokeCmd := commands.NewAccessRevokeCommand(rootCmd, accessCmd)
	accessTransferCmd := commands.NewAccessTransferAdminCommand(rootCmd, accessCmd)

	// Badge subcommands share a parent command.
	badgeCmd := commands.NewBadgeCommand(app)
	badgeAwardCmd := commands.NewBadgeAwardCommand(rootCmd, badgeCmd)

	cmds := map[string]commands.Command{
		initCmd.Name():           initCmd,
		statsCmd.Name():          statsCmd,
		badgesCmd.Name():         badgesCmd,
		balanceCmd.Name():        balanceCmd,
		serveCmd.Name():          serveCmd,
		taskCreateCmd.Name():     taskCreateCmd,
		taskClaimCmd.Name():      taskClaimCmd,
		taskCompleteCmd.Name():   taskCompleteCmd,
		taskVerifyCmd.Name():     taskVerifyCmd,
		taskCancelCmd.Name():     taskCancelCmd,
		taskListCmd.Name():       taskListCmd,
		taskStatusCmd.Name():     taskStatusCmd,
		ledgerMintCmd.Name():     ledgerMintCmd,
		ledgerBurnCmd.Name():     ledgerBurnCmd,
		ledgerPauseCmd.Name():    ledgerPauseCmd,
		ledgerUnpauseCmd.Name():  ledgerUnpauseCmd,
		accessGrantCmd.Name():    accessGrantCmd,
		accessRevokeCmd.Name():   accessRevokeCmd,
		accessTransferCmd.Name(): accessTransferCmd,
		badgeAwardCmd.Name():     badgeAwardCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Auto-suppress logging for commands that produce structured output (table/JSON)
	// to prevent log noise from mixing with printer output in the terminal.
	// Users can still enable logging with --debug.
	printerCommands := map[string]bool{
		"task list":   true,
		"task status": true,
		"stats":       true,
		"badges":      true,
		"balance":     true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(ctx, *rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(ctx context.Context, config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
