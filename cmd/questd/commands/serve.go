package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/sidequests/questd/internal/achievement"
	"github.com/sidequests/questd/internal/app/tasklist"
	"github.com/sidequests/questd/internal/app/userstats"
	"github.com/sidequests/questd/internal/conventions"
	"github.com/sidequests/questd/internal/event"
	"github.com/sidequests/questd/internal/server"
	"github.com/sidequests/questd/internal/telemetry"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr   string
	tracing      bool
	otlpEndpoint string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the read API and the websocket event feed.")
	c.Cmd.Flag("listen", "Address the API server listens on.").Default(conventions.DefaultListenAddr).StringVar(&c.listenAddr)
	c.Cmd.Flag("tracing", "Enable OpenTelemetry tracing.").BoolVar(&c.tracing)
	c.Cmd.Flag("otlp-endpoint", "OTLP/HTTP endpoint traces are exported to.").Default("http://127.0.0.1:4318").StringVar(&c.otlpEndpoint)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.tracing {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  "questd",
			OTLPEndpoint: c.otlpEndpoint,
		})
		if err != nil {
			return fmt.Errorf("could not initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warningf("could not shut down tracing: %v", err)
			}
		}()
	}

	repo, err := newRepository(ctx, c.rootCmd)
	if err != nil {
		return err
	}

	notifier := event.NewNotifier(event.NotifierConfig{Logger: logger})

	taskSvc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create task service: %w", err)
	}

	engine, err := achievement.NewEngine(achievement.EngineConfig{
		Repository: repo,
		Identity:   ServiceIdentity,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create achievement engine: %w", err)
	}

	statsSvc, err := userstats.NewService(userstats.ServiceConfig{
		Repository: repo,
		Engine:     engine,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create stats service: %w", err)
	}

	tailer, err := event.NewTailer(event.TailerConfig{
		Repository: repo,
		Notifier:   notifier,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create event tailer: %w", err)
	}

	apiServer, err := server.New(server.Config{
		Addr:       c.listenAddr,
		Tasks:      taskSvc,
		Stats:      statsSvc,
		Repository: repo,
		Notifier:   notifier,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create API server: %w", err)
	}

	var g run.Group

	// Event log tailer: bridges events committed by other processes into the
	// websocket feed.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				return tailer.Run(ctx)
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// API server.
	{
		g.Add(
			func() error {
				return apiServer.ListenAndServe()
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := apiServer.Shutdown(shutdownCtx); err != nil {
					logger.Warningf("could not shut down API server: %v", err)
				}
			},
		)
	}

	// Context cancellation (termination signal handled by main).
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				logger.Infof("shutting down")
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
