package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"

	"github.com/slok/blendeval/internal/api"
	"github.com/slok/blendeval/internal/app/list"
	"github.com/slok/blendeval/internal/app/progress"
	"github.com/slok/blendeval/internal/app/reap"
	"github.com/slok/blendeval/internal/app/start"
	"github.com/slok/blendeval/internal/app/stop"
	"github.com/slok/blendeval/internal/log"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr     string
	requestTimeout time.Duration
	reapInterval   time.Duration
	reapTTL        time.Duration
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the task orchestration HTTP API.")
	c.Cmd.Flag("listen-address", "Address the HTTP API listens on.").Default(":8080").StringVar(&c.listenAddr)
	c.Cmd.Flag("request-timeout", "Max duration of an API request.").Default("60s").DurationVar(&c.requestTimeout)
	c.Cmd.Flag("reap-interval", "Interval between stale task checks, 0 disables them.").Default("10m").DurationVar(&c.reapInterval)
	c.Cmd.Flag("reap-ttl", "Time without updates after a running task is checked against the optimizer.").Default(reap.DefaultTTL.String()).DurationVar(&c.reapTTL)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	opt, err := c.rootCmd.newOptimizer()
	if err != nil {
		return err
	}

	methods, err := c.rootCmd.newMethods(ctx)
	if err != nil {
		return err
	}

	startSvc, err := start.NewService(start.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create start service: %w", err)
	}
	stopSvc, err := stop.NewService(stop.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create stop service: %w", err)
	}
	progressSvc, err := progress.NewService(progress.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create progress service: %w", err)
	}
	listSvc, err := list.NewService(list.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create list service: %w", err)
	}
	reapSvc, err := reap.NewService(reap.ServiceConfig{Repository: repo, Optimizer: opt, Methods: methods, TTL: c.reapTTL, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create reap service: %w", err)
	}

	handler, err := api.NewHandler(api.HandlerConfig{
		StartService:    startSvc,
		StopService:     stopSvc,
		ProgressService: progressSvc,
		ListService:     listSvc,
		Timeout:         c.requestTimeout,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create API handler: %w", err)
	}

	var g run.Group

	// Stop when the command context ends.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	// HTTP API.
	{
		server := &http.Server{
			Addr:              c.listenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Add(
			func() error {
				logger.WithValues(log.Kv{"addr": c.listenAddr}).Infof("HTTP API listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Could not shut down HTTP server: %s", err)
				}
			},
		)
	}

	// Stale task reaper.
	if c.reapInterval > 0 {
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				ticker := time.NewTicker(c.reapInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						res, err := reapSvc.Run(ctx)
						if err != nil {
							logger.Errorf("Stale task check failed: %s", err)
							continue
						}
						if res.Checked > 0 {
							logger.WithValues(log.Kv{
								"checked":  res.Checked,
								"alive":    len(res.Alive),
								"finished": len(res.Finished),
								"failed":   len(res.Failed),
							}).Infof("Stale tasks checked")
						}
					}
				}
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
