package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-engine/internal/app"
	"auction-engine/internal/server"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API with the scheduler and event dispatcher",
		Long: `Start the auction engine.

The HTTP API, the auction scheduler and the notification dispatcher run
together until SIGINT or SIGTERM. Pending auction timers are recovered from
storage on startup.

Example:
  auctiond serve --config ./deploy
  auctiond serve --seed --log-level debug`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rootOpts, seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "seed sample listings and bidders")

	return cmd
}

func serve(parent context.Context, opts *RootOptions, seed bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(opts.cfg, app.Options{Seed: seed})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			utils.Error("shutdown failed", map[string]any{"error": err.Error()})
		}
	}()

	if opts.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              opts.cfg.ServerAddress,
		Handler:           server.SetupRouter(a.Service),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Dispatcher.Run(gctx) })
	g.Go(func() error { return a.Scheduler.Run(gctx) })
	g.Go(func() error {
		utils.Info("starting auction server", map[string]any{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	utils.Info("auction server stopped", nil)
	return err
}
