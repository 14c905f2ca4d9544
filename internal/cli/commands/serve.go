package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"specdash/internal/api"
	"specdash/internal/config"
	"specdash/internal/discovery"
	"specdash/internal/logging"
	"specdash/internal/metrics"
	"specdash/internal/registry"
)

const shutdownTimeout = 10 * time.Second

// ServeCommand handles the serve command
type ServeCommand struct {
	config      *config.Config
	log         zerolog.Logger
	inventory   *discovery.Inventory
	newExecutor ExecutorFactory
}

// NewServeCommand creates a new ServeCommand
func NewServeCommand(cfg *config.Config, log zerolog.Logger, inventory *discovery.Inventory, newExecutor ExecutorFactory) *ServeCommand {
	return &ServeCommand{
		config:      cfg,
		log:         log,
		inventory:   inventory,
		newExecutor: newExecutor,
	}
}

// Execute runs the command until SIGINT/SIGTERM
func (sc *ServeCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New()
	m := metrics.New()
	executor := sc.newExecutor(reg, m)
	defer executor.Shutdown()

	handler := api.NewHandler(sc.inventory, executor, reg, m, logging.Component(sc.log, "api"))
	srv := api.NewServer(handler, sc.config.ListenAddr, sc.config.AllowedOrigins)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sc.log.Info().
			Str("listen", sc.config.ListenAddr).
			Str("spec_dir", sc.inventory.Dir()).
			Int("workers", sc.config.Workers).
			Msg("serving API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sc.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
