// Package cli implements the look command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/KruASe76/look/internal/config"
	"github.com/KruASe76/look/internal/logging"
	"github.com/KruASe76/look/internal/services"
	"github.com/KruASe76/look/pkg/model"
	"github.com/spf13/cobra"
)

// runtime is the part of the service manager the commands drive.
type runtime interface {
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	Sync(ctx context.Context, since time.Time) (int, error)
	ComputeMeta(ctx context.Context) (model.SearchMeta, error)
	PublishInvalidation(ctx context.Context) error
}

type managerRuntime struct {
	*services.Manager
}

func (r managerRuntime) Sync(ctx context.Context, since time.Time) (int, error) {
	return r.Syncer().Sync(ctx, since)
}

func (r managerRuntime) ComputeMeta(ctx context.Context) (model.SearchMeta, error) {
	if err := r.MetaCache().Recompute(ctx); err != nil {
		return model.SearchMeta{}, err
	}
	return r.MetaCache().Get(ctx)
}

func (r managerRuntime) PublishInvalidation(ctx context.Context) error {
	return r.Notifier().PublishInvalidation(ctx)
}

// Dependency injection for testing
var (
	loadConfig = config.LoadConfig
	newRuntime = func(cfg *config.Config, opts services.Options) runtime {
		return managerRuntime{services.NewManager(cfg, opts)}
	}
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "look",
	Short: "Catalog search and facet metadata service",
	Long: `look serves catalog search, suggestions and facet metadata over HTTP,
and keeps the search index and every process's facet cache in sync with the
catalog store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory holding config.yml and config.local.yml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and initializes logging. The returned function
// flushes the log files.
func setup() (*config.Config, func(), error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, func() { _ = logging.Shutdown() }, nil
}

// withRuntime initializes a command-mode runtime, runs fn and shuts it down.
func withRuntime(ctx context.Context, fn func(rt runtime) error) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	rt := newRuntime(cfg, services.Options{})
	if err := rt.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		rt.Shutdown(shutdownCtx)
	}()

	return fn(rt)
}
