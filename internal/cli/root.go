// Package cli is the command tree of the tasks binary. With no subcommand
// it starts the interactive view.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Burbitskaya/task-manager-app/internal/config"
	"github.com/Burbitskaya/task-manager-app/internal/kv"
	"github.com/Burbitskaya/task-manager-app/internal/logging"
	"github.com/Burbitskaya/task-manager-app/internal/storage"
	"github.com/Burbitskaya/task-manager-app/internal/task"
	"github.com/Burbitskaya/task-manager-app/internal/ui"
	"github.com/Burbitskaya/task-manager-app/internal/watch"
)

// app holds what a command needs once the config is loaded. Each command
// opens it on entry and closes it on return.
type app struct {
	cfgFile string
	now     func() time.Time
	loc     *time.Location

	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
	backend  kv.Store
	store    *storage.Store
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now, loc: time.Local})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Manage local tasks from the terminal.",
		Long:          "tasks keeps a list of tasks on this machine. Run it without arguments for the interactive view.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.withStore(a.runTUI),
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $TASKS_CONFIG or the user config dir)")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newStatusCmd(a),
		newRmCmd(a),
		newExportCmd(a),
	)
	return root
}

// Execute runs the command tree and prints a failure to stderr.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func (a *app) withStore(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args)
	}
}

func (a *app) open() error {
	path := config.ResolveConfigPath(a.cfgFile)
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	backend, err := kv.Open(cfg.Backend, cfg.DataPath)
	if err != nil {
		_ = closeLog()
		return fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}

	a.cfg = cfg
	a.logger = logger
	a.closeLog = closeLog
	a.backend = backend
	a.store = storage.New(backend,
		storage.WithKey(cfg.StorageKey),
		storage.WithClock(a.now),
		storage.WithLogger(logger),
	)
	logger.Debug("storage opened", "config", path, "backend", cfg.Backend, "path", cfg.DataPath)
	return nil
}

func (a *app) close() {
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("failed to close storage", "error", err)
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
	a.backend, a.store, a.closeLog = nil, nil, nil
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	opts := []ui.Option{ui.WithClock(a.now), ui.WithLocation(a.loc), ui.WithLogger(a.logger)}

	w, err := watch.New(a.watchPath(), watch.DefaultDelay, a.logger)
	if err != nil {
		a.logger.Warn("live reload disabled", "error", err)
	} else {
		defer w.Close()
		opts = append(opts, ui.WithChanges(w.Events()))
	}

	a.logger.Info("starting interactive view", "backend", a.cfg.Backend)
	return ui.Run(cmd.Context(), a.store, a.cfg, opts...)
}

// watchPath is the file that changes when another process saves tasks.
func (a *app) watchPath() string {
	if f, ok := a.backend.(*kv.File); ok {
		return f.Path(a.cfg.StorageKey)
	}
	return a.cfg.DataPath
}

func (a *app) validator() task.Validator {
	return task.Validator{Now: a.now}
}

// describe turns a store error into the message shown to the user.
func describe(action string, err error) error {
	var readErr *storage.StorageReadError
	var persistErr *storage.PersistenceError
	switch {
	case errors.As(err, &readErr):
		return fmt.Errorf("failed to load: %w", err)
	case errors.As(err, &persistErr):
		return fmt.Errorf("failed to save: %w", err)
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
