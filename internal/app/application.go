package app

import (
	"context"
	"errors"
	"io"

	"github.com/raysh454/dccdev/internal/cli"
	"github.com/raysh454/dccdev/internal/config"
	"github.com/raysh454/dccdev/internal/logging"
)

// Application is the global runtime state container.
// It holds config, parsed CLI args and the core services that are shared
// across modules (orchestrator, logger). Pass Application into modules that
// need access to the global state rather than using package-level variables.
type Application struct {
	Config *config.Config
	Args   *cli.CLIArgs
	Logger logging.Logger
	Orch   *Orchestrator

	// closers are released in reverse order on Shutdown.
	closers []io.Closer
}

// NewApplication constructs an Application from the provided parts.
func NewApplication(cfg *config.Config, args *cli.CLIArgs, logger logging.Logger, orch *Orchestrator) *Application {
	return &Application{
		Config: cfg,
		Args:   args,
		Logger: logger,
		Orch:   orch,
	}
}

// AddCloser registers a resource to release on Shutdown.
func (a *Application) AddCloser(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Start logs the effective setup. It starts no goroutines of its own.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Orch == nil {
		return errors.New("application has no orchestrator")
	}
	if a.Logger != nil && a.Config != nil {
		a.Logger.Info("application starting",
			logging.Field{Key: "addr", Value: a.Config.Server.Addr},
			logging.Field{Key: "slots_file", Value: a.Config.Store.Path},
			logging.Field{Key: "repo", Value: a.Config.GitHub.Repo},
			logging.Field{Key: "history", Value: a.Config.History.Path != ""})
	}
	return nil
}

// Shutdown releases registered resources and returns every close error.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Logger != nil {
		a.Logger.Info("application shutdown initiated")
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
