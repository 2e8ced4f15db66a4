// Command dccdev serves the DCC Portal development slot dashboard.
// Usage: dccdev [-config dccdev.toml] [-addr :8443] [-log-level info]
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/dccdev/internal/app"
	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/cli"
	"github.com/raysh454/dccdev/internal/config"
	"github.com/raysh454/dccdev/internal/history"
	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/metrics"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/server"
	"github.com/raysh454/dccdev/internal/slots"
	"github.com/raysh454/dccdev/internal/webclient"
)

func main() {
	args, err := cli.ParseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "usage: dccdev [-config file.toml] [-addr :8443] [-log-level debug|info|warn|error]")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "dccdev: %v\n", err)
		os.Exit(2)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "dccdev: %v\n", err)
		os.Exit(1)
	}
}

func run(args *cli.CLIArgs) error {
	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	if args.Addr != "" {
		cfg.Server.Addr = args.Addr
	}
	if args.LogLevel != "" {
		cfg.Log.Level = args.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(os.Stdout, "dccdev", level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := wire(cfg, args, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(context.Background()); err != nil {
			logger.Warn("releasing resources", logging.Err(err))
		}
	}()
	if err := a.Start(); err != nil {
		return err
	}

	srv, err := server.NewServer(server.Config{
		ListenAddr:        cfg.Server.Addr,
		LogFollowInterval: cfg.Server.LogFollowInterval.Duration,
		Logger:            logger,
	}, a.Orch, a.Orch.Metrics())
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", logging.Field{Key: "addr", Value: cfg.Server.Addr},
			logging.Field{Key: "tls", Value: cfg.TLSEnabled()})
		if cfg.TLSEnabled() {
			errCh <- httpSrv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
			return
		}
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		// No timeout is enforced on handlers, so give in-flight installs a generous window.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", logging.Err(err))
		}
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	}
}

// openHistoryDB opens the SQLite history database at path.
var openHistoryDB = func(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path)
}

// wire builds every component from cfg. On error, whatever was opened so far
// is released.
func wire(cfg *config.Config, args *cli.CLIArgs, logger logging.Logger) (*app.Application, error) {
	a := app.NewApplication(cfg, args, logger, nil)
	if err := wireInto(a, cfg, logger); err != nil {
		if cerr := a.Shutdown(context.Background()); cerr != nil {
			logger.Warn("releasing partially wired resources", logging.Err(cerr))
		}
		return nil, err
	}
	return a, nil
}

func wireInto(a *app.Application, cfg *config.Config, logger logging.Logger) error {
	store, err := slots.NewStore(cfg.Store.Path, logger)
	if err != nil {
		return err
	}

	wc, err := webclient.NewNetHTTPClient(cfg.WebClientConfig(), logger, nil)
	if err != nil {
		return fmt.Errorf("creating web client: %w", err)
	}
	a.AddCloser(wc)

	resolver, err := builds.NewResolver(cfg.BuildsConfig(), wc, logger)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Store:      store,
		Resolver:   resolver,
		Controller: process.NewController(cfg.ProcessConfig(), nil, logger),
		Metrics:    metrics.New(),
		Logger:     logger,
	}

	if cfg.History.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
		db, err := openHistoryDB(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		a.AddCloser(db)
		hist, err := history.NewLog(db, logger)
		if err != nil {
			return err
		}
		deps.History = hist
	}

	a.Orch, err = app.NewOrchestrator(app.Config{
		HistoryLimit: cfg.History.Limit,
		LogLines:     cfg.Process.LogLines,
	}, deps)
	return err
}
