package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// CLIArgs are the command-line arguments for the dashboard binary. Flags that
// are left unset do not override the config file or environment.
type CLIArgs struct {
	// ConfigPath is an optional TOML config file.
	ConfigPath string

	// Addr overrides server.addr when non-empty.
	Addr string

	// LogLevel overrides log.level when non-empty.
	LogLevel string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. The function is
// deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("dccdev", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "Path to a TOML config file")
		addr       = fs.String("addr", "", "HTTP listen address (overrides config)")
		logLevel   = fs.String("log-level", "", "Log level: debug|info|warn|error (overrides config)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return &CLIArgs{
		ConfigPath: strings.TrimSpace(*configPath),
		Addr:       strings.TrimSpace(*addr),
		LogLevel:   strings.TrimSpace(*logLevel),
		RawArgs:    args,
	}, nil
}
