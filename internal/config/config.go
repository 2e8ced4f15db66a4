package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/webclient"
)

// Config is the full runtime configuration of the dashboard. It is built once
// in main and handed to each component's constructor.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
	History HistoryConfig `toml:"history"`
	GitHub  GitHubConfig  `toml:"github"`
	Process ProcessConfig `toml:"process"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `toml:"tls_cert"`
	TLSKey  string `toml:"tls_key"`

	// LogFollowInterval is how often the websocket log stream re-reads the tail.
	LogFollowInterval Duration `toml:"log_follow_interval"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// StoreConfig locates the slots document.
type StoreConfig struct {
	// Path of the slots JSON document.
	Path string `toml:"path"`
}

// HistoryConfig locates the action history database.
type HistoryConfig struct {
	// Path of the SQLite history database. Empty disables history.
	Path string `toml:"path"`

	// Limit caps entries shown per slot.
	Limit int `toml:"limit"`
}

// GitHubConfig describes where pull requests and build statuses are read from.
type GitHubConfig struct {
	APIURL    string   `toml:"api_url"`
	Repo      string   `toml:"repo"`
	Token     string   `toml:"token"`
	BuildUser string   `toml:"build_user"`
	Timeout   Duration `toml:"timeout"`
}

// ProcessConfig names the per-slot scripts and how their output is read.
type ProcessConfig struct {
	Installer     string `toml:"installer"`
	ServerCtl     string `toml:"server_ctl"`
	LogFile       string `toml:"log_file"`
	Tail          string `toml:"tail"`
	LogLines      int    `toml:"log_lines"`
	RunningPrefix string `toml:"running_prefix"`
	StoppedPrefix string `toml:"stopped_prefix"`
}

// Duration decodes TOML strings such as "2s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config populated with development defaults that
// match the original dev host layout.
func DefaultConfig() *Config {
	p := process.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:              ":8443",
			LogFollowInterval: Duration{2 * time.Second},
		},
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			Path: "conf/slots.json",
		},
		History: HistoryConfig{
			Path:  "conf/history.db",
			Limit: 50,
		},
		GitHub: GitHubConfig{
			APIURL:    "https://api.github.com",
			Repo:      "icgc-dcc/dcc-portal",
			BuildUser: "dcc-jenkins",
			Timeout:   Duration{30 * time.Second},
		},
		Process: ProcessConfig{
			Installer:     p.Installer,
			ServerCtl:     p.ServerCtl,
			LogFile:       p.LogFile,
			Tail:          p.Tail,
			LogLines:      p.LogLines,
			RunningPrefix: p.RunningPrefix,
			StoppedPrefix: p.StoppedPrefix,
		},
	}
}

// Load reads the TOML file at path (optional) over the defaults, then applies
// DCCDEV_* environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := overrideFromEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if path != "" {
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func overrideFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DCCDEV_ADDR", &cfg.Server.Addr)
	str("DCCDEV_TLS_CERT", &cfg.Server.TLSCert)
	str("DCCDEV_TLS_KEY", &cfg.Server.TLSKey)
	str("DCCDEV_LOG_LEVEL", &cfg.Log.Level)
	str("DCCDEV_SLOTS_FILE", &cfg.Store.Path)
	str("DCCDEV_GITHUB_API_URL", &cfg.GitHub.APIURL)
	str("DCCDEV_GITHUB_REPO", &cfg.GitHub.Repo)
	str("DCCDEV_GITHUB_TOKEN", &cfg.GitHub.Token)
	str("DCCDEV_BUILD_USER", &cfg.GitHub.BuildUser)

	// An explicitly empty value disables history.
	if v, ok := lookup("DCCDEV_HISTORY_DB"); ok {
		cfg.History.Path = v
	}

	if v, ok := lookup("DCCDEV_LOG_LINES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DCCDEV_LOG_LINES %q: %w", v, err)
		}
		cfg.Process.LogLines = n
	}
	return nil
}

// resolvePaths makes relative file paths relative to the config file.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Store.Path, &c.History.Path, &c.Server.TLSCert, &c.Server.TLSKey} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		errs = append(errs, errors.New("server.tls_cert and server.tls_key must be set together"))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.GitHub.APIURL == "" || c.GitHub.Repo == "" {
		errs = append(errs, errors.New("github.api_url and github.repo are required"))
	}
	if c.GitHub.BuildUser == "" {
		errs = append(errs, errors.New("github.build_user is required"))
	}
	if c.Process.LogLines <= 0 {
		errs = append(errs, fmt.Errorf("process.log_lines must be positive, got %d", c.Process.LogLines))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BuildsConfig returns the resolver configuration.
func (c *Config) BuildsConfig() builds.Config {
	return builds.Config{
		APIURL:    c.GitHub.APIURL,
		Repo:      c.GitHub.Repo,
		Token:     c.GitHub.Token,
		BuildUser: c.GitHub.BuildUser,
	}
}

// WebClientConfig returns the HTTP client configuration for the review API.
func (c *Config) WebClientConfig() webclient.Config {
	h := http.Header{}
	h.Set("User-Agent", "dccdev")
	return webclient.Config{
		Timeout: c.GitHub.Timeout.Duration,
		Headers: h,
	}
}

// ProcessConfig returns the process controller configuration.
func (c *Config) ProcessConfig() process.Config {
	return process.Config{
		Installer:     c.Process.Installer,
		ServerCtl:     c.Process.ServerCtl,
		LogFile:       c.Process.LogFile,
		Tail:          c.Process.Tail,
		LogLines:      c.Process.LogLines,
		RunningPrefix: c.Process.RunningPrefix,
		StoppedPrefix: c.Process.StoppedPrefix,
	}
}

// TLSEnabled reports whether the server should listen with HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}
