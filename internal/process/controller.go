package process

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/slots"
)

// Controller drives the installer and server control scripts of a slot.
// Every call blocks until the external program exits.
type Controller struct {
	cfg    Config
	runner Runner
	logger logging.Logger
}

// NewController returns a Controller. A nil runner uses ExecRunner.
func NewController(cfg Config, runner Runner, logger logging.Logger) *Controller {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.LogLines <= 0 {
		cfg.LogLines = DefaultConfig().LogLines
	}
	return &Controller{
		cfg:    cfg,
		runner: runner,
		logger: logger.With(logging.Field{Key: "component", Value: "process"}),
	}
}

// Deploy installs buildNumber into the slot and returns the installer output.
func (c *Controller) Deploy(ctx context.Context, slot slots.Slot, buildNumber string) (string, error) {
	res, err := c.run(ctx, slot, Command{Path: c.slotPath(slot, c.cfg.Installer), Args: []string{"-p", buildNumber}})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Start runs "<server-ctl> start".
func (c *Controller) Start(ctx context.Context, slot slots.Slot) (string, error) {
	return c.serverCtl(ctx, slot, "start")
}

// Stop runs "<server-ctl> stop".
func (c *Controller) Stop(ctx context.Context, slot slots.Slot) (string, error) {
	return c.serverCtl(ctx, slot, "stop")
}

// Status runs "<server-ctl> status". It never fails; anything it cannot
// interpret is StatusUnknown.
func (c *Controller) Status(ctx context.Context, slot slots.Slot) Status {
	cmd := Command{Path: c.slotPath(slot, c.cfg.ServerCtl), Args: []string{"status"}}
	res, err := c.runner.Run(ctx, cmd)
	st, unexpected := statusFromResult(res, err, c.cfg)
	if unexpected {
		c.logger.Error("status check failed", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Err(err))
	} else if err != nil {
		c.logger.Debug("status executable unavailable", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Err(err))
	}
	return st
}

// TailLogs returns the last lines of the slot's server log, stdout first and
// then stderr. lines <= 0 uses the configured default.
func (c *Controller) TailLogs(ctx context.Context, slot slots.Slot, lines int) (string, error) {
	if lines <= 0 {
		lines = c.cfg.LogLines
	}
	cmd := Command{
		Path: c.cfg.Tail,
		Args: []string{"-n", strconv.Itoa(lines), c.slotPath(slot, c.cfg.LogFile)},
	}
	res, err := c.run(ctx, slot, cmd)
	if err != nil {
		return "", err
	}
	return res.Stdout + res.Stderr, nil
}

func (c *Controller) serverCtl(ctx context.Context, slot slots.Slot, action string) (string, error) {
	res, err := c.run(ctx, slot, Command{Path: c.slotPath(slot, c.cfg.ServerCtl), Args: []string{action}})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func (c *Controller) run(ctx context.Context, slot slots.Slot, cmd Command) (Result, error) {
	c.logger.Info("running command", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Field{Key: "command", Value: cmd.String()})
	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		c.logger.Warn("command failed", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Field{Key: "command", Value: cmd.String()}, logging.Err(err))
		return res, err
	}
	c.logger.Debug("command finished", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Field{Key: "exit_code", Value: res.ExitCode})
	return res, nil
}

func (c *Controller) slotPath(slot slots.Slot, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(slot.Directory, p)
}
