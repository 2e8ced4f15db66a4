package app

import (
	"context"
	"fmt"
	"time"

	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/history"
	"github.com/raysh454/dccdev/internal/logging"
	"github.com/raysh454/dccdev/internal/metrics"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/slots"
)

// NoBuildOutput is shown after a save that did not deploy anything.
const NoBuildOutput = "No build output."

// Config holds the orchestrator's own knobs.
type Config struct {
	// HistoryLimit caps entries returned by History.
	HistoryLimit int

	// LogLines is the tail length used when callers pass 0.
	LogLines int
}

// DefaultConfig returns the orchestrator defaults.
func DefaultConfig() Config {
	return Config{HistoryLimit: 50, LogLines: 500}
}

// SlotView is a slot together with its live process status.
type SlotView struct {
	Slot   slots.Slot     `json:"slot"`
	Status process.Status `json:"status"`
}

// EditForm is everything the edit page needs.
type EditForm struct {
	Slot slots.Slot           `json:"slot"`
	PRs  []builds.PullRequest `json:"prs"`
}

// SaveResult is the outcome of Save.
type SaveResult struct {
	Slot     slots.Slot `json:"slot"`
	Deployed bool       `json:"deployed"`
	Output   string     `json:"output"`
}

// Orchestrator implements the dashboard actions on top of the slot store, the
// build resolver and the process controller. Every call reads the slots file
// afresh; nothing is cached between requests.
type Orchestrator struct {
	cfg        Config
	store      SlotStore
	resolver   BuildResolver
	controller ProcessController
	history    HistoryLog
	metrics    *metrics.Metrics
	logger     logging.Logger
}

// Deps are the collaborators of an Orchestrator. History and Metrics may be nil.
type Deps struct {
	Store      SlotStore
	Resolver   BuildResolver
	Controller ProcessController
	History    HistoryLog
	Metrics    *metrics.Metrics
	Logger     logging.Logger
}

// NewOrchestrator ties together config and collaborators.
func NewOrchestrator(cfg Config, deps Deps) (*Orchestrator, error) {
	if deps.Store == nil || deps.Resolver == nil || deps.Controller == nil {
		return nil, fmt.Errorf("store, resolver and controller are required")
	}
	if cfg.LogLines <= 0 {
		cfg.LogLines = DefaultConfig().LogLines
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("orchestrator")
	}
	return &Orchestrator{
		cfg:        cfg,
		store:      deps.Store,
		resolver:   deps.Resolver,
		controller: deps.Controller,
		history:    deps.History,
		metrics:    deps.Metrics,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}, nil
}

// Metrics returns the metrics the orchestrator reports to, possibly nil.
func (o *Orchestrator) Metrics() *metrics.Metrics { return o.metrics }

// Dashboard lists every slot with its current status, in file order.
func (o *Orchestrator) Dashboard(ctx context.Context) ([]SlotView, error) {
	all, err := o.store.List()
	if err != nil {
		return nil, err
	}
	views := make([]SlotView, 0, len(all))
	for _, s := range all {
		views = append(views, o.view(ctx, s))
	}
	return views, nil
}

// View returns one slot with its status.
func (o *Orchestrator) View(ctx context.Context, id int) (SlotView, error) {
	s, err := o.store.Get(id)
	if err != nil {
		return SlotView{}, err
	}
	return o.view(ctx, s), nil
}

func (o *Orchestrator) view(ctx context.Context, s slots.Slot) SlotView {
	st := o.controller.Status(ctx, s)
	o.metrics.SetSlotStatus(s.ID, int(st))
	return SlotView{Slot: s, Status: st}
}

// Status returns the process status of one slot.
func (o *Orchestrator) Status(ctx context.Context, id int) (process.Status, error) {
	v, err := o.View(ctx, id)
	if err != nil {
		return process.StatusUnknown, err
	}
	return v.Status, nil
}

// Edit returns the slot and the open pull requests to choose from.
func (o *Orchestrator) Edit(ctx context.Context, id int) (EditForm, error) {
	s, err := o.store.Get(id)
	if err != nil {
		return EditForm{}, err
	}
	prs, err := o.resolver.ListAvailablePRs(ctx)
	if err != nil {
		return EditForm{}, err
	}
	return EditForm{Slot: s, PRs: prs}, nil
}

// PullRequests lists the open pull requests.
func (o *Orchestrator) PullRequests(ctx context.Context) ([]builds.PullRequest, error) {
	return o.resolver.ListAvailablePRs(ctx)
}

// Save applies a configuration update and, when pr is not slots.NoNewBuild,
// resolves and deploys that pull request's build. With pr == NoNewBuild the
// stored build fields are kept as they are.
func (o *Orchestrator) Save(ctx context.Context, id int, cfg slots.Config, pr int) (res SaveResult, err error) {
	started := time.Now()
	defer func() { o.metrics.ObserveAction(string(history.ActionSave), started, err) }()

	before, err := o.store.Get(id)
	if err != nil {
		return SaveResult{}, err
	}

	var build slots.Build
	if pr == slots.NoNewBuild {
		build = o.resolver.ResolveExisting(before)
	} else {
		build, err = o.resolver.ResolveNew(ctx, pr)
		if err != nil {
			o.logger.Warn("resolving build", logging.Field{Key: "slot_id", Value: id},
				logging.Field{Key: "pr", Value: pr}, logging.Err(err))
			return SaveResult{}, fmt.Errorf("resolving build for PR %d: %w", pr, err)
		}
	}

	updated := before.WithConfig(cfg).WithBuild(build)
	if err := o.store.Save(updated); err != nil {
		return SaveResult{}, err
	}

	diff, derr := history.SlotDiff(before, updated)
	if derr != nil {
		o.logger.Warn("diffing slot", logging.Err(derr))
	}
	o.record(ctx, history.Entry{
		SlotID:      id,
		Action:      history.ActionSave,
		PR:          updated.PR,
		BuildNumber: updated.BuildNumber,
		Diff:        diff,
	})
	o.logger.Info("saved slot", logging.Field{Key: "slot_id", Value: id}, logging.Field{Key: "pr", Value: pr})

	res = SaveResult{Slot: updated, Output: NoBuildOutput}
	if pr == slots.NoNewBuild {
		return res, nil
	}

	// Deploy from what was persisted, and do not let a dropped client kill the installer.
	out, slot, err := o.deploy(context.WithoutCancel(ctx), id)
	if err != nil {
		return res, err
	}
	res.Slot = slot
	res.Deployed = true
	res.Output = out
	return res, nil
}

func (o *Orchestrator) deploy(ctx context.Context, id int) (out string, slot slots.Slot, err error) {
	started := time.Now()
	defer func() { o.metrics.ObserveAction(string(history.ActionDeploy), started, err) }()

	slot, err = o.store.Get(id)
	if err != nil {
		return "", slots.Slot{}, err
	}
	out, err = o.controller.Deploy(ctx, slot, slot.BuildNumber)
	o.record(ctx, history.Entry{
		SlotID:      id,
		Action:      history.ActionDeploy,
		PR:          slot.PR,
		BuildNumber: slot.BuildNumber,
		Output:      out,
		Failed:      err != nil,
	})
	if err != nil {
		o.logger.Warn("deploying slot", logging.Field{Key: "slot_id", Value: id}, logging.Err(err))
		return "", slot, err
	}
	o.logger.Info("deployed slot", logging.Field{Key: "slot_id", Value: id},
		logging.Field{Key: "build_number", Value: slot.BuildNumber})
	return out, slot, nil
}

// Start starts the slot's server and returns its output.
func (o *Orchestrator) Start(ctx context.Context, id int) (string, error) {
	return o.control(ctx, id, history.ActionStart, o.controller.Start)
}

// Stop stops the slot's server and returns its output. The slot record is kept.
func (o *Orchestrator) Stop(ctx context.Context, id int) (string, error) {
	return o.control(ctx, id, history.ActionStop, o.controller.Stop)
}

func (o *Orchestrator) control(ctx context.Context, id int, action history.Action,
	fn func(context.Context, slots.Slot) (string, error)) (out string, err error) {
	started := time.Now()
	defer func() { o.metrics.ObserveAction(string(action), started, err) }()

	slot, err := o.store.Get(id)
	if err != nil {
		return "", err
	}
	out, err = fn(ctx, slot)
	o.record(ctx, history.Entry{
		SlotID:      id,
		Action:      action,
		PR:          slot.PR,
		BuildNumber: slot.BuildNumber,
		Output:      out,
		Failed:      err != nil,
	})
	if err != nil {
		o.logger.Warn("running slot action", logging.Field{Key: "slot_id", Value: id},
			logging.Field{Key: "action", Value: string(action)}, logging.Err(err))
		return "", err
	}
	return out, nil
}

// Logs returns the last lines of the slot's server log. lines <= 0 uses the
// configured default.
func (o *Orchestrator) Logs(ctx context.Context, id, lines int) (string, error) {
	slot, err := o.store.Get(id)
	if err != nil {
		return "", err
	}
	if lines <= 0 {
		lines = o.cfg.LogLines
	}
	return o.controller.TailLogs(ctx, slot, lines)
}

// History returns recorded actions for a slot, newest first.
func (o *Orchestrator) History(ctx context.Context, id int) ([]history.Entry, error) {
	if _, err := o.store.Get(id); err != nil {
		return nil, err
	}
	if o.history == nil {
		return []history.Entry{}, nil
	}
	return o.history.List(ctx, id, o.cfg.HistoryLimit)
}

// record never fails the calling action.
func (o *Orchestrator) record(ctx context.Context, e history.Entry) {
	if o.history == nil {
		return
	}
	if _, err := o.history.Record(context.WithoutCancel(ctx), e); err != nil {
		o.logger.Warn("recording history", logging.Field{Key: "slot_id", Value: e.SlotID},
			logging.Field{Key: "action", Value: string(e.Action)}, logging.Err(err))
	}
}
