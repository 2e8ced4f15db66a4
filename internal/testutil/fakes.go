package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/slots"
)

// ─── Build resolver ────────────────────────────────────────────────────

// FakeResolver serves builds from a map keyed by PR number.
type FakeResolver struct {
	mu       sync.Mutex
	Builds   map[int]slots.Build
	PRs      []builds.PullRequest
	Err      error
	NewCalls []int
}

func (f *FakeResolver) ResolveExisting(slot slots.Slot) slots.Build {
	return slot.Build()
}

func (f *FakeResolver) ResolveNew(_ context.Context, pr int) (slots.Build, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NewCalls = append(f.NewCalls, pr)
	if f.Err != nil {
		return slots.Build{}, f.Err
	}
	b, ok := f.Builds[pr]
	if !ok {
		return slots.Build{}, fmt.Errorf("pr %d: %w", pr, builds.ErrBuildStatusNotFound)
	}
	return b, nil
}

func (f *FakeResolver) ListAvailablePRs(context.Context) ([]builds.PullRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PRs, nil
}

// ResolveNewCalls returns the PR numbers ResolveNew was called with.
func (f *FakeResolver) ResolveNewCalls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.NewCalls...)
}

// ─── Process controller ────────────────────────────────────────────────

// ControllerCall records one FakeController invocation.
type ControllerCall struct {
	Action      string
	SlotID      int
	BuildNumber string
	Lines       int
}

// FakeController records calls and returns canned output.
type FakeController struct {
	mu       sync.Mutex
	Calls    []ControllerCall
	Statuses map[int]process.Status
	Output   string
	Logs     string
	Err      error
}

func (f *FakeController) record(c ControllerCall) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()
}

func (f *FakeController) Deploy(_ context.Context, slot slots.Slot, buildNumber string) (string, error) {
	f.record(ControllerCall{Action: "deploy", SlotID: slot.ID, BuildNumber: buildNumber})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Output, nil
}

func (f *FakeController) Start(_ context.Context, slot slots.Slot) (string, error) {
	f.record(ControllerCall{Action: "start", SlotID: slot.ID})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Output, nil
}

func (f *FakeController) Stop(_ context.Context, slot slots.Slot) (string, error) {
	f.record(ControllerCall{Action: "stop", SlotID: slot.ID})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Output, nil
}

func (f *FakeController) Status(_ context.Context, slot slots.Slot) process.Status {
	f.record(ControllerCall{Action: "status", SlotID: slot.ID})
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.Statuses[slot.ID]
	if !ok {
		return process.StatusUnknown
	}
	return st
}

func (f *FakeController) TailLogs(_ context.Context, slot slots.Slot, lines int) (string, error) {
	f.record(ControllerCall{Action: "tail", SlotID: slot.ID, Lines: lines})
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Logs, nil
}

// SetLogs replaces the text TailLogs returns.
func (f *FakeController) SetLogs(s string) {
	f.mu.Lock()
	f.Logs = s
	f.mu.Unlock()
}

// CallsFor returns recorded calls with the given action.
func (f *FakeController) CallsFor(action string) []ControllerCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ControllerCall
	for _, c := range f.Calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}
