package app

import (
	"context"

	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/history"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/slots"
)

// SlotStore is the persisted slot list. *slots.Store satisfies it.
type SlotStore interface {
	List() ([]slots.Slot, error)
	Get(id int) (slots.Slot, error)
	Save(slot slots.Slot) error
}

// BuildResolver produces build descriptors. *builds.Resolver satisfies it.
type BuildResolver interface {
	ResolveExisting(slot slots.Slot) slots.Build
	ResolveNew(ctx context.Context, pr int) (slots.Build, error)
	ListAvailablePRs(ctx context.Context) ([]builds.PullRequest, error)
}

// ProcessController runs slot executables. *process.Controller satisfies it.
type ProcessController interface {
	Deploy(ctx context.Context, slot slots.Slot, buildNumber string) (string, error)
	Start(ctx context.Context, slot slots.Slot) (string, error)
	Stop(ctx context.Context, slot slots.Slot) (string, error)
	Status(ctx context.Context, slot slots.Slot) process.Status
	TailLogs(ctx context.Context, slot slots.Slot, lines int) (string, error)
}

// HistoryLog records slot actions. *history.Log satisfies it.
type HistoryLog interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
	List(ctx context.Context, slotID, limit int) ([]history.Entry, error)
}

var (
	_ SlotStore         = (*slots.Store)(nil)
	_ BuildResolver     = (*builds.Resolver)(nil)
	_ ProcessController = (*process.Controller)(nil)
	_ HistoryLog        = (*history.Log)(nil)
)
