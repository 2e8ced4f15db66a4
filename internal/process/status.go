package process

import (
	"errors"
	"strings"
)

// Status is the last observed state of a slot's server process.
type Status int

const (
	// StatusUnknown means the status script could not run or its output matched neither prefix.
	StatusUnknown Status = -1
	// StatusStopped means the script reported the server as stopped.
	StatusStopped Status = 0
	// StatusRunning means the script reported the server as running.
	StatusRunning Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusRunning:
		return "running"
	default:
		return "unknown"
	}
}

// statusFromResult maps the outcome of a "status" invocation to a Status.
// A process that ran is judged by its output alone, whatever its exit code.
// A spawn failure is an expected Unknown; any other error is reported as
// unexpected so the caller can log it, and still yields Unknown.
func statusFromResult(res Result, err error, cfg Config) (st Status, unexpected bool) {
	switch {
	case err == nil:
		return statusFromOutput(res.Stdout, cfg), false
	case errors.Is(err, ErrSpawn):
		return StatusUnknown, false
	default:
		return StatusUnknown, true
	}
}

func statusFromOutput(output string, cfg Config) Status {
	switch {
	case cfg.StoppedPrefix != "" && strings.HasPrefix(output, cfg.StoppedPrefix):
		return StatusStopped
	case cfg.RunningPrefix != "" && strings.HasPrefix(output, cfg.RunningPrefix):
		return StatusRunning
	default:
		return StatusUnknown
	}
}
