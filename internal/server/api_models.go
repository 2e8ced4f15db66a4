package server

import (
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/slots"
)

// SaveSlotRequest updates a slot's configuration and optionally deploys a PR.
type SaveSlotRequest struct {
	Name        string `json:"name" example:"portal-dev-1"`
	Description string `json:"description" example:"Search feature testing"`
	Directory   string `json:"directory" example:"/srv/dcc/slot1"`
	URL         string `json:"url" example:"https://dev.example.org:9001"`
	// PR is the pull request to deploy; 0 keeps the current build.
	PR int `json:"pr" example:"42"`
}

func (r SaveSlotRequest) config() slots.Config {
	return slots.Config{
		Name:        r.Name,
		Description: r.Description,
		Directory:   r.Directory,
		URL:         r.URL,
	}
}

// OutputResponse carries the captured text of a slot action.
type OutputResponse struct {
	SlotID int    `json:"slot_id" example:"1"`
	Output string `json:"output" example:"DCC Portal started"`
}

// StatusResponse reports a slot's process status.
type StatusResponse struct {
	SlotID int            `json:"slot_id" example:"1"`
	Status process.Status `json:"status" example:"1"`
	State  string         `json:"state" example:"running"`
}

// LogMessage is one frame of the log WebSocket.
type LogMessage struct {
	SlotID int    `json:"slot_id" example:"1"`
	Log    string `json:"log"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"slot not found"`
}
