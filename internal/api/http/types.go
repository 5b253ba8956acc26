package http

import (
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/canvas"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/registry"
)

// CreateCanvasRequest is the JSON body of POST /canvases
type CreateCanvasRequest struct {
	Name    string          `json:"name"`
	Windows []canvas.Window `json:"windows"`
}

// CanvasResponse carries a canvas's id and state
type CanvasResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name,omitempty"`
	State canvas.Snapshot `json:"state"`
}

// ListResponse is the body of GET /canvases
type ListResponse struct {
	Canvases []registry.Summary `json:"canvases"`
	Stats    registry.Stats     `json:"stats"`
}

// DispatchResponse reports what one message did
type DispatchResponse struct {
	Outcome string          `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
	State   canvas.Snapshot `json:"state"`
}
