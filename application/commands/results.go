package commands

import (
	"mindmap/application/ports"
	"mindmap/application/services"
)

// SessionResult is the outcome of a session command
type SessionResult struct {
	Session       services.SessionView `json:"session"`
	NodeID        string               `json:"nodeId,omitempty"`
	Removed       int                  `json:"removed,omitempty"`
	Changed       bool                 `json:"changed"`
	Notifications []ports.Notification `json:"notifications"`
}
