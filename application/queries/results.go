package queries

import (
	"mindmap/domain/core/entities"
)

// ProjectionResult is what a session's renderer currently displays
type ProjectionResult struct {
	SessionID string             `json:"sessionId"`
	Tree      *entities.NodeView `json:"tree,omitempty"`
	Selected  []string           `json:"selected"`
}
