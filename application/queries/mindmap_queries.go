package queries

import (
	"mindmap/application/commands"
	"mindmap/pkg/utils"
)

// GetMindMapQuery fetches one persisted record
type GetMindMapQuery struct {
	OwnerID   string `validate:"required"`
	MindMapID string `validate:"required"`
}

// Validate validates the query
func (q GetMindMapQuery) Validate() error { return utils.ValidateStruct(q) }

// ListMindMapsQuery lists the records of one owner, most recently updated first
type ListMindMapsQuery struct {
	OwnerID string `validate:"required"`
}

// Validate validates the query
func (q ListMindMapsQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSessionQuery reads the state of an open editing session
type GetSessionQuery struct {
	commands.SessionRef
}

// Validate validates the query
func (q GetSessionQuery) Validate() error { return utils.ValidateStruct(q) }

// GetProjectionQuery reads what the session's renderer currently shows
type GetProjectionQuery struct {
	commands.SessionRef
}

// Validate validates the query
func (q GetProjectionQuery) Validate() error { return utils.ValidateStruct(q) }
