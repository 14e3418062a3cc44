package commands

import (
	"mindmap/pkg/utils"
)

// SessionRef addresses an open editing session on behalf of its owner
type SessionRef struct {
	SessionID string `json:"sessionId" validate:"required"`
	OwnerID   string `json:"ownerId" validate:"required"`
}

// OpenSessionCommand opens an editing session.
// An empty MindMapID or "new" starts a fresh document.
type OpenSessionCommand struct {
	OwnerID      string `json:"ownerId" validate:"required"`
	MindMapID    string `json:"mindMapId" validate:"max=128"`
	ConnectionID string `json:"connectionId" validate:"max=256"`
}

// Validate validates the command
func (c OpenSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// CloseSessionCommand ends an editing session
type CloseSessionCommand struct {
	SessionRef
}

// Validate validates the command
func (c CloseSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// AddChildCommand appends a node under ParentID.
// An empty ParentID reaches the document and surfaces as a warning notification.
type AddChildCommand struct {
	SessionRef
	ParentID string `json:"parentId"`
	Label    string `json:"label"`
	Side     string `json:"side" validate:"omitempty,oneof=left right"`
}

// Validate validates the command
func (c AddChildCommand) Validate() error { return utils.ValidateStruct(c) }

// AddSiblingCommand inserts a node after NodeID under the same parent
type AddSiblingCommand struct {
	SessionRef
	NodeID string `json:"nodeId"`
	Label  string `json:"label"`
}

// Validate validates the command
func (c AddSiblingCommand) Validate() error { return utils.ValidateStruct(c) }

// RenameNodeCommand relabels a node.
// Label length is checked by the document so the failure surfaces as a notification.
type RenameNodeCommand struct {
	SessionRef
	NodeID string `json:"nodeId" validate:"required"`
	Label  string `json:"label"`
}

// Validate validates the command
func (c RenameNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteNodeCommand removes a node and its subtree
type DeleteNodeCommand struct {
	SessionRef
	NodeID string `json:"nodeId"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// SelectNodeCommand selects NodeID, or clears the selection when it is empty
type SelectNodeCommand struct {
	SessionRef
	NodeID string `json:"nodeId"`
}

// Validate validates the command
func (c SelectNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// UndoCommand steps back one history entry
type UndoCommand struct {
	SessionRef
}

// Validate validates the command
func (c UndoCommand) Validate() error { return utils.ValidateStruct(c) }

// RedoCommand steps forward one history entry
type RedoCommand struct {
	SessionRef
}

// Validate validates the command
func (c RedoCommand) Validate() error { return utils.ValidateStruct(c) }

// ApplyHistoryCommand jumps to the snapshot at Index
type ApplyHistoryCommand struct {
	SessionRef
	Index int `json:"index" validate:"min=0"`
}

// Validate validates the command
func (c ApplyHistoryCommand) Validate() error { return utils.ValidateStruct(c) }

// ClearHistoryCommand drops every history entry
type ClearHistoryCommand struct {
	SessionRef
}

// Validate validates the command
func (c ClearHistoryCommand) Validate() error { return utils.ValidateStruct(c) }

// SetTitleCommand renames the document
type SetTitleCommand struct {
	SessionRef
	Title string `json:"title" validate:"max=200"`
}

// Validate validates the command
func (c SetTitleCommand) Validate() error { return utils.ValidateStruct(c) }

// SaveCommand persists the session's document
type SaveCommand struct {
	SessionRef
}

// Validate validates the command
func (c SaveCommand) Validate() error { return utils.ValidateStruct(c) }
