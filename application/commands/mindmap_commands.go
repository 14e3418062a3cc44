package commands

import (
	"mindmap/pkg/utils"
)

// CreateMindMapCommand stores a new mind map record
type CreateMindMapCommand struct {
	OwnerID         string `json:"ownerId" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	MindMapDataJSON string `json:"mindMapDataJson" validate:"required,json"`
}

// Validate validates the command
func (c CreateMindMapCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateMindMapCommand overwrites an existing record owned by OwnerID
type UpdateMindMapCommand struct {
	OwnerID         string `json:"ownerId" validate:"required"`
	MindMapID       string `json:"mindMapId" validate:"required"`
	Title           string `json:"title" validate:"required,max=200"`
	MindMapDataJSON string `json:"mindMapDataJson" validate:"required,json"`
}

// Validate validates the command
func (c UpdateMindMapCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteMindMapCommand removes a record owned by OwnerID
type DeleteMindMapCommand struct {
	OwnerID   string `json:"ownerId" validate:"required"`
	MindMapID string `json:"mindMapId" validate:"required"`
}

// Validate validates the command
func (c DeleteMindMapCommand) Validate() error { return utils.ValidateStruct(c) }
