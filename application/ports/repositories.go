package ports

import (
	"context"
	"time"
)

// MindMap is a persisted mind-map record.
// MindMapDataJSON holds the serialised envelope produced by the codec.
type MindMap struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId,omitempty"`
	Title           string    `json:"title"`
	MindMapDataJSON string    `json:"mindMapDataJson"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// MindMapPayload is the body sent to the persistence layer on create and update
type MindMapPayload struct {
	Title           string `json:"title" validate:"required,max=200"`
	MindMapDataJSON string `json:"mindMapDataJson" validate:"required,json"`
}

// MindMapSummary is a list entry without the document body
type MindMapSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MindMapRepository defines the interface for mind-map persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type MindMapRepository interface {
	// GetByID retrieves a mind map; a missing record is a NOT_FOUND error
	GetByID(ctx context.Context, id string) (*MindMap, error)

	// Create stores a new record and returns it with its assigned id
	Create(ctx context.Context, ownerID string, payload MindMapPayload) (*MindMap, error)

	// Update overwrites an existing record (last write wins)
	Update(ctx context.Context, id string, payload MindMapPayload) (*MindMap, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error

	// List returns the owner's mind maps, most recently updated first
	List(ctx context.Context, ownerID string) ([]MindMapSummary, error)
}
