package ports

import (
	"context"

	"mindmap/domain/core/entities"
	"mindmap/domain/events"
)

// Renderer projects the document onto a visual surface.
// The document model stays authoritative; a renderer never feeds state back.
type Renderer interface {
	// Load replaces the whole projection with the given tree
	Load(tree entities.NodeView)

	// FitView asks the surface to fit the projection into its viewport
	FitView()

	// AddChild attaches a projected node under parentID
	AddChild(node entities.NodeView, parentID string)

	// RemoveChild drops a projected node and its subtree
	RemoveChild(nodeID string)

	// UpdateLabel changes a projected label
	UpdateLabel(nodeID, label string)

	// SetSelected toggles the selected state of a projected node
	SetSelected(nodeID string, selected bool)

	// ClearSelected clears the selected state on every projected node
	ClearSelected()
}

// ProjectionReader is implemented by renderers that can report what they display
type ProjectionReader interface {
	Tree() (entities.NodeView, bool)
	Selected() []string
}

// Notifier shows transient messages to the user. Calls are fire-and-forget.
type Notifier interface {
	Success(message string)
	Error(message string)
	Warning(message string)
}

// NotificationLevel classifies a notification
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelWarning NotificationLevel = "warning"
)

// Notification is one message emitted through a Notifier
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// NotificationLog is a Notifier that retains messages until drained
type NotificationLog interface {
	Notifier
	Drain() []Notification
}

// EventPublisher publishes domain events to external subscribers
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
