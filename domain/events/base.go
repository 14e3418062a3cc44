package events

import (
	"time"
)

// SourceMindMap is the event source name used when publishing
const SourceMindMap = "mindmap.engine"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Node Events

// NodeAdded is raised when a node is attached to the document
type NodeAdded struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	ParentID string `json:"parent_id"`
	Label    string `json:"label"`
	Side     string `json:"side,omitempty"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(documentID, nodeID, parentID, label, side string, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(documentID, "mindmap.node_added", timestamp),
		NodeID:    nodeID,
		ParentID:  parentID,
		Label:     label,
		Side:      side,
	}
}

// NodeRemoved is raised when a subtree is removed
type NodeRemoved struct {
	BaseEvent
	NodeID       string `json:"node_id"`
	ParentID     string `json:"parent_id"`
	RemovedCount int    `json:"removed_count"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(documentID, nodeID, parentID string, removedCount int, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:    newBase(documentID, "mindmap.node_removed", timestamp),
		NodeID:       nodeID,
		ParentID:     parentID,
		RemovedCount: removedCount,
	}
}

// NodeRenamed is raised when a label changes
type NodeRenamed struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

// NewNodeRenamed creates a NodeRenamed event
func NewNodeRenamed(documentID, nodeID, oldLabel, newLabel string, timestamp time.Time) NodeRenamed {
	return NodeRenamed{
		BaseEvent: newBase(documentID, "mindmap.node_renamed", timestamp),
		NodeID:    nodeID,
		OldLabel:  oldLabel,
		NewLabel:  newLabel,
	}
}

// Mind map lifecycle events

// MindMapCreated is raised when a mind map is persisted for the first time
type MindMapCreated struct {
	BaseEvent
	MindMapID string `json:"mind_map_id"`
	Title     string `json:"title"`
	NodeCount int    `json:"node_count"`
}

// NewMindMapCreated creates a MindMapCreated event
func NewMindMapCreated(mindMapID, title string, nodeCount int, timestamp time.Time) MindMapCreated {
	return MindMapCreated{
		BaseEvent: newBase(mindMapID, "mindmap.created", timestamp),
		MindMapID: mindMapID,
		Title:     title,
		NodeCount: nodeCount,
	}
}

// MindMapSaved is raised when an existing mind map is overwritten
type MindMapSaved struct {
	BaseEvent
	MindMapID string `json:"mind_map_id"`
	Title     string `json:"title"`
	NodeCount int    `json:"node_count"`
}

// NewMindMapSaved creates a MindMapSaved event
func NewMindMapSaved(mindMapID, title string, nodeCount int, timestamp time.Time) MindMapSaved {
	return MindMapSaved{
		BaseEvent: newBase(mindMapID, "mindmap.saved", timestamp),
		MindMapID: mindMapID,
		Title:     title,
		NodeCount: nodeCount,
	}
}

// MindMapDeleted is raised when a mind map is removed from storage
type MindMapDeleted struct {
	BaseEvent
	MindMapID string `json:"mind_map_id"`
}

// NewMindMapDeleted creates a MindMapDeleted event
func NewMindMapDeleted(mindMapID string, timestamp time.Time) MindMapDeleted {
	return MindMapDeleted{
		BaseEvent: newBase(mindMapID, "mindmap.deleted", timestamp),
		MindMapID: mindMapID,
	}
}
