package aggregates

import (
	"fmt"
	"time"
	"unicode/utf8"

	"mindmap/domain/config"
	"mindmap/domain/core/entities"
	"mindmap/domain/core/valueobjects"
	"mindmap/domain/events"
	pkgerrors "mindmap/pkg/errors"
)

// Document is the aggregate root for one mind map.
// It owns the node tree and keeps these invariants after every mutation:
// the root is the only node with id "root", ids are unique, the root has no
// side, and only direct children of the root carry a side.
type Document struct {
	id      string
	root    *entities.Node
	nodes   map[valueobjects.NodeID]*entities.Node
	parents map[valueobjects.NodeID]*entities.Node
	ids     *valueobjects.IDGenerator
	cfg     *config.DomainConfig
	events  []events.DomainEvent
}

// NewEmptyDocument creates a document holding only the root node
func NewEmptyDocument(cfg *config.DomainConfig) *Document {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	root := entities.NewNode(valueobjects.RootNodeID(), cfg.DefaultRootLabel, valueobjects.SideNone)
	return HydrateDocument(root, cfg)
}

// NewLabeledRootDocument creates a document whose only node is a root with the given label
func NewLabeledRootDocument(label string, cfg *config.DomainConfig) *Document {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	root := entities.NewNode(valueobjects.RootNodeID(), label, valueobjects.SideNone)
	return HydrateDocument(root, cfg)
}

// HydrateDocument adopts an externally built tree and normalises it so the
// invariants hold. The root id is forced to "root" and its side is cleared.
// Descendants with a zero, duplicate or "root" id receive a fresh id, and
// sides below the first level are dropped.
func HydrateDocument(root *entities.Node, cfg *config.DomainConfig) *Document {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if root == nil {
		root = entities.NewNode(valueobjects.RootNodeID(), cfg.DefaultRootLabel, valueobjects.SideNone)
	}

	d := &Document{
		root:    root,
		nodes:   make(map[valueobjects.NodeID]*entities.Node),
		parents: make(map[valueobjects.NodeID]*entities.Node),
		ids:     valueobjects.NewIDGenerator(cfg.GeneratedIDPrefix),
		cfg:     cfg,
		events:  []events.DomainEvent{},
	}

	root.SetID(valueobjects.RootNodeID())
	root.SetSide(valueobjects.SideNone)

	// Seed the generator first so fresh ids never shadow a stored one
	root.Walk(func(node, _ *entities.Node, _ int) bool {
		d.ids.Observe(node.ID())
		return true
	})

	root.Walk(func(node, parent *entities.Node, depth int) bool {
		if parent != nil {
			id := node.ID()
			if _, taken := d.nodes[id]; id.IsZero() || id.IsRoot() || taken {
				node.SetID(d.ids.Next(d.isTaken))
			}
			if depth > 1 && node.Side().IsSet() {
				node.SetSide(valueobjects.SideNone)
			}
		}
		d.nodes[node.ID()] = node
		d.parents[node.ID()] = parent
		return true
	})

	return d
}

// ID returns the identifier used as aggregate id on raised events
func (d *Document) ID() string {
	return d.id
}

// SetID binds the document to a persisted mind map id
func (d *Document) SetID(id string) {
	d.id = id
}

// Root returns the root node
func (d *Document) Root() *entities.Node {
	return d.root
}

// Config returns the domain configuration the document was built with
func (d *Document) Config() *config.DomainConfig {
	return d.cfg
}

// NodeCount returns the number of nodes in the document
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// Find looks up a node by id
func (d *Document) Find(nodeID string) (*entities.Node, bool) {
	node, ok := d.nodes[nodeIDOf(nodeID)]
	return node, ok
}

// Parent returns the parent of a node; the root has none
func (d *Document) Parent(nodeID string) (*entities.Node, bool) {
	parent, ok := d.parents[nodeIDOf(nodeID)]
	if !ok || parent == nil {
		return nil, false
	}
	return parent, true
}

// VisualSide resolves the side a node is drawn on by walking up to its first-level ancestor
func (d *Document) VisualSide(nodeID string) valueobjects.Side {
	id := nodeIDOf(nodeID)
	node, ok := d.nodes[id]
	if !ok || node.IsRoot() {
		return valueobjects.SideNone
	}
	for {
		parent := d.parents[node.ID()]
		if parent == nil {
			return valueobjects.SideNone
		}
		if parent.IsRoot() {
			return node.Side().OrDefault()
		}
		node = parent
	}
}

// Walk visits every node depth-first in children order
func (d *Document) Walk(fn func(node, parent *entities.Node, depth int) bool) {
	d.root.Walk(fn)
}

// View projects the document into the editing-tree shape
func (d *Document) View() entities.NodeView {
	return d.root.View()
}

// AddChild appends a new node under parentID and returns its id.
// A side is stored only when the parent is the root, defaulting to right.
func (d *Document) AddChild(parentID, label string, sideHint valueobjects.Side) (valueobjects.NodeID, error) {
	if parentID == "" {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("no parent selected")
	}
	parent, ok := d.Find(parentID)
	if !ok {
		return valueobjects.NodeID{}, pkgerrors.NewNotFoundError(fmt.Sprintf("node %q", parentID))
	}

	side := valueobjects.SideNone
	if parent.IsRoot() {
		side = sideHint.OrDefault()
	}
	return d.attach(parent, label, side)
}

// AddSibling appends a new node to the parent of nodeID and returns its id.
// Under the root the new node copies the reference node's side.
func (d *Document) AddSibling(nodeID, label string) (valueobjects.NodeID, error) {
	if nodeID == "" {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("select a node first")
	}
	reference, ok := d.Find(nodeID)
	if !ok {
		return valueobjects.NodeID{}, pkgerrors.NewNotFoundError(fmt.Sprintf("node %q", nodeID))
	}
	parent, ok := d.Parent(nodeID)
	if !ok {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("root has no siblings")
	}

	side := valueobjects.SideNone
	if parent.IsRoot() {
		side = reference.Side().OrDefault()
	}
	return d.attach(parent, label, side)
}

// DeleteNode removes nodeID and its subtree and returns how many nodes were removed
func (d *Document) DeleteNode(nodeID string) (int, error) {
	if nodeID == "" {
		return 0, pkgerrors.NewValidationError("select a node to delete")
	}
	if nodeIDOf(nodeID).IsRoot() {
		return 0, pkgerrors.NewValidationError("cannot delete root")
	}
	node, ok := d.Find(nodeID)
	if !ok {
		return 0, pkgerrors.NewNotFoundError(fmt.Sprintf("node %q", nodeID))
	}
	parent, _ := d.Parent(nodeID)

	parent.RemoveChild(node.ID())
	removed := 0
	node.Walk(func(n, _ *entities.Node, _ int) bool {
		delete(d.nodes, n.ID())
		delete(d.parents, n.ID())
		removed++
		return true
	})

	d.addEvent(events.NewNodeRemoved(d.id, node.ID().String(), parent.ID().String(), removed, time.Now()))
	return removed, nil
}

// RenameNode updates a label and reports whether anything changed
func (d *Document) RenameNode(nodeID, label string) (bool, error) {
	node, ok := d.Find(nodeID)
	if !ok {
		return false, pkgerrors.NewNotFoundError(fmt.Sprintf("node %q", nodeID))
	}
	old := node.Label()
	if old == label {
		return false, nil
	}
	if err := d.checkLabel(label); err != nil {
		return false, err
	}
	node.Rename(label)

	d.addEvent(events.NewNodeRenamed(d.id, node.ID().String(), old, label, time.Now()))
	return true, nil
}

// Validate checks the structural invariants over the whole tree
func (d *Document) Validate() error {
	if !d.root.ID().IsRoot() {
		return pkgerrors.NewInternalError("document root must have id \"root\"")
	}
	if d.root.Side().IsSet() {
		return pkgerrors.NewInternalError("root cannot carry a side")
	}

	seen := make(map[valueobjects.NodeID]bool)
	var err error
	d.root.Walk(func(node, parent *entities.Node, depth int) bool {
		if err != nil {
			return false
		}
		switch {
		case seen[node.ID()]:
			err = pkgerrors.NewInternalError(fmt.Sprintf("duplicate node id %q", node.ID()))
		case parent != nil && node.IsRoot():
			err = pkgerrors.NewInternalError("only the document root may use id \"root\"")
		case depth != 1 && node.Side().IsSet():
			err = pkgerrors.NewInternalError(fmt.Sprintf("node %q below the first level carries a side", node.ID()))
		}
		seen[node.ID()] = true
		return true
	})
	if err != nil {
		return err
	}
	if len(seen) != len(d.nodes) {
		return pkgerrors.NewInternalError("node index is out of sync with the tree")
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (d *Document) GetUncommittedEvents() []events.DomainEvent {
	return d.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (d *Document) MarkEventsAsCommitted() {
	d.events = []events.DomainEvent{}
}

// TakeEvents moves the uncommitted events of other in front of d's own,
// leaving other with none. Used when a document replaces another in place.
func (d *Document) TakeEvents(other *Document) {
	if other == nil || other == d || len(other.events) == 0 {
		return
	}
	merged := make([]events.DomainEvent, 0, len(other.events)+len(d.events))
	merged = append(merged, other.events...)
	d.events = append(merged, d.events...)
	other.MarkEventsAsCommitted()
}

func (d *Document) attach(parent *entities.Node, label string, side valueobjects.Side) (valueobjects.NodeID, error) {
	if err := d.checkLabel(label); err != nil {
		return valueobjects.NodeID{}, err
	}
	if d.cfg.MaxNodesPerMap > 0 && len(d.nodes) >= d.cfg.MaxNodesPerMap {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError(
			fmt.Sprintf("maximum nodes reached: %d", d.cfg.MaxNodesPerMap))
	}

	node := entities.NewNode(d.ids.Next(d.isTaken), label, side)
	parent.AppendChild(node)
	d.nodes[node.ID()] = node
	d.parents[node.ID()] = parent

	d.addEvent(events.NewNodeAdded(d.id, node.ID().String(), parent.ID().String(), label, side.String(), time.Now()))
	return node.ID(), nil
}

func (d *Document) checkLabel(label string) error {
	if d.cfg.MaxLabelLength > 0 && utf8.RuneCountInString(label) > d.cfg.MaxLabelLength {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("label exceeds maximum length of %d characters", d.cfg.MaxLabelLength))
	}
	return nil
}

func (d *Document) isTaken(id valueobjects.NodeID) bool {
	_, taken := d.nodes[id]
	return taken
}

// addEvent adds a domain event to the uncommitted list
func (d *Document) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

func nodeIDOf(s string) valueobjects.NodeID {
	id, _ := valueobjects.NewNodeIDFromString(s)
	return id
}
