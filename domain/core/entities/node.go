package entities

import (
	"mindmap/domain/core/valueobjects"
)

// Node is a labeled point in a mind-map tree.
// Parent links are not stored; a node's parent is whichever node contains it.
type Node struct {
	id       valueobjects.NodeID
	label    string
	side     valueobjects.Side
	children []*Node
}

// NewNode creates a detached node without children
func NewNode(id valueobjects.NodeID, label string, side valueobjects.Side) *Node {
	return &Node{
		id:       id,
		label:    label,
		side:     side,
		children: []*Node{},
	}
}

// ID returns the node's identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Label returns the display text
func (n *Node) Label() string {
	return n.label
}

// Side returns the stored side hint (only first-level nodes carry one)
func (n *Node) Side() valueobjects.Side {
	return n.side
}

// IsRoot is derived from the id and never stored
func (n *Node) IsRoot() bool {
	return n.id.IsRoot()
}

// Children returns the ordered children
func (n *Node) Children() []*Node {
	// Return a copy to maintain encapsulation
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Rename sets the label and reports whether it changed
func (n *Node) Rename(label string) bool {
	if n.label == label {
		return false
	}
	n.label = label
	return true
}

// SetID replaces the identifier; only the aggregate calls this while normalising loaded trees
func (n *Node) SetID(id valueobjects.NodeID) {
	n.id = id
}

// SetSide replaces the stored side hint
func (n *Node) SetSide(side valueobjects.Side) {
	n.side = side
}

// AppendChild adds child at the tail of the children sequence
func (n *Node) AppendChild(child *Node) {
	n.children = append(n.children, child)
}

// RemoveChild detaches the direct child with the given id
func (n *Node) RemoveChild(id valueobjects.NodeID) (*Node, bool) {
	for i, child := range n.children {
		if child.id.Equals(id) {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return child, true
		}
	}
	return nil, false
}

// Size returns the number of nodes in the subtree rooted at n
func (n *Node) Size() int {
	size := 1
	for _, child := range n.children {
		size += child.Size()
	}
	return size
}

// Walk visits the subtree depth-first in children order.
// Returning false from fn skips the visited node's descendants.
func (n *Node) Walk(fn func(node, parent *Node, depth int) bool) {
	n.walk(nil, 0, fn)
}

func (n *Node) walk(parent *Node, depth int, fn func(node, parent *Node, depth int) bool) {
	if !fn(n, parent, depth) {
		return
	}
	for _, child := range n.children {
		child.walk(n, depth+1, fn)
	}
}

// Clone returns a deep copy of the subtree
func (n *Node) Clone() *Node {
	clone := &Node{
		id:       n.id,
		label:    n.label,
		side:     n.side,
		children: make([]*Node, 0, len(n.children)),
	}
	for _, child := range n.children {
		clone.children = append(clone.children, child.Clone())
	}
	return clone
}
