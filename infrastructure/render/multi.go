package render

import (
	"mindmap/application/ports"
	"mindmap/domain/core/entities"
)

// Multi fans every projection call out to several renderers
type Multi []ports.Renderer

func (m Multi) Load(tree entities.NodeView) {
	for _, r := range m {
		r.Load(tree)
	}
}

func (m Multi) FitView() {
	for _, r := range m {
		r.FitView()
	}
}

func (m Multi) AddChild(node entities.NodeView, parentID string) {
	for _, r := range m {
		r.AddChild(node, parentID)
	}
}

func (m Multi) RemoveChild(nodeID string) {
	for _, r := range m {
		r.RemoveChild(nodeID)
	}
}

func (m Multi) UpdateLabel(nodeID, label string) {
	for _, r := range m {
		r.UpdateLabel(nodeID, label)
	}
}

func (m Multi) SetSelected(nodeID string, selected bool) {
	for _, r := range m {
		r.SetSelected(nodeID, selected)
	}
}

func (m Multi) ClearSelected() {
	for _, r := range m {
		r.ClearSelected()
	}
}

// ProjectionOf returns the first in-memory projection in r, if any
func ProjectionOf(r ports.Renderer) (*Projection, bool) {
	switch v := r.(type) {
	case *Projection:
		return v, true
	case Multi:
		for _, inner := range v {
			if p, ok := ProjectionOf(inner); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// Tree returns the tree of the first in-memory projection
func (m Multi) Tree() (entities.NodeView, bool) {
	if p, ok := ProjectionOf(m); ok {
		return p.Tree()
	}
	return entities.NodeView{}, false
}

// Selected returns the selection of the first in-memory projection
func (m Multi) Selected() []string {
	if p, ok := ProjectionOf(m); ok {
		return p.Selected()
	}
	return nil
}
