// Package render provides Renderer implementations. Every renderer is a pure
// projection of the document model and never reports state back.
package render

import (
	"sort"
	"sync"

	"mindmap/domain/core/entities"
)

// Projection mirrors the document in memory so it can be served to clients
type Projection struct {
	mu       sync.RWMutex
	tree     *entities.NodeView
	selected map[string]bool
	fits     int
}

// NewProjection creates an empty projection
func NewProjection() *Projection {
	return &Projection{selected: make(map[string]bool)}
}

func (p *Projection) Load(tree entities.NodeView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	clone := cloneView(tree)
	p.tree = &clone
	p.selected = make(map[string]bool)
}

func (p *Projection) FitView() {
	p.mu.Lock()
	p.fits++
	p.mu.Unlock()
}

func (p *Projection) AddChild(node entities.NodeView, parentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree == nil {
		return
	}
	if parent := p.tree.Find(parentID); parent != nil {
		parent.Children = append(parent.Children, cloneView(node))
	}
}

func (p *Projection) RemoveChild(nodeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree == nil {
		return
	}
	removeFrom(p.tree, nodeID)
	delete(p.selected, nodeID)
}

func (p *Projection) UpdateLabel(nodeID, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tree == nil {
		return
	}
	if node := p.tree.Find(nodeID); node != nil {
		node.Label = label
	}
}

func (p *Projection) SetSelected(nodeID string, selected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if selected {
		p.selected[nodeID] = true
	} else {
		delete(p.selected, nodeID)
	}
}

func (p *Projection) ClearSelected() {
	p.mu.Lock()
	p.selected = make(map[string]bool)
	p.mu.Unlock()
}

// Tree returns a copy of the projected tree
func (p *Projection) Tree() (entities.NodeView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.tree == nil {
		return entities.NodeView{}, false
	}
	return cloneView(*p.tree), true
}

// Selected returns the selected node ids in sorted order
func (p *Projection) Selected() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.selected))
	for id := range p.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FitCount returns how many times the view was fitted
func (p *Projection) FitCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fits
}

func removeFrom(parent *entities.NodeView, nodeID string) bool {
	for i := range parent.Children {
		if parent.Children[i].ID == nodeID {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
		if removeFrom(&parent.Children[i], nodeID) {
			return true
		}
	}
	return false
}

func cloneView(v entities.NodeView) entities.NodeView {
	clone := v
	clone.Children = make([]entities.NodeView, 0, len(v.Children))
	for _, child := range v.Children {
		clone.Children = append(clone.Children, cloneView(child))
	}
	return clone
}
