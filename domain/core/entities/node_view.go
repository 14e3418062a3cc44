package entities

// NodeView is the editing-tree shape handed to render adapters and HTTP clients
type NodeView struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Side     string     `json:"side,omitempty"`
	IsRoot   bool       `json:"isRoot"`
	Children []NodeView `json:"children"`
}

// View projects the subtree into a detached NodeView
func (n *Node) View() NodeView {
	view := NodeView{
		ID:       n.id.String(),
		Label:    n.label,
		Side:     n.side.String(),
		IsRoot:   n.IsRoot(),
		Children: make([]NodeView, 0, len(n.children)),
	}
	for _, child := range n.children {
		view.Children = append(view.Children, child.View())
	}
	return view
}

// Count returns the number of nodes in the view
func (v NodeView) Count() int {
	count := 1
	for _, child := range v.Children {
		count += child.Count()
	}
	return count
}

// Find looks up a node in the view by id
func (v *NodeView) Find(id string) *NodeView {
	if v.ID == id {
		return v
	}
	for i := range v.Children {
		if found := v.Children[i].Find(id); found != nil {
			return found
		}
	}
	return nil
}
