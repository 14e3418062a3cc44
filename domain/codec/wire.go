package codec

// FormatNodeTree is the only envelope format this codec reads and writes
const FormatNodeTree = "node_tree"

// WireNode is the persisted node shape.
// Topic is a pointer so an empty label survives a round trip while a
// missing topic still falls back to the placeholder label.
type WireNode struct {
	ID       string      `json:"id,omitempty"`
	Topic    *string     `json:"topic,omitempty"`
	Side     string      `json:"side,omitempty"`
	Children []*WireNode `json:"children,omitempty"`
}

// Meta describes the document inside an envelope
type Meta struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Version string `json:"version"`
}

// Envelope wraps a wire tree for storage in mindMapDataJson
type Envelope struct {
	Meta   Meta      `json:"meta"`
	Format string    `json:"format" validate:"omitempty,oneof=node_tree"`
	Data   *WireNode `json:"data"`
}

// Topic returns a pointer to s for building wire nodes
func Topic(s string) *string {
	return &s
}

// TopicOr dereferences the topic or returns fallback when it is missing
func (w *WireNode) TopicOr(fallback string) string {
	if w.Topic == nil {
		return fallback
	}
	return *w.Topic
}
