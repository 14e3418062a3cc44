package valueobjects

import (
	"errors"
	"strconv"
	"strings"
)

// RootID is the fixed identifier of every document's root node
const RootID = "root"

// NodeID is a value object representing a node identifier within one document
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// RootNodeID returns the identifier of the document root
func RootNodeID() NodeID {
	return NodeID{value: RootID}
}

// NewNodeIDFromString creates a NodeID from an existing string
func NewNodeIDFromString(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// IsRoot reports whether the id is the fixed root identifier
func (id NodeID) IsRoot() bool {
	return id.value == RootID
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	value, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("NodeID must be a string")
	}
	id.value = value
	return nil
}

// IDGenerator hands out document-scoped node ids of the form <prefix><base36 counter>.
// The counter only moves forward, and callers pass a lookup so ids that are
// already taken (for example ids loaded from storage) are skipped.
type IDGenerator struct {
	prefix  string
	counter uint64
}

// NewIDGenerator creates a generator for the given prefix
func NewIDGenerator(prefix string) *IDGenerator {
	return &IDGenerator{prefix: prefix}
}

// Next returns the next id for which taken reports false
func (g *IDGenerator) Next(taken func(NodeID) bool) NodeID {
	for {
		g.counter++
		id := NodeID{value: g.prefix + strconv.FormatUint(g.counter, 36)}
		if taken == nil || !taken(id) {
			return id
		}
	}
}

// Observe advances the counter past an existing id carrying this generator's prefix
func (g *IDGenerator) Observe(id NodeID) {
	suffix, ok := strings.CutPrefix(id.value, g.prefix)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(suffix, 36, 64)
	if err != nil {
		return
	}
	if n > g.counter {
		g.counter = n
	}
}
