package valueobjects

import (
	"fmt"
	"strings"
)

// Side is the left/right placement hint stored on first-level nodes
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// DefaultSide is used for first-level nodes created without a hint
const DefaultSide = SideRight

// ParseSide converts user or wire input into a Side.
// An empty string yields SideNone.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideNone:
		return SideNone, nil
	case SideLeft:
		return SideLeft, nil
	case SideRight:
		return SideRight, nil
	default:
		return SideNone, fmt.Errorf("invalid side %q: must be left or right", s)
	}
}

// IsSet reports whether a side is present
func (s Side) IsSet() bool {
	return s != SideNone
}

// OrDefault returns s, or DefaultSide when s is unset
func (s Side) OrDefault() Side {
	if s.IsSet() {
		return s
	}
	return DefaultSide
}

// String returns the string representation
func (s Side) String() string {
	return string(s)
}
