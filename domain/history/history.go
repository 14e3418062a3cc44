// Package history keeps a bounded undo/redo stack of document snapshots.
package history

import (
	"bytes"
	"encoding/json"

	"mindmap/domain/codec"
	pkgerrors "mindmap/pkg/errors"
)

// DefaultMaxLength bounds the number of retained snapshots
const DefaultMaxLength = 50

// Snapshot is an immutable capture of a document in wire shape.
// It is stored as canonical JSON so equality is a byte comparison and every
// read hands out a fresh tree that never aliases the stored value.
type Snapshot struct {
	data []byte
}

// NewSnapshot captures a wire tree
func NewSnapshot(tree *codec.WireNode) (Snapshot, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return Snapshot{}, pkgerrors.NewInternalError("failed to capture snapshot").WithCause(err)
	}
	return Snapshot{data: data}, nil
}

// SnapshotFromBytes wraps previously serialised snapshot data
func SnapshotFromBytes(data []byte) Snapshot {
	return Snapshot{data: bytes.Clone(data)}
}

// Equal reports whether two snapshots capture the same document
func (s Snapshot) Equal(other Snapshot) bool {
	return bytes.Equal(s.data, other.data)
}

// Bytes returns a copy of the serialised snapshot
func (s Snapshot) Bytes() []byte {
	return bytes.Clone(s.data)
}

// Tree decodes a fresh copy of the captured wire tree
func (s Snapshot) Tree() (*codec.WireNode, error) {
	var tree *codec.WireNode
	if err := json.Unmarshal(s.data, &tree); err != nil {
		return nil, pkgerrors.NewDataIntegrityError("history snapshot is corrupted", err)
	}
	if tree == nil {
		return nil, pkgerrors.NewDataIntegrityError("history snapshot is empty", nil)
	}
	return tree, nil
}

// State is the read-only view used to enable or disable undo/redo controls
type State struct {
	CanUndo      bool `json:"canUndo"`
	CanRedo      bool `json:"canRedo"`
	Length       int  `json:"historyLength"`
	CurrentIndex int  `json:"currentIndex"`
}

// Manager is the undo/redo state machine.
// index is -1 when empty and otherwise points at the snapshot matching the live document.
type Manager struct {
	snapshots []Snapshot
	index     int
	maxLength int
}

// NewManager creates an empty history bounded to maxLength entries
func NewManager(maxLength int) *Manager {
	if maxLength < 1 {
		maxLength = DefaultMaxLength
	}
	return &Manager{
		snapshots: make([]Snapshot, 0, maxLength),
		index:     -1,
		maxLength: maxLength,
	}
}

// Push records a snapshot and reports whether history changed.
// A snapshot equal to the current one is ignored, pushing after an undo
// discards the redo tail, and at capacity the oldest entry is evicted
// while the index keeps pointing at the newest snapshot.
func (m *Manager) Push(s Snapshot) bool {
	if m.index >= 0 && m.snapshots[m.index].Equal(s) {
		return false
	}

	if m.index < len(m.snapshots)-1 {
		m.snapshots = m.snapshots[:m.index+1]
	}

	m.snapshots = append(m.snapshots, s)

	if len(m.snapshots) > m.maxLength {
		copy(m.snapshots, m.snapshots[1:])
		m.snapshots[len(m.snapshots)-1] = Snapshot{}
		m.snapshots = m.snapshots[:len(m.snapshots)-1]
	}
	m.index = len(m.snapshots) - 1

	return true
}

// Undo steps back one entry and returns the snapshot to apply
func (m *Manager) Undo() (Snapshot, bool) {
	if m.index <= 0 {
		return Snapshot{}, false
	}
	m.index--
	return m.snapshots[m.index], true
}

// Redo steps forward one entry and returns the snapshot to apply
func (m *Manager) Redo() (Snapshot, bool) {
	if m.index >= len(m.snapshots)-1 {
		return Snapshot{}, false
	}
	m.index++
	return m.snapshots[m.index], true
}

// At returns the snapshot at index i
func (m *Manager) At(i int) (Snapshot, bool) {
	if i < 0 || i >= len(m.snapshots) {
		return Snapshot{}, false
	}
	return m.snapshots[i], true
}

// Seek moves the index to entry i without changing the stack.
// It reports false and leaves the index alone when i is out of range.
func (m *Manager) Seek(i int) bool {
	if i < 0 || i >= len(m.snapshots) {
		return false
	}
	m.index = i
	return true
}

// Current returns the snapshot the index points at
func (m *Manager) Current() (Snapshot, bool) {
	return m.At(m.index)
}

// Clear drops every snapshot
func (m *Manager) Clear() {
	m.snapshots = make([]Snapshot, 0, m.maxLength)
	m.index = -1
}

// Len returns the number of retained snapshots
func (m *Manager) Len() int {
	return len(m.snapshots)
}

// Index returns the current position, -1 when empty
func (m *Manager) Index() int {
	return m.index
}

// MaxLength returns the configured bound
func (m *Manager) MaxLength() int {
	return m.maxLength
}

// State reports the undo/redo availability
func (m *Manager) State() State {
	return State{
		CanUndo:      m.index > 0,
		CanRedo:      m.index < len(m.snapshots)-1,
		Length:       len(m.snapshots),
		CurrentIndex: m.index,
	}
}
