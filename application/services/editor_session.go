package services

import (
	"context"
	"time"

	"mindmap/application/ports"
	"mindmap/domain/codec"
	"mindmap/domain/config"
	"mindmap/domain/core/aggregates"
	"mindmap/domain/core/entities"
	"mindmap/domain/core/valueobjects"
	"mindmap/domain/events"
	"mindmap/domain/history"
	pkgerrors "mindmap/pkg/errors"
	"mindmap/pkg/observability"

	"go.uber.org/zap"
)

// User-facing notification texts
const (
	MsgUndone           = "Undone"
	MsgRedone           = "Redone"
	MsgNothingToUndo    = "Nothing to undo"
	MsgNothingToRedo    = "Nothing to redo"
	MsgHistoryCorrupted = "Failed to restore: history data is corrupted"
	MsgNodeDeleted      = "Node deleted"
	MsgSaved            = "Saved"
	MsgCreatedAndSaved  = "Created and saved"
	MsgSaveFailed       = "Save failed, please try again later"
	MsgLoadFailed       = "Failed to load mind map, it may not exist"
	MsgLoadInvalidData  = "Failed to load mind map data: the data format is invalid"
)

// NewMindMapID is the route id that asks for a fresh document instead of a load
const NewMindMapID = "new"

// SessionDeps carries the collaborators of an editing session.
// Renderer, Publisher, Tracer and Metrics are optional.
type SessionDeps struct {
	Config     *config.DomainConfig
	Repository ports.MindMapRepository
	Renderer   ports.Renderer
	Notifier   ports.Notifier
	Publisher  ports.EventPublisher
	Tracer     *observability.Tracer
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// EditorSession owns one live document together with its selection and
// undo/redo history. It is not safe for concurrent use; callers serialise
// access (see SessionRegistry).
type EditorSession struct {
	id        string
	ownerID   string
	mindMapID string
	title     string
	doc       *aggregates.Document
	selected  string
	history   *history.Manager

	cfg       *config.DomainConfig
	repo      ports.MindMapRepository
	renderer  ports.Renderer
	notifier  ports.Notifier
	publisher ports.EventPublisher
	tracer    *observability.Tracer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewEditorSession creates a session without a live document; call New or Load next
func NewEditorSession(id, ownerID string, deps SessionDeps) *EditorSession {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &EditorSession{
		id:        id,
		ownerID:   ownerID,
		history:   history.NewManager(cfg.MaxHistoryLength),
		cfg:       cfg,
		repo:      deps.Repository,
		renderer:  deps.Renderer,
		notifier:  notifier,
		publisher: deps.Publisher,
		tracer:    deps.Tracer,
		metrics:   deps.Metrics,
		logger:    logger.With(zap.String("session_id", id)),
	}
}

// ID returns the session identifier
func (s *EditorSession) ID() string { return s.id }

// OwnerID returns the user the session belongs to
func (s *EditorSession) OwnerID() string { return s.ownerID }

// MindMapID returns the persisted id, empty until the first save of a new document
func (s *EditorSession) MindMapID() string { return s.mindMapID }

// Title returns the document title
func (s *EditorSession) Title() string { return s.title }

// SetTitle renames the document; an empty title falls back to the untitled placeholder
func (s *EditorSession) SetTitle(title string) {
	if title == "" {
		title = s.cfg.UntitledTitle
	}
	s.title = title
}

// Document returns the live document, nil before New or Load
func (s *EditorSession) Document() *aggregates.Document { return s.doc }

// Selected returns the selected node id, empty when nothing is selected
func (s *EditorSession) Selected() string { return s.selected }

// Renderer returns the session's projection, nil when none is attached
func (s *EditorSession) Renderer() ports.Renderer { return s.renderer }

// HistoryState reports undo/redo availability
func (s *EditorSession) HistoryState() history.State { return s.history.State() }

// DrainNotifications returns and forgets the notifications emitted so far.
// It returns nil when the session's notifier does not retain messages.
func (s *EditorSession) DrainNotifications() []ports.Notification {
	if log, ok := s.notifier.(ports.NotificationLog); ok {
		return log.Drain()
	}
	return nil
}

// View returns the editing tree of the live document
func (s *EditorSession) View() (entities.NodeView, bool) {
	if s.doc == nil {
		return entities.NodeView{}, false
	}
	return s.doc.View(), true
}

// SessionView is the externally visible state of a session
type SessionView struct {
	SessionID string             `json:"sessionId"`
	MindMapID string             `json:"mindMapId,omitempty"`
	Title     string             `json:"title"`
	Tree      *entities.NodeView `json:"tree,omitempty"`
	Selected  string             `json:"selected,omitempty"`
	History   history.State      `json:"history"`
}

// Describe captures the current session state
func (s *EditorSession) Describe() SessionView {
	v := SessionView{
		SessionID: s.id,
		MindMapID: s.mindMapID,
		Title:     s.title,
		Selected:  s.selected,
		History:   s.history.State(),
	}
	if tree, ok := s.View(); ok {
		v.Tree = &tree
	}
	return v
}

// New starts a fresh untitled document and seeds history with it
func (s *EditorSession) New() {
	s.mindMapID = ""
	s.title = s.cfg.UntitledTitle
	s.replaceDocument(aggregates.NewEmptyDocument(s.cfg))
	s.ClearHistory()
	s.PushHistory()
}

// Load opens a persisted mind map. An empty id or "new" starts a fresh document.
// When the record cannot be fetched the session falls back to a fresh document
// and returns the error. Malformed stored data yields the load-failure document.
func (s *EditorSession) Load(ctx context.Context, mindMapID string) error {
	if mindMapID == "" || mindMapID == NewMindMapID {
		s.New()
		return nil
	}
	if s.repo == nil {
		s.logger.Warn("load skipped: no repository configured")
		s.New()
		return pkgerrors.NewInternalError("mind map repository is not configured")
	}

	start := time.Now()
	var record *ports.MindMap
	err := s.tracer.TraceFunction(ctx, "mindmap.load", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "mind_map_id", mindMapID)
		var err error
		record, err = s.ownedRecord(ctx, mindMapID)
		return err
	})
	s.metrics.RecordOperation(ctx, "load", time.Since(start), err)

	if err != nil {
		s.logger.Warn("failed to load mind map", zap.String("mind_map_id", mindMapID), zap.Error(err))
		s.notifier.Error(MsgLoadFailed)
		s.New()
		return err
	}

	doc, decodeErr := codec.LoadDocument(record.MindMapDataJSON, s.cfg)
	if decodeErr != nil {
		s.logger.Error("stored mind map data is malformed",
			zap.String("mind_map_id", mindMapID), zap.Error(decodeErr))
		s.notifier.Error(MsgLoadInvalidData)
	}

	s.mindMapID = record.ID
	s.title = record.Title
	if s.title == "" {
		s.title = s.cfg.UntitledTitle
	}
	doc.SetID(record.ID)
	s.replaceDocument(doc)
	s.ClearHistory()
	s.PushHistory()

	s.logger.Info("mind map loaded",
		zap.String("mind_map_id", record.ID),
		zap.Int("node_count", doc.NodeCount()))
	return nil
}

// Save persists the document, creating a record on first save.
// Failures are reported through the notifier and returned; the document is left unchanged.
func (s *EditorSession) Save(ctx context.Context) error {
	if s.doc == nil {
		s.logger.Warn("save skipped: no live document")
		return pkgerrors.NewValidationError("no document to save")
	}
	if s.repo == nil {
		s.notifier.Error(MsgSaveFailed)
		return pkgerrors.NewInternalError("mind map repository is not configured")
	}

	data, err := codec.MarshalEnvelope(s.title, s.doc)
	if err != nil {
		s.notifier.Error(pkgerrors.UserMessage(err, MsgSaveFailed))
		return err
	}
	payload := ports.MindMapPayload{Title: s.title, MindMapDataJSON: data}

	start := time.Now()
	creating := s.mindMapID == ""
	var saved *ports.MindMap
	err = s.tracer.TraceFunction(ctx, "mindmap.save", func(ctx context.Context) error {
		var err error
		if creating {
			saved, err = s.repo.Create(ctx, s.ownerID, payload)
		} else {
			s.tracer.AddAnnotation(ctx, "mind_map_id", s.mindMapID)
			if _, err = s.ownedRecord(ctx, s.mindMapID); err != nil {
				return err
			}
			saved, err = s.repo.Update(ctx, s.mindMapID, payload)
		}
		return err
	})
	s.metrics.RecordOperation(ctx, "save", time.Since(start), err)

	if err != nil {
		s.logger.Error("failed to save mind map", zap.String("mind_map_id", s.mindMapID), zap.Error(err))
		s.notifier.Error(pkgerrors.UserMessage(err, MsgSaveFailed))
		return err
	}

	nodeCount := s.doc.NodeCount()
	s.metrics.RecordDocumentSize(ctx, nodeCount)
	s.metrics.RecordHistoryDepth(ctx, s.history.Len())

	var event events.DomainEvent
	if creating {
		s.mindMapID = saved.ID
		s.doc.SetID(saved.ID)
		s.notifier.Success(MsgCreatedAndSaved)
		event = events.NewMindMapCreated(saved.ID, s.title, nodeCount, time.Now())
	} else {
		s.notifier.Success(MsgSaved)
		event = events.NewMindMapSaved(s.mindMapID, s.title, nodeCount, time.Now())
	}

	s.publish(ctx, append(s.doc.GetUncommittedEvents(), event))
	s.doc.MarkEventsAsCommitted()

	s.logger.Info("mind map saved",
		zap.String("mind_map_id", s.mindMapID),
		zap.Bool("created", creating),
		zap.Int("node_count", nodeCount))
	return nil
}

// AddChild appends a node under parentID, selects it and records history.
// An empty label uses the new-node placeholder. An unknown parent is a silent
// no-op that returns an empty id.
func (s *EditorSession) AddChild(parentID, label string, side valueobjects.Side) (string, error) {
	if s.doc == nil {
		s.logger.Warn("add child skipped: no live document")
		return "", nil
	}
	if label == "" {
		label = s.cfg.NewNodeLabel
	}

	id, err := s.doc.AddChild(parentID, label, side)
	if err != nil {
		return "", s.mutationFailed("add child", parentID, err)
	}

	s.afterInsert(id, parentID)
	return id.String(), nil
}

// AddSibling appends a node next to nodeID, selects it and records history
func (s *EditorSession) AddSibling(nodeID, label string) (string, error) {
	if s.doc == nil {
		s.logger.Warn("add sibling skipped: no live document")
		return "", nil
	}
	if label == "" {
		label = s.cfg.NewNodeLabel
	}

	id, err := s.doc.AddSibling(nodeID, label)
	if err != nil {
		return "", s.mutationFailed("add sibling", nodeID, err)
	}

	parent, _ := s.doc.Parent(id.String())
	s.afterInsert(id, parent.ID().String())
	return id.String(), nil
}

// DeleteNode removes a node and its subtree and returns the number of removed nodes
func (s *EditorSession) DeleteNode(nodeID string) (int, error) {
	if s.doc == nil {
		s.logger.Warn("delete skipped: no live document")
		return 0, nil
	}

	removed, err := s.doc.DeleteNode(nodeID)
	if err != nil {
		return 0, s.mutationFailed("delete node", nodeID, err)
	}

	s.withRenderer(func(r ports.Renderer) { r.RemoveChild(nodeID) })
	s.PushHistory()
	s.ClearSelection()
	s.notifier.Success(MsgNodeDeleted)
	return removed, nil
}

// RenameNode changes a label and records history when it actually changed
func (s *EditorSession) RenameNode(nodeID, label string) (bool, error) {
	if s.doc == nil {
		s.logger.Warn("rename skipped: no live document")
		return false, nil
	}

	changed, err := s.doc.RenameNode(nodeID, label)
	if err != nil {
		return false, s.mutationFailed("rename node", nodeID, err)
	}
	if !changed {
		return false, nil
	}

	s.withRenderer(func(r ports.Renderer) { r.UpdateLabel(nodeID, label) })
	s.PushHistory()
	return true, nil
}

// Select marks a single node as selected; an empty id clears the selection
func (s *EditorSession) Select(nodeID string) error {
	if nodeID == "" {
		s.ClearSelection()
		return nil
	}
	if s.doc == nil {
		s.logger.Warn("select skipped: no live document")
		return nil
	}
	if _, ok := s.doc.Find(nodeID); !ok {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}

	s.selected = nodeID
	s.withRenderer(func(r ports.Renderer) {
		r.ClearSelected()
		r.SetSelected(nodeID, true)
	})
	return nil
}

// ClearSelection deselects every node
func (s *EditorSession) ClearSelection() {
	s.selected = ""
	s.withRenderer(func(r ports.Renderer) { r.ClearSelected() })
}

// PushHistory records the current document
func (s *EditorSession) PushHistory() {
	if s.doc == nil {
		s.logger.Warn("history push skipped: no live document")
		return
	}

	snapshot, err := history.NewSnapshot(codec.Encode(s.doc))
	if err != nil {
		s.logger.Error("failed to capture history snapshot", zap.Error(err))
		return
	}
	if s.history.Push(snapshot) {
		s.logger.Debug("history recorded", zap.Int("history_length", s.history.Len()))
	}
}

// Undo restores the previous snapshot and reports whether it moved
func (s *EditorSession) Undo() bool {
	snapshot, ok := s.history.Undo()
	if !ok {
		s.notifier.Warning(MsgNothingToUndo)
		return false
	}
	if err := s.applySnapshot(snapshot); err != nil {
		return false
	}
	s.notifier.Success(MsgUndone)
	return true
}

// Redo restores the next snapshot and reports whether it moved
func (s *EditorSession) Redo() bool {
	snapshot, ok := s.history.Redo()
	if !ok {
		s.notifier.Warning(MsgNothingToRedo)
		return false
	}
	if err := s.applySnapshot(snapshot); err != nil {
		return false
	}
	s.notifier.Success(MsgRedone)
	return true
}

// ApplyHistory replaces the live document with the snapshot at index and moves
// the history pointer there, so undo and redo continue from that entry
func (s *EditorSession) ApplyHistory(index int) error {
	snapshot, ok := s.history.At(index)
	if !ok {
		s.logger.Warn("history index out of range", zap.Int("index", index), zap.Int("history_length", s.history.Len()))
		return pkgerrors.NewValidationError("history index out of range")
	}
	if err := s.applySnapshot(snapshot); err != nil {
		return err
	}
	s.history.Seek(index)
	return nil
}

// ClearHistory drops every snapshot
func (s *EditorSession) ClearHistory() {
	s.history.Clear()
}

// Close releases the session's projection
func (s *EditorSession) Close() {
	s.selected = ""
	s.doc = nil
	s.renderer = nil
	s.history.Clear()
}

func (s *EditorSession) applySnapshot(snapshot history.Snapshot) error {
	tree, err := snapshot.Tree()
	if err != nil {
		s.logger.Error("failed to apply history snapshot", zap.Error(err))
		s.notifier.Error(MsgHistoryCorrupted)
		return err
	}

	doc := codec.DecodeNode(tree, s.cfg)
	doc.SetID(s.mindMapID)
	if s.doc != nil {
		doc.TakeEvents(s.doc)
	}
	s.replaceDocument(doc)
	return nil
}

// ownedRecord fetches a record and hides it behind NOT_FOUND unless the session owner owns it
func (s *EditorSession) ownedRecord(ctx context.Context, mindMapID string) (*ports.MindMap, error) {
	record, err := s.repo.GetByID(ctx, mindMapID)
	if err != nil {
		return nil, err
	}
	if record.OwnerID != s.ownerID {
		s.logger.Warn("mind map requested by non-owner",
			zap.String("mind_map_id", mindMapID),
			zap.String("owner_id", s.ownerID))
		return nil, pkgerrors.NewNotFoundError("mind map " + mindMapID)
	}
	return record, nil
}

// replaceDocument swaps the live document and reprojects it in full
func (s *EditorSession) replaceDocument(doc *aggregates.Document) {
	s.doc = doc
	s.selected = ""
	view := doc.View()
	s.withRenderer(func(r ports.Renderer) {
		r.Load(view)
		r.FitView()
	})
}

func (s *EditorSession) afterInsert(id valueobjects.NodeID, parentID string) {
	node, _ := s.doc.Find(id.String())
	view := node.View()
	s.withRenderer(func(r ports.Renderer) { r.AddChild(view, parentID) })
	s.PushHistory()
	_ = s.Select(id.String())
}

// mutationFailed routes a domain error: validation errors become warnings,
// unknown ids are dropped silently and anything else is logged and returned.
func (s *EditorSession) mutationFailed(op, nodeID string, err error) error {
	switch {
	case pkgerrors.IsValidation(err):
		s.notifier.Warning(pkgerrors.UserMessage(err, op+" failed"))
		return err
	case pkgerrors.IsNotFound(err):
		s.logger.Debug(op+" ignored: unknown node", zap.String("node_id", nodeID))
		return nil
	default:
		s.logger.Error(op+" failed", zap.String("node_id", nodeID), zap.Error(err))
		return err
	}
}

func (s *EditorSession) withRenderer(fn func(ports.Renderer)) {
	if s.renderer == nil {
		return
	}
	fn(s.renderer)
}

func (s *EditorSession) publish(ctx context.Context, evts []events.DomainEvent) {
	if s.publisher == nil || len(evts) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, evts); err != nil {
		s.logger.Warn("failed to publish mind map events", zap.Int("count", len(evts)), zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
func (nopNotifier) Warning(string) {}
