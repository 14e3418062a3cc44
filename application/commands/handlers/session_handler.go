package handlers

import (
	"context"
	"fmt"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/ports"
	"mindmap/application/services"
	"mindmap/domain/core/valueobjects"
	pkgerrors "mindmap/pkg/errors"

	"go.uber.org/zap"
)

// SessionHandler executes editing commands against the session registry
type SessionHandler struct {
	registry *services.SessionRegistry
	logger   *zap.Logger
}

// NewSessionHandler creates a new session command handler
func NewSessionHandler(registry *services.SessionRegistry, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// Register binds the handler to every session command on b
func (h *SessionHandler) Register(b *bus.CommandBus) error {
	for _, cmd := range []bus.Command{
		commands.OpenSessionCommand{},
		commands.CloseSessionCommand{},
		commands.AddChildCommand{},
		commands.AddSiblingCommand{},
		commands.RenameNodeCommand{},
		commands.DeleteNodeCommand{},
		commands.SelectNodeCommand{},
		commands.UndoCommand{},
		commands.RedoCommand{},
		commands.ApplyHistoryCommand{},
		commands.ClearHistoryCommand{},
		commands.SetTitleCommand{},
		commands.SaveCommand{},
	} {
		if err := b.Register(cmd, h); err != nil {
			return err
		}
	}
	return nil
}

// Handle implements bus.CommandHandler
func (h *SessionHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	switch c := cmd.(type) {
	case commands.OpenSessionCommand:
		return h.open(ctx, c)
	case commands.CloseSessionCommand:
		if err := h.registry.Close(c.SessionID, c.OwnerID); err != nil {
			return nil, err
		}
		return &commands.SessionResult{
			Session:       services.SessionView{SessionID: c.SessionID},
			Notifications: []ports.Notification{},
		}, nil
	case commands.AddChildCommand:
		side, err := valueobjects.ParseSide(c.Side)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			id, err := s.AddChild(c.ParentID, c.Label, side)
			r.NodeID = id
			r.Changed = id != ""
			return err
		})
	case commands.AddSiblingCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			id, err := s.AddSibling(c.NodeID, c.Label)
			r.NodeID = id
			r.Changed = id != ""
			return err
		})
	case commands.RenameNodeCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			changed, err := s.RenameNode(c.NodeID, c.Label)
			r.NodeID = c.NodeID
			r.Changed = changed
			return err
		})
	case commands.DeleteNodeCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			removed, err := s.DeleteNode(c.NodeID)
			r.Removed = removed
			r.Changed = removed > 0
			return err
		})
	case commands.SelectNodeCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			r.NodeID = c.NodeID
			return s.Select(c.NodeID)
		})
	case commands.UndoCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			r.Changed = s.Undo()
			return nil
		})
	case commands.RedoCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			r.Changed = s.Redo()
			return nil
		})
	case commands.ApplyHistoryCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			if err := s.ApplyHistory(c.Index); err != nil {
				return err
			}
			r.Changed = true
			return nil
		})
	case commands.ClearHistoryCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			s.ClearHistory()
			return nil
		})
	case commands.SetTitleCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			r.Changed = s.Title() != c.Title
			s.SetTitle(c.Title)
			return nil
		})
	case commands.SaveCommand:
		return h.run(c.SessionRef, func(s *services.EditorSession, r *commands.SessionResult) error {
			return s.Save(ctx)
		})
	default:
		return nil, fmt.Errorf("%w: %T", bus.ErrHandlerNotFound, cmd)
	}
}

func (h *SessionHandler) open(ctx context.Context, c commands.OpenSessionCommand) (*commands.SessionResult, error) {
	session, err := h.registry.Open(ctx, services.OpenRequest{
		OwnerID:      c.OwnerID,
		MindMapID:    c.MindMapID,
		ConnectionID: c.ConnectionID,
	})
	if session == nil {
		return nil, err
	}
	if err != nil {
		h.logger.Warn("session opened on a fresh document after load failure",
			zap.String("session_id", session.ID()),
			zap.String("mind_map_id", c.MindMapID),
			zap.Error(err))
	}

	return h.run(commands.SessionRef{SessionID: session.ID(), OwnerID: c.OwnerID},
		func(*services.EditorSession, *commands.SessionResult) error { return nil })
}

// run executes fn under the session lock and captures the resulting state.
// The result is returned even when fn fails so the notifications reach the caller.
func (h *SessionHandler) run(ref commands.SessionRef, fn func(*services.EditorSession, *commands.SessionResult) error) (*commands.SessionResult, error) {
	var result *commands.SessionResult
	var opErr error

	err := h.registry.Do(ref.SessionID, ref.OwnerID, func(s *services.EditorSession) error {
		result = &commands.SessionResult{}
		opErr = fn(s, result)
		result.Session = s.Describe()
		result.Notifications = s.DrainNotifications()
		if result.Notifications == nil {
			result.Notifications = []ports.Notification{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, opErr
}
