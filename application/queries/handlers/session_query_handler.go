package handlers

import (
	"context"
	"fmt"

	"mindmap/application/ports"
	"mindmap/application/queries"
	"mindmap/application/queries/bus"
	"mindmap/application/services"
	pkgerrors "mindmap/pkg/errors"
)

// SessionQueryHandler serves reads of open editing sessions
type SessionQueryHandler struct {
	registry *services.SessionRegistry
}

// NewSessionQueryHandler creates a new session query handler
func NewSessionQueryHandler(registry *services.SessionRegistry) *SessionQueryHandler {
	return &SessionQueryHandler{registry: registry}
}

// Handle implements bus.QueryHandler
func (h *SessionQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetSessionQuery:
		var view services.SessionView
		err := h.registry.Do(q.SessionID, q.OwnerID, func(s *services.EditorSession) error {
			view = s.Describe()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &view, nil
	case queries.GetProjectionQuery:
		var result *queries.ProjectionResult
		err := h.registry.Do(q.SessionID, q.OwnerID, func(s *services.EditorSession) error {
			reader, ok := s.Renderer().(ports.ProjectionReader)
			if !ok {
				return pkgerrors.NewNotFoundError("projection for session " + q.SessionID)
			}
			result = &queries.ProjectionResult{SessionID: q.SessionID, Selected: reader.Selected()}
			if tree, ok := reader.Tree(); ok {
				result.Tree = &tree
			}
			if result.Selected == nil {
				result.Selected = []string{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}
}

// RegisterQueryHandlers binds the read handlers to b
func RegisterQueryHandlers(b *bus.QueryBus, mindMaps *MindMapQueryHandler, sessions *SessionQueryHandler, middleware *bus.MetricsMiddleware) error {
	wrap := func(h bus.QueryHandler) bus.QueryHandler {
		if middleware == nil {
			return h
		}
		return middleware.Wrap(h)
	}

	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetMindMapQuery{}, wrap(mindMaps)},
		{queries.ListMindMapsQuery{}, wrap(mindMaps)},
		{queries.GetSessionQuery{}, wrap(sessions)},
		{queries.GetProjectionQuery{}, wrap(sessions)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
