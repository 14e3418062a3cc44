package handlers

import (
	"context"
	"fmt"

	"mindmap/application/ports"
	"mindmap/application/queries"
	"mindmap/application/queries/bus"
	pkgerrors "mindmap/pkg/errors"

	"go.uber.org/zap"
)

// MindMapQueryHandler serves reads of persisted records
type MindMapQueryHandler struct {
	repo   ports.MindMapRepository
	logger *zap.Logger
}

// NewMindMapQueryHandler creates a new mind map query handler
func NewMindMapQueryHandler(repo ports.MindMapRepository, logger *zap.Logger) *MindMapQueryHandler {
	return &MindMapQueryHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle implements bus.QueryHandler
func (h *MindMapQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetMindMapQuery:
		record, err := h.repo.GetByID(ctx, q.MindMapID)
		if err != nil {
			return nil, err
		}
		if record.OwnerID != q.OwnerID {
			h.logger.Debug("mind map requested by non-owner",
				zap.String("mind_map_id", q.MindMapID),
				zap.String("owner_id", q.OwnerID))
			return nil, pkgerrors.NewNotFoundError("mind map " + q.MindMapID)
		}
		return record, nil
	case queries.ListMindMapsQuery:
		summaries, err := h.repo.List(ctx, q.OwnerID)
		if err != nil {
			return nil, err
		}
		if summaries == nil {
			summaries = []ports.MindMapSummary{}
		}
		return summaries, nil
	default:
		return nil, fmt.Errorf("unsupported query type %T", query)
	}
}
