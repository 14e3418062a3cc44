package handlers

import (
	"context"
	"fmt"
	"time"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/ports"
	"mindmap/domain/codec"
	"mindmap/domain/events"
	pkgerrors "mindmap/pkg/errors"

	"go.uber.org/zap"
)

// MindMapHandler manages persisted mind map records outside of an editing session
type MindMapHandler struct {
	repo      ports.MindMapRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewMindMapHandler creates a new mind map command handler
func NewMindMapHandler(repo ports.MindMapRepository, publisher ports.EventPublisher, logger *zap.Logger) *MindMapHandler {
	return &MindMapHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Register binds the handler to the mind map commands on b
func (h *MindMapHandler) Register(b *bus.CommandBus) error {
	for _, cmd := range []bus.Command{
		commands.CreateMindMapCommand{},
		commands.UpdateMindMapCommand{},
		commands.DeleteMindMapCommand{},
	} {
		if err := b.Register(cmd, h); err != nil {
			return err
		}
	}
	return nil
}

// Handle implements bus.CommandHandler
func (h *MindMapHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	switch c := cmd.(type) {
	case commands.CreateMindMapCommand:
		return h.create(ctx, c)
	case commands.UpdateMindMapCommand:
		return h.update(ctx, c)
	case commands.DeleteMindMapCommand:
		return nil, h.delete(ctx, c)
	default:
		return nil, fmt.Errorf("%w: %T", bus.ErrHandlerNotFound, cmd)
	}
}

func (h *MindMapHandler) create(ctx context.Context, c commands.CreateMindMapCommand) (*ports.MindMap, error) {
	nodeCount, err := countNodes(c.MindMapDataJSON)
	if err != nil {
		return nil, err
	}

	record, err := h.repo.Create(ctx, c.OwnerID, ports.MindMapPayload{
		Title:           c.Title,
		MindMapDataJSON: c.MindMapDataJSON,
	})
	if err != nil {
		return nil, err
	}

	h.publish(ctx, events.NewMindMapCreated(record.ID, record.Title, nodeCount, time.Now()))
	h.logger.Info("mind map created", zap.String("mind_map_id", record.ID), zap.String("owner_id", c.OwnerID))
	return record, nil
}

func (h *MindMapHandler) update(ctx context.Context, c commands.UpdateMindMapCommand) (*ports.MindMap, error) {
	nodeCount, err := countNodes(c.MindMapDataJSON)
	if err != nil {
		return nil, err
	}
	if err := h.authorize(ctx, c.MindMapID, c.OwnerID); err != nil {
		return nil, err
	}

	record, err := h.repo.Update(ctx, c.MindMapID, ports.MindMapPayload{
		Title:           c.Title,
		MindMapDataJSON: c.MindMapDataJSON,
	})
	if err != nil {
		return nil, err
	}

	h.publish(ctx, events.NewMindMapSaved(record.ID, record.Title, nodeCount, time.Now()))
	return record, nil
}

func (h *MindMapHandler) delete(ctx context.Context, c commands.DeleteMindMapCommand) error {
	if err := h.authorize(ctx, c.MindMapID, c.OwnerID); err != nil {
		return err
	}
	if err := h.repo.Delete(ctx, c.MindMapID); err != nil {
		return err
	}

	h.publish(ctx, events.NewMindMapDeleted(c.MindMapID, time.Now()))
	h.logger.Info("mind map deleted", zap.String("mind_map_id", c.MindMapID))
	return nil
}

// authorize hides records owned by someone else behind NOT_FOUND
func (h *MindMapHandler) authorize(ctx context.Context, mindMapID, ownerID string) error {
	record, err := h.repo.GetByID(ctx, mindMapID)
	if err != nil {
		return err
	}
	if record.OwnerID != ownerID {
		return pkgerrors.NewNotFoundError("mind map " + mindMapID)
	}
	return nil
}

func (h *MindMapHandler) publish(ctx context.Context, event events.DomainEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish mind map event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err))
	}
}

// countNodes rejects payloads that are JSON but not a mind map envelope
func countNodes(data string) (int, error) {
	doc, err := codec.LoadDocument(data, nil)
	if err != nil {
		return 0, pkgerrors.NewValidationError("mindMapDataJson is not a valid mind map").WithCause(err)
	}
	return doc.NodeCount(), nil
}
