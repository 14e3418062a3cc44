// Package memory provides an in-process MindMapRepository for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"mindmap/application/ports"
	pkgerrors "mindmap/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MindMapRepository keeps mind maps in a map guarded by a mutex
type MindMapRepository struct {
	mu      sync.RWMutex
	records map[string]ports.MindMap
	logger  *zap.Logger
	now     func() time.Time
}

// NewMindMapRepository creates an empty repository
func NewMindMapRepository(logger *zap.Logger) *MindMapRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindMapRepository{
		records: make(map[string]ports.MindMap),
		logger:  logger,
		now:     time.Now,
	}
}

func (r *MindMapRepository) GetByID(_ context.Context, id string) (*ports.MindMap, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.NewValidationError("mind map id is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
	}
	return &record, nil
}

func (r *MindMapRepository) Create(_ context.Context, ownerID string, payload ports.MindMapPayload) (*ports.MindMap, error) {
	now := r.now().UTC()
	record := ports.MindMap{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		Title:           payload.Title,
		MindMapDataJSON: payload.MindMapDataJSON,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	r.mu.Lock()
	r.records[record.ID] = record
	r.mu.Unlock()

	r.logger.Debug("Mind map created", zap.String("mindMapID", record.ID))
	return &record, nil
}

func (r *MindMapRepository) Update(_ context.Context, id string, payload ports.MindMapPayload) (*ports.MindMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
	}
	record.Title = payload.Title
	record.MindMapDataJSON = payload.MindMapDataJSON
	record.UpdatedAt = r.now().UTC()
	r.records[id] = record

	return &record, nil
}

func (r *MindMapRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("mind map %s", id))
	}
	delete(r.records, id)
	return nil
}

func (r *MindMapRepository) List(_ context.Context, ownerID string) ([]ports.MindMapSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []ports.MindMapSummary{}
	for _, record := range r.records {
		if record.OwnerID != ownerID {
			continue
		}
		summaries = append(summaries, ports.MindMapSummary{
			ID:        record.ID,
			Title:     record.Title,
			UpdatedAt: record.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Put stores a record verbatim, keeping its id
func (r *MindMapRepository) Put(record ports.MindMap) {
	r.mu.Lock()
	r.records[record.ID] = record
	r.mu.Unlock()
}
