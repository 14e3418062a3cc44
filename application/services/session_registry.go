package services

import (
	"context"
	"sync"
	"time"

	"mindmap/application/ports"
	pkgerrors "mindmap/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RendererFactory builds the projection for a newly opened session.
// connectionID is the optional websocket connection that mirrors the projection.
type RendererFactory func(sessionID, connectionID string) ports.Renderer

// NotifierFactory builds the notification sink for a newly opened session
type NotifierFactory func(sessionID string) ports.Notifier

// SessionRegistry keeps the open editing sessions and serialises access to each one
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	deps        SessionDeps
	newRenderer RendererFactory
	newNotifier NotifierFactory
	idleTTL     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *EditorSession
	lastUsed time.Time
}

// NewSessionRegistry creates an empty registry.
// deps.Renderer and deps.Notifier are ignored in favour of the per-session factories.
func NewSessionRegistry(deps SessionDeps, newRenderer RendererFactory, newNotifier NotifierFactory) *SessionRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		sessions:    make(map[string]*sessionEntry),
		deps:        deps,
		newRenderer: newRenderer,
		newNotifier: newNotifier,
		now:         time.Now,
		logger:      logger,
	}
}

// WithIdleTTL makes sessions untouched for longer than ttl eligible for eviction.
// A zero ttl keeps sessions until they are closed.
func (r *SessionRegistry) WithIdleTTL(ttl time.Duration) *SessionRegistry {
	r.idleTTL = ttl
	return r
}

// OpenRequest describes a session to open
type OpenRequest struct {
	OwnerID      string
	MindMapID    string
	ConnectionID string
}

// Open creates a session and loads the requested mind map into it.
// The session is registered even when the load falls back to a fresh document;
// the load error is returned alongside it.
func (r *SessionRegistry) Open(ctx context.Context, req OpenRequest) (*EditorSession, error) {
	id := uuid.New().String()

	deps := r.deps
	deps.Renderer = nil
	deps.Notifier = nil
	if r.newRenderer != nil {
		deps.Renderer = r.newRenderer(id, req.ConnectionID)
	}
	if r.newNotifier != nil {
		deps.Notifier = r.newNotifier(id)
	}

	session := NewEditorSession(id, req.OwnerID, deps)
	loadErr := session.Load(ctx, req.MindMapID)

	r.EvictIdle()

	r.mu.Lock()
	r.sessions[id] = &sessionEntry{session: session, lastUsed: r.now()}
	r.mu.Unlock()

	r.logger.Info("editing session opened",
		zap.String("session_id", id),
		zap.String("owner_id", req.OwnerID),
		zap.String("mind_map_id", session.MindMapID()))
	return session, loadErr
}

// Do runs fn with exclusive access to the session owned by ownerID
func (r *SessionRegistry) Do(sessionID, ownerID string, fn func(*EditorSession) error) error {
	r.mu.RLock()
	entry, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return pkgerrors.NewNotFoundError("session " + sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.session == nil {
		return pkgerrors.NewNotFoundError("session " + sessionID)
	}
	if entry.session.OwnerID() != ownerID {
		return pkgerrors.NewNotFoundError("session " + sessionID)
	}
	entry.lastUsed = r.now()
	return fn(entry.session)
}

// Close ends a session and drops it from the registry
func (r *SessionRegistry) Close(sessionID, ownerID string) error {
	err := r.Do(sessionID, ownerID, func(s *EditorSession) error {
		s.Close()
		return nil
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	if entry, ok := r.sessions[sessionID]; ok {
		entry.mu.Lock()
		entry.session = nil
		entry.mu.Unlock()
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	r.logger.Info("editing session closed", zap.String("session_id", sessionID))
	return nil
}

// EvictIdle closes and drops every session idle for longer than the TTL and
// returns how many were evicted. Sessions currently in use are skipped.
func (r *SessionRegistry) EvictIdle() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, entry := range r.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.lastUsed.Before(cutoff) {
			if entry.session != nil {
				entry.session.Close()
				entry.session = nil
			}
			delete(r.sessions, id)
			evicted++
		}
		entry.mu.Unlock()
	}

	if evicted > 0 {
		r.logger.Info("idle editing sessions evicted",
			zap.Int("evicted", evicted),
			zap.Int("open_sessions", len(r.sessions)))
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done
func (r *SessionRegistry) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle()
		}
	}
}

// Len returns the number of open sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
