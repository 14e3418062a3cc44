package handlers

import (
	"net/http"
	"strconv"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/queries"
	querybus "mindmap/application/queries/bus"
	"mindmap/pkg/common"
	pkgerrors "mindmap/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionHandler exposes editing sessions over HTTP.
// Every mutation response carries the notifications raised while handling it.
type SessionHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// OpenSessionRequest is the body of POST /sessions
type OpenSessionRequest struct {
	MindMapID    string `json:"mindMapId"`
	ConnectionID string `json:"connectionId"`
}

// AddChildRequest is the body of POST /sessions/{sessionID}/nodes
type AddChildRequest struct {
	ParentID string `json:"parentId"`
	Label    string `json:"label"`
	Side     string `json:"side"`
}

// LabelRequest carries an optional node label
type LabelRequest struct {
	Label string `json:"label"`
}

// SelectRequest is the body of POST /sessions/{sessionID}/select
type SelectRequest struct {
	NodeID string `json:"nodeId"`
}

// TitleRequest is the body of PUT /sessions/{sessionID}/title
type TitleRequest struct {
	Title string `json:"title"`
}

// Open handles POST /sessions
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if r.ContentLength != 0 {
		if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
			respondFailure(w, r, h.logger, err, nil)
			return
		}
	}

	h.send(w, r, http.StatusCreated, commands.OpenSessionCommand{
		OwnerID:      userID,
		MindMapID:    req.MindMapID,
		ConnectionID: req.ConnectionID,
	})
}

// Get handles GET /sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.ask(w, r, queries.GetSessionQuery{SessionRef: ref})
}

// Projection handles GET /sessions/{sessionID}/projection
func (h *SessionHandler) Projection(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.ask(w, r, queries.GetProjectionQuery{SessionRef: ref})
}

// Close handles DELETE /sessions/{sessionID}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.CloseSessionCommand{SessionRef: ref})
}

// AddChild handles POST /sessions/{sessionID}/nodes
func (h *SessionHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	var req AddChildRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}

	h.send(w, r, http.StatusOK, commands.AddChildCommand{
		SessionRef: ref,
		ParentID:   req.ParentID,
		Label:      req.Label,
		Side:       req.Side,
	})
}

// AddSibling handles POST /sessions/{sessionID}/nodes/{nodeID}/siblings
func (h *SessionHandler) AddSibling(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	var req LabelRequest
	if r.ContentLength != 0 {
		if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
			respondFailure(w, r, h.logger, err, nil)
			return
		}
	}

	h.send(w, r, http.StatusOK, commands.AddSiblingCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		Label:      req.Label,
	})
}

// Rename handles PATCH /sessions/{sessionID}/nodes/{nodeID}
func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	var req LabelRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}

	h.send(w, r, http.StatusOK, commands.RenameNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
		Label:      req.Label,
	})
}

// DeleteNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}
func (h *SessionHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.DeleteNodeCommand{
		SessionRef: ref,
		NodeID:     chi.URLParam(r, "nodeID"),
	})
}

// Select handles POST /sessions/{sessionID}/select
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	h.send(w, r, http.StatusOK, commands.SelectNodeCommand{SessionRef: ref, NodeID: req.NodeID})
}

// Undo handles POST /sessions/{sessionID}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.UndoCommand{SessionRef: ref})
}

// Redo handles POST /sessions/{sessionID}/redo
func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.RedoCommand{SessionRef: ref})
}

// ApplyHistory handles POST /sessions/{sessionID}/history/{index}
func (h *SessionHandler) ApplyHistory(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondFailure(w, r, h.logger, pkgerrors.NewValidationError("history index must be a number"), nil)
		return
	}
	h.send(w, r, http.StatusOK, commands.ApplyHistoryCommand{SessionRef: ref, Index: index})
}

// ClearHistory handles DELETE /sessions/{sessionID}/history
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.ClearHistoryCommand{SessionRef: ref})
}

// SetTitle handles PUT /sessions/{sessionID}/title
func (h *SessionHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}

	var req TitleRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	h.send(w, r, http.StatusOK, commands.SetTitleCommand{SessionRef: ref, Title: req.Title})
}

// Save handles POST /sessions/{sessionID}/save
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionRef(w, r)
	if !ok {
		return
	}
	h.send(w, r, http.StatusOK, commands.SaveCommand{SessionRef: ref})
}

func (h *SessionHandler) send(w http.ResponseWriter, r *http.Request, status int, cmd bus.Command) {
	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		var data interface{}
		if result != nil {
			if res, ok := result.Data.(*commands.SessionResult); ok && res != nil {
				data = res
			}
		}
		respondFailure(w, r, h.logger, err, data)
		return
	}
	common.RespondJSON(w, status, result.Data)
}

func (h *SessionHandler) ask(w http.ResponseWriter, r *http.Request, query querybus.Query) {
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

func sessionRef(w http.ResponseWriter, r *http.Request) (commands.SessionRef, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return commands.SessionRef{}, false
	}
	return commands.SessionRef{SessionID: chi.URLParam(r, "sessionID"), OwnerID: userID}, true
}
