package handlers

import (
	"net/http"

	"mindmap/application/commands"
	"mindmap/application/commands/bus"
	"mindmap/application/queries"
	querybus "mindmap/application/queries/bus"
	"mindmap/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MindMapHandler handles the persisted mind map resource
type MindMapHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewMindMapHandler creates a new mind map handler
func NewMindMapHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *MindMapHandler {
	return &MindMapHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// MindMapRequest is the body of create and update requests
type MindMapRequest struct {
	Title           string `json:"title"`
	MindMapDataJSON string `json:"mindMapDataJson"`
}

// List handles GET /mindmaps
func (h *MindMapHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListMindMapsQuery{OwnerID: userID})
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Get handles GET /mindmaps/{mindMapID}
func (h *MindMapHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetMindMapQuery{
		OwnerID:   userID,
		MindMapID: chi.URLParam(r, "mindMapID"),
	})
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Create handles POST /mindmaps
func (h *MindMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req MindMapRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.CreateMindMapCommand{
		OwnerID:         userID,
		Title:           req.Title,
		MindMapDataJSON: req.MindMapDataJSON,
	})
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result.Data)
}

// Update handles PUT /mindmaps/{mindMapID}
func (h *MindMapHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req MindMapRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.UpdateMindMapCommand{
		OwnerID:         userID,
		MindMapID:       chi.URLParam(r, "mindMapID"),
		Title:           req.Title,
		MindMapDataJSON: req.MindMapDataJSON,
	})
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	common.RespondJSON(w, http.StatusOK, result.Data)
}

// Delete handles DELETE /mindmaps/{mindMapID}
func (h *MindMapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	_, err := h.commandBus.Send(r.Context(), commands.DeleteMindMapCommand{
		OwnerID:   userID,
		MindMapID: chi.URLParam(r, "mindMapID"),
	})
	if err != nil {
		respondFailure(w, r, h.logger, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
