package api

import (
	"net/http"

	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/model"
	"github.com/erazemk/mechatrack/internal/store"
)

// ToolsHandler handles the tool checkout endpoints.
type ToolsHandler struct {
	Tools  *store.Tools
	Logger *logger.Logger
}

// List handles GET /tools.
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	tools, err := h.Tools.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, tools)
}

// Create handles POST /tools.
func (h *ToolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.NewTool
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	tool, err := h.Tools.Create(ctx, req)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, tool)
}

// Update handles PUT /tools/{id}.
func (h *ToolsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgToolNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	var patch model.ToolPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	tool, err := h.Tools.Update(ctx, id, patch)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, tool)
}

// Delete handles DELETE /tools/{id}.
func (h *ToolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgToolNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if err := h.Tools.Delete(ctx, id); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonMessage(w, http.StatusOK, "Tool deleted")
}
