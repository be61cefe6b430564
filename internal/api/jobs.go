package api

import (
	"net/http"

	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/model"
	"github.com/erazemk/mechatrack/internal/store"
)

// JobsHandler handles the repair job endpoints.
type JobsHandler struct {
	Jobs   *store.Jobs
	Logger *logger.Logger
}

// List handles GET /jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Jobs.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, jobs)
}

// Create handles POST /jobs.
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.NewJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	in, err := req.NewJob()
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	job, err := h.Jobs.Create(ctx, in)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

// Update handles PUT /jobs/{id}. A supplied cost is coerced to a number.
func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgJobNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	var patch model.JobPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	job, err := h.Jobs.Update(ctx, id, patch)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

// Delete handles DELETE /jobs/{id}.
func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgJobNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if err := h.Jobs.Delete(ctx, id); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonMessage(w, http.StatusOK, "Job deleted")
}
