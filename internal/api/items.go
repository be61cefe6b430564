package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/imaging"
	"github.com/erazemk/mechatrack/internal/logger"
	"github.com/erazemk/mechatrack/internal/model"
	"github.com/erazemk/mechatrack/internal/store"
)

// Messages for part photo endpoints.
const (
	MsgImageRequired = "image file required"
	MsgImageMissing  = "Image not found"
)

// multipartOverhead is the allowance for form boundaries and headers on top
// of the image size limit.
const multipartOverhead = 64 << 10

// ItemsHandler handles the parts inventory endpoints.
type ItemsHandler struct {
	Items  *store.Items
	Images *imaging.Processor
	Logger *logger.Logger
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.NewItem
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	item, err := h.Items.Create(ctx, req)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Update handles PUT /items/{id}. Only the supplied fields change.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgItemNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	item, err := h.Items.Update(ctx, id, patch)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgItemNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if err := h.Items.Delete(ctx, id); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	jsonMessage(w, http.StatusOK, "Item deleted")
}

// UploadImage handles PUT /items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgItemNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if _, err := h.Items.Get(ctx, id); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Images.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.Images.MaxBytes); err != nil {
		writeError(ctx, h.Logger, w, errs.Wrap(errs.CodeValidation, err, imaging.MsgTooLarge))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(ctx, h.Logger, w, errs.Validation(MsgImageRequired))
		return
	}
	defer file.Close()

	photo, err := h.Images.Process(file)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	if err := h.Items.SetImage(ctx, id, photo.Data, photo.MIME); err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	jsonMessage(w, http.StatusOK, "Image uploaded")
}

// GetImage handles GET /items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, store.MsgItemNotFound)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}

	data, mime, err := h.Items.GetImage(ctx, id)
	if err != nil {
		writeError(ctx, h.Logger, w, err)
		return
	}
	if data == nil {
		writeError(ctx, h.Logger, w, errs.NotFound(MsgImageMissing))
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
