package handlers

import (
	"net/http"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/storage"
)

type UploadHandler struct {
	responder
	images *storage.ImageStore
}

// NewUploadHandler accepts a nil store; uploads then answer 404.
func NewUploadHandler(images *storage.ImageStore, debug bool) *UploadHandler {
	return &UploadHandler{responder: responder{debug: debug}, images: images}
}

func (h *UploadHandler) PresignImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		h.writeError(w, r, errors.New(errors.ErrNotFound, "Upload de imagens desabilitado"))
		return
	}

	var req storage.UploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	upload, err := h.images.PresignImage(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, upload)
}
