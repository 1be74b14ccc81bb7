package handlers

import (
	"net/http"

	"oportunidades/internal/platform/repositories"
)

type CategoryHandler struct {
	responder
	categories *repositories.CategoryRepository
}

func NewCategoryHandler(categories *repositories.CategoryRepository, debug bool) *CategoryHandler {
	return &CategoryHandler{responder: responder{debug: debug}, categories: categories}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}
