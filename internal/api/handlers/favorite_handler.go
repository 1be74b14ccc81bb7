package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"oportunidades/internal/engine/favorites"
	"oportunidades/internal/pkg/errors"
)

type FavoriteHandler struct {
	responder
	favorites *favorites.Service
}

func NewFavoriteHandler(favorites *favorites.Service, debug bool) *FavoriteHandler {
	return &FavoriteHandler{responder: responder{debug: debug}, favorites: favorites}
}

type AddFavoriteRequest struct {
	OpportunityID int64 `json:"oportunidade_id"`
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.favorites.List(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddFavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.OpportunityID <= 0 {
		h.writeError(w, r, errors.New(errors.ErrValidation, "ID da oportunidade é obrigatório"))
		return
	}

	added, err := h.favorites.Add(r.Context(), actor(r), req.OpportunityID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, added)
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "oportunidade_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.favorites.Remove(r.Context(), actor(r), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"mensagem": "Oportunidade removida dos favoritos"})
}

// Check never fails on store errors; clients treat the answer as a hint.
func (h *FavoriteHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "oportunidade_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ok, err := h.favorites.Exists(r.Context(), actor(r), id)
	if err != nil {
		if errors.Status(err) < http.StatusInternalServerError {
			h.writeError(w, r, err)
			return
		}
		zerolog.Ctx(r.Context()).Warn().Err(err).Int64("opportunity_id", id).Msg("favorite check failed")
		ok = false
	}
	h.writeJSON(w, http.StatusOK, favorites.Status{IsFavorite: ok})
}
