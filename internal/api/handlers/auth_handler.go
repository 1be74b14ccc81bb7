package handlers

import (
	"net/http"

	"oportunidades/internal/engine/accounts"
)

type AuthHandler struct {
	responder
	accounts *accounts.Service
}

func NewAuthHandler(accounts *accounts.Service, debug bool) *AuthHandler {
	return &AuthHandler{responder: responder{debug: debug}, accounts: accounts}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Profile(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch accounts.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	account, err := h.accounts.UpdateProfile(r.Context(), actor(r), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}
