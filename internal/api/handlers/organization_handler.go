package handlers

import (
	"net/http"

	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/platform/audit"
)

type OrganizationHandler struct {
	responder
	orgs *organizations.Service
}

func NewOrganizationHandler(orgs *organizations.Service, debug bool) *OrganizationHandler {
	return &OrganizationHandler{responder: responder{debug: debug}, orgs: orgs}
}

func (h *OrganizationHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.GetMine(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, org)
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req organizations.Input
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	org, err := h.orgs.Create(r.Context(), actor(r), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{Action: policy.CreateOrganization, ResourceType: "organizacao", ResourceID: org.ID})
	h.writeJSON(w, http.StatusCreated, org)
}
