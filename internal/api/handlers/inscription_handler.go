package handlers

import (
	"net/http"

	"oportunidades/internal/engine/inscriptions"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/platform/audit"
)

type InscriptionHandler struct {
	responder
	inscriptions *inscriptions.Service
}

func NewInscriptionHandler(inscriptions *inscriptions.Service, debug bool) *InscriptionHandler {
	return &InscriptionHandler{responder: responder{debug: debug}, inscriptions: inscriptions}
}

func (h *InscriptionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in inscriptions.ApplyInput
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	ins, err := h.inscriptions.Apply(r.Context(), actor(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{
		Action: policy.ApplyToOpportunity, ResourceType: "inscricao", ResourceID: ins.ID,
		Metadata: map[string]interface{}{"oportunidade_id": id, "status": ins.Status},
	})
	h.writeJSON(w, http.StatusCreated, ins)
}

func (h *InscriptionHandler) ListForOpportunity(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.inscriptions.ListForOpportunity(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *InscriptionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.inscriptions.ListMine(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *InscriptionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in inscriptions.StatusInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	ins, err := h.inscriptions.UpdateStatus(r.Context(), actor(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{
		Action: policy.ReviewInscriptions, ResourceType: "inscricao", ResourceID: ins.ID,
		Metadata: map[string]interface{}{"status": ins.Status},
	})
	h.writeJSON(w, http.StatusOK, ins)
}
