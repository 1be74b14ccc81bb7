package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/audit"
)

type OpportunityHandler struct {
	responder
	opportunities *opportunities.Service
}

func NewOpportunityHandler(opportunities *opportunities.Service, debug bool) *OpportunityHandler {
	return &OpportunityHandler{responder: responder{debug: debug}, opportunities: opportunities}
}

// List answers with a bare array of the page; X-Total-Count carries the
// number of matches across all pages.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.opportunities.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	h.writeJSON(w, http.StatusOK, page.Items)
}

func parseFilter(q url.Values) (opportunities.Filter, error) {
	f := opportunities.Filter{
		Term:      q.Get("q"),
		Area:      q.Get("area"),
		Location:  q.Get("localizacao"),
		Sort:      q.Get("ordenar"),
		Direction: q.Get("direcao"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"limit", &f.Limit},
		{"offset", &f.Offset},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return f, errors.Newf(errors.ErrValidation, "%s deve ser um número", p.name)
			}
			*p.dst = n
		}
	}

	if v := q.Get("categoria_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New(errors.ErrValidation, "categoria_id deve ser um número")
		}
		f.CategoryID = &id
	}
	return f, nil
}

func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.opportunities.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *OpportunityHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	size := 0
	if v := r.URL.Query().Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			h.writeError(w, r, errors.New(errors.ErrValidation, "size deve ser um número"))
			return
		}
	}

	png, err := h.opportunities.QRCode(r.Context(), id, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in opportunities.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.opportunities.Create(r.Context(), actor(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{
		Action: policy.CreateOpportunity, ResourceType: "oportunidade", ResourceID: o.ID,
		Metadata: map[string]interface{}{"organization_id": o.OrganizationID},
	})
	h.writeJSON(w, http.StatusCreated, o)
}

func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var in opportunities.Input
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	o, err := h.opportunities.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{Action: policy.UpdateOpportunity, ResourceType: "oportunidade", ResourceID: id})
	h.writeJSON(w, http.StatusOK, o)
}

func (h *OpportunityHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ack, err := h.opportunities.Deactivate(r.Context(), actor(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	audit.Log(r.Context(), r, actor(r), audit.Entry{Action: policy.DeactivateOpportunity, ResourceType: "oportunidade", ResourceID: id})
	h.writeJSON(w, http.StatusOK, ack)
}

func (h *OpportunityHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.opportunities.ListByOrganization(r.Context(), actor(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *OpportunityHandler) Areas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.opportunities.DistinctAreas(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, areas)
}

func (h *OpportunityHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.opportunities.DistinctLocations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, locations)
}
