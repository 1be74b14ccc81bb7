package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	apiContext "oportunidades/internal/api/context"
	"oportunidades/internal/api/middleware"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies. Images may arrive inline as
// data URIs, hence the generous size.
const maxBodyBytes = 10 << 20

type responder struct {
	debug bool
}

func (h responder) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and writes the error envelope.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Status(err) >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	errors.Respond(w, err, h.debug)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.New(errors.ErrValidation, "Corpo da requisição vazio")
		}
		return errors.New(errors.ErrValidation, "JSON inválido")
	}
	return nil
}

func param(r *http.Request, name string) string {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps.ByName(name)
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(param(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Newf(errors.ErrValidation, "%s inválido", name)
	}
	return id, nil
}

func actor(r *http.Request) *policy.Actor {
	return middleware.ActorFrom(r.Context())
}
