package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestStatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", New(ErrValidation, "titulo é obrigatório"), http.StatusBadRequest, ErrCodeInvalidInput},
		{"duplicate", New(ErrDuplicate, "email já cadastrado"), http.StatusConflict, ErrCodeConflict},
		{"already favorited", ErrAlreadyFavorited, http.StatusConflict, ErrCodeConflict},
		{"not found", ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"invalid credential", New(ErrInvalidCredential, "Senha inválida"), http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"invalid token", fmt.Errorf("parse: %w", ErrInvalidToken), http.StatusUnauthorized, ErrCodeInvalidToken},
		{"forbidden", ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{"wrapped driver error", pkgerrors.Wrap(fmt.Errorf("disk I/O error"), "insert favorite"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.wantStatus {
				t.Errorf("Status() = %d, want %d", got, tt.wantStatus)
			}
			if got := Code(tt.err); got != tt.wantCode {
				t.Errorf("Code() = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestRespondHidesInternalDetails(t *testing.T) {
	err := pkgerrors.Wrap(fmt.Errorf("no such table: oportunidades"), "list opportunities")

	rr := httptest.NewRecorder()
	Respond(rr, err, false)

	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if strings.Contains(body.Message, "no such table") {
		t.Errorf("internal cause leaked in message: %q", body.Message)
	}
	if body.Details != nil {
		t.Errorf("details should be empty outside debug, got %v", body.Details)
	}

	rr = httptest.NewRecorder()
	Respond(rr, err, true)
	body = ErrorResponse{}
	json.NewDecoder(rr.Body).Decode(&body)
	details, _ := body.Details.(string)
	if !strings.Contains(details, "no such table") {
		t.Errorf("debug details should carry the cause, got %q", details)
	}
}

func TestRespondUsesErrorMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	Respond(rr, New(ErrValidation, "vagas deve ser maior que zero"), false)

	var body ErrorResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Message != "vagas deve ser maior que zero" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Error != "Bad Request" {
		t.Errorf("error = %q", body.Error)
	}
}
