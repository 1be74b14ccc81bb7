package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// Error kinds. Every error leaving a service wraps exactly one of these.
var (
	ErrValidation      = stderrors.New("validation failed")
	ErrDuplicate       = stderrors.New("duplicate")
	ErrNotFound        = stderrors.New("not found")
	ErrUnauthenticated = stderrors.New("unauthenticated")
	ErrForbidden       = stderrors.New("forbidden")
	ErrInternal        = stderrors.New("internal error")
)

// Refinements of the kinds above.
var (
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthenticated)
	ErrInvalidToken      = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	ErrAlreadyFavorited  = fmt.Errorf("%w: already favorited", ErrDuplicate)
)

// Error carries a client-facing message next to its kind.
type Error struct {
	kind error
	msg  string
}

func New(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Is, As and Unwrap are re-exported so callers only need one errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

func Unwrap(err error) error { return stderrors.Unwrap(err) }

// Status maps an error to its HTTP status. Unclassified errors are internal.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Code(err error) string {
	switch {
	case stderrors.Is(err, ErrValidation):
		return ErrCodeInvalidInput
	case stderrors.Is(err, ErrInvalidCredential):
		return ErrCodeInvalidCredentials
	case stderrors.Is(err, ErrInvalidToken):
		return ErrCodeInvalidToken
	case stderrors.Is(err, ErrUnauthenticated):
		return ErrCodeUnauthorized
	case stderrors.Is(err, ErrForbidden):
		return ErrCodeForbidden
	case stderrors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case stderrors.Is(err, ErrDuplicate):
		return ErrCodeConflict
	default:
		return ErrCodeInternal
	}
}

var defaultMessages = map[string]string{
	ErrCodeInvalidInput:       "Dados inválidos",
	ErrCodeUnauthorized:       "Autenticação necessária",
	ErrCodeInvalidCredentials: "Credenciais inválidas",
	ErrCodeInvalidToken:       "Token inválido ou expirado",
	ErrCodeForbidden:          "Acesso negado",
	ErrCodeNotFound:           "Recurso não encontrado",
	ErrCodeConflict:           "Registro já existe",
	ErrCodeInternal:           "Erro interno do servidor",
}

// Message returns the text shown to clients. Internal errors never expose
// their cause here.
func Message(err error) string {
	code := Code(err)
	if code == ErrCodeInternal {
		return defaultMessages[code]
	}
	var e *Error
	if stderrors.As(err, &e) && e.msg != "" {
		return e.msg
	}
	return defaultMessages[code]
}

// Respond writes err as the JSON error envelope. With debug set, internal
// errors carry their full chain (and stack, when wrapped with pkg/errors).
func Respond(w http.ResponseWriter, err error, debug bool) {
	status := Status(err)
	var details interface{}
	if debug && status == http.StatusInternalServerError {
		details = fmt.Sprintf("%+v", err)
	}
	WriteError(w, status, Code(err), Message(err), details)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}
