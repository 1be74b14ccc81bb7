package validator

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail checks the address syntax only. Deliverability is not
// checked.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email é obrigatório")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("formato de email inválido")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return errors.New("formato de email inválido")
	}

	domain := strings.ToLower(parts[1])
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("domínio de email inválido")
	}

	return nil
}
