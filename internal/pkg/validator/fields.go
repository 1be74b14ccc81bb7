package validator

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ValidateHTTPURL accepts absolute http and https URLs.
func ValidateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("URL inválida")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL deve começar com http:// ou https://")
	}
	if u.Host == "" {
		return errors.New("URL sem domínio")
	}
	return nil
}

// ValidateImage accepts an http(s) URL or an inline data:image URI.
func ValidateImage(raw string) error {
	if strings.HasPrefix(raw, "data:image/") {
		return nil
	}
	return ValidateHTTPURL(raw)
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("data deve estar no formato AAAA-MM-DD")
	}
	return d, nil
}
