package opportunities

import (
	"github.com/skip2/go-qrcode"

	"oportunidades/internal/pkg/errors"
)

const (
	DefaultQRSize = 256
	MinQRSize     = 128
	MaxQRSize     = 2048
)

// GenerateQRCode renders target as a PNG QR code of size x size pixels.
func GenerateQRCode(target string, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultQRSize
	}

	if size < MinQRSize || size > MaxQRSize {
		return nil, errors.Newf(errors.ErrValidation, "tamanho inválido: deve estar entre %d e %d", MinQRSize, MaxQRSize)
	}

	qr, err := qrcode.New(target, qrcode.Medium)
	if err != nil {
		return nil, errors.Newf(errors.ErrValidation, "conteúdo inválido para QR code: %v", err)
	}

	return qr.PNG(size)
}
