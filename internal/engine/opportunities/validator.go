package opportunities

import (
	"strings"

	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/pkg/validator"
)

func ValidateOpportunity(o *Opportunity) error {
	required := []struct {
		field string
		value string
	}{
		{"titulo", o.Title},
		{"descricao", o.Description},
		{"localizacao", o.Location},
		{"area", o.Area},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.Newf(errors.ErrValidation, "%s é obrigatório", r.field)
		}
	}

	if o.Vacancies < 1 {
		return errors.New(errors.ErrValidation, "vagas deve ser maior que zero")
	}
	if o.MaxParticipants < 1 {
		return errors.New(errors.ErrValidation, "max_participantes deve ser maior que zero")
	}

	dates := []struct {
		field string
		value *string
	}{
		{"data_inicio", o.StartDate},
		{"data_fim", o.EndDate},
		{"prazo_inscricao", o.Deadline},
	}
	for _, d := range dates {
		if d.value == nil {
			continue
		}
		if _, err := validator.ParseDate(*d.value); err != nil {
			return errors.Newf(errors.ErrValidation, "%s: %s", d.field, err.Error())
		}
	}
	// Dates are YYYY-MM-DD, so string order is calendar order.
	if o.StartDate != nil && o.EndDate != nil && *o.EndDate < *o.StartDate {
		return errors.New(errors.ErrValidation, "data_fim deve ser posterior a data_inicio")
	}

	if o.Link != nil {
		if err := validator.ValidateHTTPURL(*o.Link); err != nil {
			return errors.Newf(errors.ErrValidation, "link: %s", err.Error())
		}
	}
	if o.Image != nil {
		if err := validator.ValidateImage(*o.Image); err != nil {
			return errors.Newf(errors.ErrValidation, "imagem: %s", err.Error())
		}
	}

	return nil
}
