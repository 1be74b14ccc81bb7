package organizations

import (
	"context"
	"fmt"
	"strings"

	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/pkg/validator"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

type Input struct {
	Name        string  `json:"nome"`
	Description *string `json:"descricao"`
	Website     *string `json:"website"`
	Phone       *string `json:"telefone"`
	Address     *string `json:"endereco"`
}

type Service struct {
	repo *repositories.OrganizationRepository
}

func NewService(repo *repositories.OrganizationRepository) *Service {
	return &Service{repo: repo}
}

// EnsureDefault returns the account's organization, creating it first when
// missing. Missing input fields fall back to names derived from accountName.
func (s *Service) EnsureDefault(ctx context.Context, accountID int64, accountName string, in *Input) (*models.Organization, error) {
	org := &models.Organization{AccountID: accountID}

	name := fmt.Sprintf("Organização %s", accountName)
	description := fmt.Sprintf("Organização de %s", accountName)
	if in != nil {
		if n := strings.TrimSpace(in.Name); n != "" {
			name = n
		}
		if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
			description = *in.Description
		}
		org.Website = nonEmpty(in.Website)
		org.Phone = nonEmpty(in.Phone)
		org.Address = nonEmpty(in.Address)
	}
	org.SetName(name)
	org.Description = &description

	if _, err := s.repo.CreateIfAbsent(ctx, org); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.Newf(errors.ErrInternal, "organization for account %d vanished after insert", accountID)
	}
	return existing, nil
}

// Create registers the actor's organization profile explicitly.
func (s *Service) Create(ctx context.Context, actor *policy.Actor, in Input) (*models.Organization, error) {
	if err := policy.Authorize(policy.CreateOrganization, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.New(errors.ErrValidation, "nome é obrigatório")
	}
	if in.Website != nil && *in.Website != "" {
		if err := validator.ValidateHTTPURL(*in.Website); err != nil {
			return nil, errors.Newf(errors.ErrValidation, "website: %s", err.Error())
		}
	}

	org := &models.Organization{
		AccountID:   actor.AccountID,
		Description: nonEmpty(in.Description),
		Website:     nonEmpty(in.Website),
		Phone:       nonEmpty(in.Phone),
		Address:     nonEmpty(in.Address),
	}
	org.SetName(name)

	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *Service) GetMine(ctx context.Context, actor *policy.Actor) (*models.Organization, error) {
	if err := policy.Authorize(policy.ReadOwnOrganization, actor, policy.Resource{}); err != nil {
		return nil, err
	}
	org, err := s.repo.GetByAccountID(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, errors.New(errors.ErrNotFound, "Organização não encontrada")
	}
	return org, nil
}

// ForAccount returns the account's organization or nil.
func (s *Service) ForAccount(ctx context.Context, accountID int64) (*models.Organization, error) {
	return s.repo.GetByAccountID(ctx, accountID)
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
