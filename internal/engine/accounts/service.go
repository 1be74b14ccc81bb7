package accounts

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/pkg/optional"
	"oportunidades/internal/pkg/validator"
	"oportunidades/internal/platform/auth"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Name         string               `json:"nome"`
	Email        string               `json:"email"`
	Password     string               `json:"senha"`
	Role         string               `json:"role"`
	Organization *organizations.Input `json:"organizacao"`
}

type AuthResult struct {
	Message      string               `json:"mensagem"`
	Token        string               `json:"token"`
	Account      *models.Account      `json:"usuario"`
	Organization *models.Organization `json:"organizacao,omitempty"`
}

type ProfilePatch struct {
	Name optional.Value[string] `json:"nome"`
}

type Service struct {
	accounts *repositories.AccountRepository
	orgs     *organizations.Service
	tokens   *auth.TokenService
	hasher   *auth.PasswordHasher
	cfg      config.AuthConfig
}

func NewService(accounts *repositories.AccountRepository, orgs *organizations.Service, tokens *auth.TokenService, hasher *auth.PasswordHasher, cfg config.AuthConfig) *Service {
	return &Service{accounts: accounts, orgs: orgs, tokens: tokens, hasher: hasher, cfg: cfg}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = repositories.NormalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Role == "" {
		return nil, errors.New(errors.ErrValidation, "Todos os campos obrigatórios devem ser preenchidos")
	}
	if err := validator.ValidateEmail(in.Email); err != nil {
		return nil, errors.New(errors.ErrValidation, err.Error())
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, errors.Newf(errors.ErrValidation, "senha deve ter pelo menos %d caracteres", MinPasswordLength)
	}
	if !models.ValidRole(in.Role) {
		return nil, errors.Newf(errors.ErrValidation, "role inválido: %s", in.Role)
	}
	if in.Role == models.RoleAdmin && !s.cfg.AllowAdminSignup {
		return nil, errors.New(errors.ErrForbidden, "Cadastro de administradores desabilitado")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	result := &AuthResult{Message: "Usuário criado com sucesso!", Account: account}

	if account.Role == models.RoleOrganization {
		org, err := s.orgs.EnsureDefault(ctx, account.ID, account.Name, in.Organization)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", account.ID).
				Msg("default organization not created during registration")
		} else {
			result.Organization = org
		}
	}

	result.Token, err = s.tokens.GenerateAccessToken(account.ID, account.Role, account.Name)
	if err != nil {
		return nil, errors.Newf(errors.ErrInternal, "sign token: %v", err)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = repositories.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New(errors.ErrValidation, "Email e senha são obrigatórios")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New(errors.ErrNotFound, "Usuário não encontrado")
	}

	if err := s.hasher.Check(account.PasswordHash, password); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateAccessToken(account.ID, account.Role, account.Name)
	if err != nil {
		return nil, errors.Newf(errors.ErrInternal, "sign token: %v", err)
	}
	return &AuthResult{Message: "Login realizado com sucesso!", Token: token, Account: account}, nil
}

// Profile returns the actor's account with its organization, if any.
func (s *Service) Profile(ctx context.Context, actor *policy.Actor) (*models.Account, error) {
	if err := policy.Authorize(policy.ReadProfile, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, actor.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.New(errors.ErrNotFound, "Usuário não encontrado")
	}

	if account.Role == models.RoleOrganization {
		org, err := s.orgs.ForAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		account.Organization = org
	}
	return account, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actor *policy.Actor, patch ProfilePatch) (*models.Account, error) {
	if err := policy.Authorize(policy.UpdateProfile, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	if patch.Name.Set {
		name := strings.TrimSpace(patch.Name.Value)
		if patch.Name.Null || name == "" {
			return nil, errors.New(errors.ErrValidation, "nome não pode ser vazio")
		}
		if err := s.accounts.UpdateName(ctx, actor.AccountID, name); err != nil {
			return nil, err
		}
	}

	return s.Profile(ctx, actor)
}
