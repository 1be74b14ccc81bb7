package opportunities

import (
	"context"
	"fmt"
	"strings"

	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/pkg/optional"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/models"
)

// OrganizationResolver finds or creates the organization an account
// publishes under.
type OrganizationResolver interface {
	EnsureDefault(ctx context.Context, accountID int64, accountName string, in *organizations.Input) (*models.Organization, error)
}

type CategoryChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo       *Repository
	orgs       OrganizationResolver
	categories CategoryChecker
	cfg        config.OpportunitiesConfig
	publicURL  string
}

func NewService(repo *Repository, orgs OrganizationResolver, categories CategoryChecker, cfg config.OpportunitiesConfig, publicURL string) *Service {
	return &Service{repo: repo, orgs: orgs, categories: categories, cfg: cfg, publicURL: strings.TrimRight(publicURL, "/")}
}

// Create publishes a new active opportunity under the actor's organization,
// creating the organization first if the account has none.
func (s *Service) Create(ctx context.Context, actor *policy.Actor, in Input) (*Opportunity, error) {
	if err := policy.Authorize(policy.CreateOpportunity, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	org, err := s.orgs.EnsureDefault(ctx, actor.AccountID, actor.Name, nil)
	if err != nil {
		return nil, err
	}

	o := &Opportunity{
		Vacancies:       DefaultVacancies,
		MaxParticipants: DefaultMaxParticipants,
		IsActive:        true,
		OrganizationID:  org.ID,
	}
	if err := s.apply(ctx, o, in); err != nil {
		return nil, err
	}
	if o.Image == nil && s.cfg.DefaultImageURL != "" {
		image := s.cfg.DefaultImageURL
		o.Image = &image
	}
	if err := ValidateOpportunity(o); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return s.mustGet(ctx, o.ID)
}

// Update merges the present fields of in into an opportunity the actor's
// organization owns. Anything else is reported as not found.
func (s *Service) Update(ctx context.Context, actor *policy.Actor, id int64, in Input) (*Opportunity, error) {
	existing, err := s.owned(ctx, policy.UpdateOpportunity, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, existing, in); err != nil {
		return nil, err
	}
	if err := ValidateOpportunity(existing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.mustGet(ctx, id)
}

// Deactivate hides the opportunity from listings. It stays readable by id.
func (s *Service) Deactivate(ctx context.Context, actor *policy.Actor, id int64) (*Deactivation, error) {
	existing, err := s.owned(ctx, policy.DeactivateOpportunity, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Deactivate(ctx, existing.ID, existing.OrganizationID); err != nil {
		return nil, err
	}
	return &Deactivation{Message: "Oportunidade desativada com sucesso", ID: id}, nil
}

func (s *Service) owned(ctx context.Context, action policy.Action, actor *policy.Actor, id int64) (*Opportunity, error) {
	if err := policy.Authorize(action, actor, policy.Resource{}); err != nil {
		return nil, err
	}
	if !actor.HasOrganization() {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}

	existing, err := s.repo.GetOwned(ctx, id, *actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}

	if err := policy.Authorize(action, actor, policy.Resource{OrganizationID: &existing.OrganizationID}); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	return o, nil
}

// List returns a page of active opportunities. Limit falls back to the
// configured default and is capped at the configured maximum.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	f, err := s.normalize(f)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *Service) normalize(f Filter) (Filter, error) {
	f.Term = strings.TrimSpace(f.Term)
	f.Area = strings.TrimSpace(f.Area)
	f.Location = strings.TrimSpace(f.Location)

	if f.Sort == "" {
		f.Sort = "createdAt"
	}
	if _, ok := sortColumns[f.Sort]; !ok {
		return f, errors.Newf(errors.ErrValidation, "ordenação inválida: %s", f.Sort)
	}
	switch strings.ToLower(f.Direction) {
	case "":
		f.Direction = "desc"
	case "asc", "desc":
		f.Direction = strings.ToLower(f.Direction)
	default:
		return f, errors.Newf(errors.ErrValidation, "direção inválida: %s", f.Direction)
	}

	if f.Limit <= 0 {
		f.Limit = s.cfg.DefaultPageSize
	}
	if f.Limit > s.cfg.MaxPageSize {
		f.Limit = s.cfg.MaxPageSize
	}
	if f.Offset < 0 {
		return f, errors.New(errors.ErrValidation, "offset não pode ser negativo")
	}
	return f, nil
}

// ListByOrganization returns every opportunity of the actor's organization,
// or an empty list when it has none yet.
func (s *Service) ListByOrganization(ctx context.Context, actor *policy.Actor) ([]*Opportunity, error) {
	if err := policy.Authorize(policy.ListOwnOpportunities, actor, policy.Resource{}); err != nil {
		return nil, err
	}
	if !actor.HasOrganization() {
		return []*Opportunity{}, nil
	}
	return s.repo.ListByOrganization(ctx, *actor.OrganizationID)
}

func (s *Service) DistinctAreas(ctx context.Context) ([]string, error) {
	return s.repo.DistinctAreas(ctx)
}

func (s *Service) DistinctLocations(ctx context.Context) ([]string, error) {
	return s.repo.DistinctLocations(ctx)
}

// QRCode encodes the opportunity's external link, or its public page when
// it has none.
func (s *Service) QRCode(ctx context.Context, id int64, size int) ([]byte, error) {
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := fmt.Sprintf("%s/oportunidades/%d", s.publicURL, o.ID)
	if o.Link != nil && *o.Link != "" {
		target = *o.Link
	}
	return GenerateQRCode(target, size)
}

func (s *Service) mustGet(ctx context.Context, id int64) (*Opportunity, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.Newf(errors.ErrInternal, "opportunity %d missing after write", id)
	}
	return o, nil
}

// apply copies the fields present in in onto o. Required text fields cannot
// be cleared; optional ones are cleared by null or an empty string.
func (s *Service) apply(ctx context.Context, o *Opportunity, in Input) error {
	for _, f := range []struct {
		name string
		in   optional.Value[string]
		dst  *string
	}{
		{"titulo", in.Title, &o.Title},
		{"descricao", in.Description, &o.Description},
		{"localizacao", in.Location, &o.Location},
		{"area", in.Area, &o.Area},
	} {
		if !f.in.Set {
			continue
		}
		if f.in.Null {
			return errors.Newf(errors.ErrValidation, "%s é obrigatório", f.name)
		}
		*f.dst = strings.TrimSpace(f.in.Value)
	}

	if in.Vacancies.Present() {
		o.Vacancies = in.Vacancies.Value
	} else if in.Vacancies.Null {
		o.Vacancies = DefaultVacancies
	}
	if in.MaxParticipants.Present() {
		o.MaxParticipants = in.MaxParticipants.Value
	} else if in.MaxParticipants.Null {
		o.MaxParticipants = DefaultMaxParticipants
	}
	if in.RequiresApproval.Present() {
		o.RequiresApproval = in.RequiresApproval.Value
	}

	setText(&o.StartDate, in.StartDate)
	setText(&o.EndDate, in.EndDate)
	setText(&o.Deadline, in.Deadline)
	setText(&o.Link, in.Link)
	setText(&o.Image, in.Image)

	if in.CategoryID.Set {
		if in.CategoryID.Null {
			o.CategoryID = nil
		} else {
			ok, err := s.categories.Exists(ctx, in.CategoryID.Value)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Newf(errors.ErrValidation, "categoria %d não existe", in.CategoryID.Value)
			}
			id := in.CategoryID.Value
			o.CategoryID = &id
		}
	}
	return nil
}

func setText(dst **string, v optional.Value[string]) {
	if !v.Set {
		return
	}
	trimmed := strings.TrimSpace(v.Value)
	if v.Null || trimmed == "" {
		*dst = nil
		return
	}
	*dst = &trimmed
}
