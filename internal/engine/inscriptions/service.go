package inscriptions

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/pkg/validator"
)

type OpportunityStore interface {
	GetByID(ctx context.Context, id int64) (*opportunities.Opportunity, error)
	GetOwned(ctx context.Context, id, organizationID int64) (*opportunities.Opportunity, error)
}

type Service struct {
	repo          *Repository
	opportunities OpportunityStore
	now           func() time.Time
}

func NewService(repo *Repository, opportunities OpportunityStore) *Service {
	return &Service{repo: repo, opportunities: opportunities, now: time.Now}
}

// Apply registers the actor for an active opportunity whose deadline has
// not passed. Opportunities that do not require approval accept at once.
func (s *Service) Apply(ctx context.Context, actor *policy.Actor, opportunityID int64, in ApplyInput) (*Inscription, error) {
	if err := policy.Authorize(policy.ApplyToOpportunity, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	o, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	if !o.IsActive {
		return nil, errors.New(errors.ErrValidation, "Oportunidade não está ativa")
	}
	if o.Deadline != nil {
		today := s.now().Format(validator.DateLayout)
		if *o.Deadline < today {
			return nil, errors.New(errors.ErrValidation, "Prazo de inscrição encerrado")
		}
	}

	exists, err := s.repo.Exists(ctx, actor.AccountID, opportunityID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New(errors.ErrDuplicate, "Você já se inscreveu nesta oportunidade")
	}

	ins := &Inscription{
		Status:        StatusPending,
		AccountID:     actor.AccountID,
		OpportunityID: opportunityID,
	}
	if !o.RequiresApproval {
		ins.Status = StatusApproved
	}
	if in.Notes != nil && strings.TrimSpace(*in.Notes) != "" {
		notes := strings.TrimSpace(*in.Notes)
		ins.Notes = &notes
	}

	created, err := s.repo.Create(ctx, ins, o.MaxParticipants)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, errors.New(errors.ErrDuplicate, "Não há mais vagas para esta oportunidade")
	}

	zerolog.Ctx(ctx).Info().
		Int64("inscription_id", ins.ID).
		Int64("opportunity_id", opportunityID).
		Str("status", ins.Status).
		Msg("inscription created")

	ins.Opportunity = o
	return ins, nil
}

func (s *Service) ListMine(ctx context.Context, actor *policy.Actor) ([]*Inscription, error) {
	if err := policy.Authorize(policy.ListOwnInscriptions, actor, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.repo.ListByAccount(ctx, actor.AccountID)
}

// ListForOpportunity lists the inscriptions of an opportunity the actor's
// organization owns. Anything else is reported as not found.
func (s *Service) ListForOpportunity(ctx context.Context, actor *policy.Actor, opportunityID int64) ([]*Inscription, error) {
	if err := policy.Authorize(policy.ReviewInscriptions, actor, policy.Resource{}); err != nil {
		return nil, err
	}
	if !actor.HasOrganization() {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	o, err := s.opportunities.GetOwned(ctx, opportunityID, *actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.New(errors.ErrNotFound, "Oportunidade não encontrada")
	}
	return s.repo.ListByOpportunity(ctx, o.ID)
}

// UpdateStatus moves an inscription along pending -> approved|rejected and
// approved -> completed|rejected.
func (s *Service) UpdateStatus(ctx context.Context, actor *policy.Actor, id int64, in StatusInput) (*Inscription, error) {
	if err := policy.Authorize(policy.ReviewInscriptions, actor, policy.Resource{}); err != nil {
		return nil, err
	}

	ins, organizationID, err := s.repo.GetWithOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	if ins == nil || !actor.HasOrganization() || *actor.OrganizationID != organizationID {
		return nil, errors.New(errors.ErrNotFound, "Inscrição não encontrada")
	}
	if err := policy.Authorize(policy.ReviewInscriptions, actor, policy.Resource{OrganizationID: &organizationID}); err != nil {
		return nil, err
	}

	to := strings.ToLower(strings.TrimSpace(in.Status))
	if !canTransition(ins.Status, to) {
		return nil, errors.Newf(errors.ErrValidation, "Não é possível mudar o status de %s para %s", ins.Status, to)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, ins.Status, to)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, errors.New(errors.ErrDuplicate, "Inscrição foi alterada por outra requisição")
	}

	ins.Status = to
	ins.UpdatedAt = s.now().UTC()
	return ins, nil
}
