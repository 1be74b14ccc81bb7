package favorites

import (
	"context"

	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
)

type OpportunityFinder interface {
	GetByID(ctx context.Context, id int64) (*opportunities.Opportunity, error)
}

type Service struct {
	repo          *Repository
	opportunities OpportunityFinder
}

func NewService(repo *Repository, opportunities OpportunityFinder) *Service {
	return &Service{repo: repo, opportunities: opportunities}
}

func authorize(actor *policy.Actor) error {
	res := policy.Resource{}
	if actor != nil {
		res.OwnerAccountID = actor.AccountID
	}
	return policy.Authorize(policy.ManageFavorites, actor, res)
}

// Add favorites an existing opportunity, active or not. Adding the same
// pair twice fails with ErrAlreadyFavorited.
func (s *Service) Add(ctx context.Context, actor *policy.Actor, opportunityID int64) (*Added, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	if _, err := s.opportunities.GetByID(ctx, opportunityID); err != nil {
		return nil, err
	}

	f := &Favorite{AccountID: actor.AccountID, OpportunityID: opportunityID}
	inserted, err := s.repo.Add(ctx, f)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, errors.New(errors.ErrAlreadyFavorited, "Oportunidade já está nos favoritos")
	}
	return &Added{Message: "Oportunidade adicionada aos favoritos", Favorite: f}, nil
}

func (s *Service) Remove(ctx context.Context, actor *policy.Actor, opportunityID int64) error {
	if err := authorize(actor); err != nil {
		return err
	}
	removed, err := s.repo.Remove(ctx, actor.AccountID, opportunityID)
	if err != nil {
		return err
	}
	if !removed {
		return errors.New(errors.ErrNotFound, "Favorito não encontrado")
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor *policy.Actor) ([]*opportunities.Opportunity, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	return s.repo.ListOpportunities(ctx, actor.AccountID)
}

// Exists reports whether the pair is stored. Absence is not an error.
func (s *Service) Exists(ctx context.Context, actor *policy.Actor, opportunityID int64) (bool, error) {
	if err := authorize(actor); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, actor.AccountID, opportunityID)
}
