// Package policy decides whether an actor may perform an action on a
// resource. Authorize has no side effects and performs no I/O; callers
// load the resource first and describe it with a Resource value.
package policy

import (
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/models"
)

type Action string

const (
	ListOpportunities     Action = "opportunity:list"
	ReadOpportunity       Action = "opportunity:read"
	ListCategories        Action = "category:list"
	CreateOpportunity     Action = "opportunity:create"
	UpdateOpportunity     Action = "opportunity:update"
	DeactivateOpportunity Action = "opportunity:deactivate"
	ListOwnOpportunities  Action = "opportunity:list-own"
	UploadImage           Action = "opportunity:upload-image"

	CreateOrganization  Action = "organization:create"
	ReadOwnOrganization Action = "organization:read-own"

	ReadProfile   Action = "account:read"
	UpdateProfile Action = "account:update"

	ManageFavorites Action = "favorite:manage"

	ApplyToOpportunity  Action = "inscription:apply"
	ListOwnInscriptions Action = "inscription:list-own"
	ReviewInscriptions  Action = "inscription:review"
)

// Actor is the verified identity behind a request. A nil *Actor is an
// anonymous caller.
type Actor struct {
	AccountID      int64
	Role           string
	Name           string
	OrganizationID *int64
}

func (a *Actor) HasOrganization() bool {
	return a != nil && a.OrganizationID != nil
}

// Resource describes what the action touches. Zero fields mean "not known
// yet"; route-level checks pass an empty Resource and services repeat the
// check once the row is loaded.
type Resource struct {
	// OrganizationID owns the opportunity (or the opportunity an
	// inscription belongs to).
	OrganizationID *int64
	// OwnerAccountID owns a favorite or inscription.
	OwnerAccountID int64
}

type rule struct {
	public   bool
	roles    []string
	ownedOrg bool // actor's organization must own the resource
	self     bool // actor must be the resource's owning account
}

var rules = map[Action]rule{
	ListOpportunities: {public: true},
	ReadOpportunity:   {public: true},
	ListCategories:    {public: true},

	CreateOpportunity:     {roles: []string{models.RoleOrganization}},
	UpdateOpportunity:     {roles: []string{models.RoleOrganization}, ownedOrg: true},
	DeactivateOpportunity: {roles: []string{models.RoleOrganization}, ownedOrg: true},
	ListOwnOpportunities:  {roles: []string{models.RoleOrganization}},
	UploadImage:           {roles: []string{models.RoleOrganization}},

	CreateOrganization:  {roles: []string{models.RoleOrganization}},
	ReadOwnOrganization: {roles: []string{models.RoleOrganization}},

	ReadProfile:   {self: true},
	UpdateProfile: {self: true},

	ManageFavorites: {self: true},

	ApplyToOpportunity:  {self: true},
	ListOwnInscriptions: {self: true},
	ReviewInscriptions:  {roles: []string{models.RoleOrganization}, ownedOrg: true},
}

// Authorize returns nil when actor may perform action on res, otherwise
// ErrUnauthenticated, ErrForbidden, or (creating a second organization)
// ErrDuplicate.
func Authorize(action Action, actor *Actor, res Resource) error {
	r, ok := rules[action]
	if !ok {
		return errors.Newf(errors.ErrForbidden, "Ação desconhecida: %s", action)
	}
	if r.public {
		return nil
	}
	if actor == nil || actor.AccountID == 0 {
		return errors.New(errors.ErrUnauthenticated, "Token não fornecido")
	}

	if len(r.roles) > 0 && !hasRole(actor.Role, r.roles) {
		return errors.New(errors.ErrForbidden, "Apenas organizações podem realizar esta ação")
	}

	if r.self && res.OwnerAccountID != 0 && res.OwnerAccountID != actor.AccountID {
		return errors.New(errors.ErrForbidden, "Acesso negado")
	}

	if r.ownedOrg && res.OrganizationID != nil {
		if actor.OrganizationID == nil || *actor.OrganizationID != *res.OrganizationID {
			return errors.New(errors.ErrForbidden, "Acesso negado")
		}
	}

	if action == CreateOrganization && actor.HasOrganization() {
		return errors.New(errors.ErrDuplicate, "Você já possui uma organização")
	}

	return nil
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
